package domain

import (
	"encoding/json"
	"testing"
)

func TestCloneIsDeep(t *testing.T) {
	clientID := "c1"
	poID := "po1"
	src := Snapshot{
		Projects: []Project{{Base: Base{ID: "p1"}, Name: "Line A", ClientID: &clientID}},
		Clients:  []Client{{Base: Base{ID: clientID}, Name: "Acme"}},
		Suppliers: []Supplier{{
			Base:             Base{ID: "s1"},
			Name:             "Steelworks",
			PositiveComments: []string{"good welds"},
		}},
		PurchaseOrders: []PurchaseOrder{{
			Base:  Base{ID: poID},
			Parts: []Part{{ID: "part1", Name: "Bracket", Quantity: 2}},
		}},
		ExternalLinks: []ExternalLink{{Base: Base{ID: "l1"}, Type: LinkReport, POID: &poID}},
	}

	cp := src.Clone()
	*cp.Projects[0].ClientID = "other"
	cp.Suppliers[0].PositiveComments[0] = "mutated"
	cp.PurchaseOrders[0].Parts[0].Name = "mutated"
	*cp.ExternalLinks[0].POID = "mutated"

	if *src.Projects[0].ClientID != clientID {
		t.Fatal("project clientId shared between clone and source")
	}
	if src.Suppliers[0].PositiveComments[0] != "good welds" {
		t.Fatal("supplier comments shared between clone and source")
	}
	if src.PurchaseOrders[0].Parts[0].Name != "Bracket" {
		t.Fatal("order parts shared between clone and source")
	}
	if *src.ExternalLinks[0].POID != poID {
		t.Fatal("link poId shared between clone and source")
	}
}

func TestNormalizeRepairsMissingCollections(t *testing.T) {
	// Blobs written before shipments existed omit that key entirely.
	payload := []byte(`{"projects":[],"clients":[],"suppliers":[],"purchaseOrders":[],"externalLinks":[]}`)
	var s Snapshot
	if err := json.Unmarshal(payload, &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Shipments != nil {
		t.Fatal("expected nil shipments before normalize")
	}
	s.Normalize()
	if s.Shipments == nil {
		t.Fatal("normalize left shipments nil")
	}
	if !s.IsEmpty() {
		t.Fatal("normalized empty snapshot should report empty")
	}
}

func TestSnapshotJSONKeys(t *testing.T) {
	var s Snapshot
	s.Normalize()
	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"projects", "clients", "suppliers", "purchaseOrders", "externalLinks", "shipments"} {
		if _, ok := keys[want]; !ok {
			t.Errorf("blob missing key %q", want)
		}
	}
}

func TestCountsAndIsEmpty(t *testing.T) {
	var s Snapshot
	if !s.IsEmpty() {
		t.Fatal("zero snapshot should be empty")
	}
	s.Clients = []Client{{Base: Base{ID: "c1"}, Name: "Acme"}}
	if s.IsEmpty() {
		t.Fatal("snapshot with a client is not empty")
	}
	if s.Counts()[EntityClient] != 1 {
		t.Fatalf("counts = %+v", s.Counts())
	}
}
