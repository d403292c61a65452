package core

import (
	"context"
	"testing"

	"fabtrack/pkg/domain"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	return NewMemoryStore(domain.FreightVocabulary)
}

// fixture creates one client, one project owned by it, and one supplier.
func fixture(t *testing.T, store *MemoryStore) (clientID, projectID, supplierID string) {
	t.Helper()
	clientID, projectID, supplierID = "cl-1", "pr-1", "su-1"
	err := store.RunInTransaction(context.Background(), func(tx *Transaction) error {
		if _, err := tx.CreateClient(Client{Base: domain.Base{ID: clientID}, Name: "Acme Fabrication"}); err != nil {
			return err
		}
		if _, err := tx.CreateProject(Project{
			Base:     domain.Base{ID: projectID},
			Name:     "Plant Upgrade",
			ClientID: &clientID,
			Status:   domain.StatusInProgress,
		}); err != nil {
			return err
		}
		_, err := tx.CreateSupplier(Supplier{Base: domain.Base{ID: supplierID}, Name: "Steelworks Ltd", Rating: 4})
		return err
	})
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return clientID, projectID, supplierID
}

func addOrder(t *testing.T, store *MemoryStore, id, projectID, supplierID string, progress int, parts []Part) PurchaseOrder {
	t.Helper()
	var created PurchaseOrder
	err := store.RunInTransaction(context.Background(), func(tx *Transaction) error {
		var err error
		created, err = tx.CreatePurchaseOrder(PurchaseOrder{
			Base:       domain.Base{ID: id},
			PONumber:   "PO-" + id,
			ProjectID:  projectID,
			SupplierID: supplierID,
			Progress:   progress,
			Parts:      parts,
		})
		return err
	})
	if err != nil {
		t.Fatalf("create purchase order %s: %v", id, err)
	}
	return created
}

func TestCreateAssignsIDAndTimestamps(t *testing.T) {
	store := newTestStore(t)
	var created Client
	err := store.RunInTransaction(context.Background(), func(tx *Transaction) error {
		var err error
		created, err = tx.CreateClient(Client{Name: "Acme"})
		return err
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}
}

func TestUpdatePreservesID(t *testing.T) {
	store := newTestStore(t)
	clientID, _, _ := fixture(t, store)

	var updated Client
	err := store.RunInTransaction(context.Background(), func(tx *Transaction) error {
		var err error
		updated, err = tx.UpdateClient(clientID, func(c *Client) error {
			c.ID = "hijacked"
			c.Name = "Acme Renamed"
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("update client: %v", err)
	}
	if updated.ID != clientID {
		t.Fatalf("id changed through update: got %q want %q", updated.ID, clientID)
	}
	if updated.Name != "Acme Renamed" {
		t.Fatalf("name not applied: %q", updated.Name)
	}
}

func TestUpdateMissingReportsNotFound(t *testing.T) {
	store := newTestStore(t)
	err := store.RunInTransaction(context.Background(), func(tx *Transaction) error {
		_, err := tx.UpdateProject("nope", func(p *Project) error { return nil })
		return err
	})
	if !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestFailedTransactionLeavesStateUntouched(t *testing.T) {
	store := newTestStore(t)
	fixture(t, store)
	before := store.Snapshot()

	err := store.RunInTransaction(context.Background(), func(tx *Transaction) error {
		if _, err := tx.CreateClient(Client{Name: "Transient"}); err != nil {
			return err
		}
		// Invalid record aborts the whole transaction.
		_, err := tx.CreateClient(Client{})
		return err
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	after := store.Snapshot()
	if len(after.Clients) != len(before.Clients) {
		t.Fatalf("partial commit observed: %d clients, want %d", len(after.Clients), len(before.Clients))
	}
}

func TestDeleteClientNullsProjectReference(t *testing.T) {
	store := newTestStore(t)
	clientID, projectID, _ := fixture(t, store)

	err := store.RunInTransaction(context.Background(), func(tx *Transaction) error {
		return tx.DeleteClient(clientID)
	})
	if err != nil {
		t.Fatalf("delete client: %v", err)
	}
	snap := store.Snapshot()
	if len(snap.Clients) != 0 {
		t.Fatalf("client not removed")
	}
	if len(snap.Projects) != 1 {
		t.Fatalf("project must survive client deletion")
	}
	if snap.Projects[0].ID != projectID || snap.Projects[0].ClientID != nil {
		t.Fatalf("expected clientId nulled, got %+v", snap.Projects[0].ClientID)
	}
}

func TestDeleteProjectCascades(t *testing.T) {
	store := newTestStore(t)
	_, projectID, supplierID := fixture(t, store)
	po := addOrder(t, store, "po-1", projectID, supplierID, 50, []Part{
		{Name: "Bracket", Quantity: 10, Progress: 50},
	})
	partID := po.Parts[0].ID

	err := store.RunInTransaction(context.Background(), func(tx *Transaction) error {
		if _, err := tx.CreateShipment(Shipment{
			ProjectID:      projectID,
			SupplierID:     supplierID,
			POID:           po.ID,
			PartID:         partID,
			Type:           "Air Freight",
			TrackingNumber: "TRK-1",
		}); err != nil {
			return err
		}
		_, err := tx.CreateExternalLink(ExternalLink{
			Type:      domain.LinkReport,
			ProjectID: projectID,
			POID:      &po.ID,
			Title:     "Inspection",
			URL:       "https://files.example/r1",
		})
		return err
	})
	if err != nil {
		t.Fatalf("setup dependents: %v", err)
	}

	if err := store.RunInTransaction(context.Background(), func(tx *Transaction) error {
		return tx.DeleteProject(projectID)
	}); err != nil {
		t.Fatalf("delete project: %v", err)
	}

	snap := store.Snapshot()
	if len(snap.Projects) != 0 || len(snap.PurchaseOrders) != 0 || len(snap.Shipments) != 0 || len(snap.ExternalLinks) != 0 {
		t.Fatalf("dangling dependents after project delete: %+v", snap.Counts())
	}
	// The supplier and client are unrelated and must survive.
	if len(snap.Suppliers) != 1 || len(snap.Clients) != 1 {
		t.Fatalf("unrelated records removed: %+v", snap.Counts())
	}
}

func TestDeleteProjectNullsOrderLinksOnOtherProjects(t *testing.T) {
	store := newTestStore(t)
	_, projectID, supplierID := fixture(t, store)
	po := addOrder(t, store, "po-1", projectID, supplierID, 40, nil)

	var otherProjectID, linkID string
	err := store.RunInTransaction(context.Background(), func(tx *Transaction) error {
		other, err := tx.CreateProject(Project{Name: "Warehouse retrofit"})
		if err != nil {
			return err
		}
		otherProjectID = other.ID
		link, err := tx.CreateExternalLink(ExternalLink{
			Type:      domain.LinkReport,
			ProjectID: other.ID,
			POID:      &po.ID,
			Title:     "Shared order report",
			URL:       "https://files.example/r2",
		})
		linkID = link.ID
		return err
	})
	if err != nil {
		t.Fatalf("setup cross-project link: %v", err)
	}

	if err := store.RunInTransaction(context.Background(), func(tx *Transaction) error {
		return tx.DeleteProject(projectID)
	}); err != nil {
		t.Fatalf("delete project: %v", err)
	}

	snap := store.Snapshot()
	if len(snap.ExternalLinks) != 1 {
		t.Fatalf("link on the surviving project must remain, got %d links", len(snap.ExternalLinks))
	}
	link := snap.ExternalLinks[0]
	if link.ID != linkID || link.ProjectID != otherProjectID {
		t.Fatalf("unexpected surviving link: %+v", link)
	}
	if link.POID != nil {
		t.Fatalf("poId still references deleted purchase order %q", *link.POID)
	}
}

func TestDeleteSupplierCascadesOrdersButNullsLinks(t *testing.T) {
	store := newTestStore(t)
	_, projectID, supplierID := fixture(t, store)
	po := addOrder(t, store, "po-1", projectID, supplierID, 60, nil)

	err := store.RunInTransaction(context.Background(), func(tx *Transaction) error {
		if _, err := tx.CreateShipment(Shipment{
			ProjectID:      projectID,
			SupplierID:     supplierID,
			POID:           po.ID,
			Type:           "Air Freight",
			TrackingNumber: "TRK-2",
		}); err != nil {
			return err
		}
		_, err := tx.CreateExternalLink(ExternalLink{
			Type:       domain.LinkPhoto,
			ProjectID:  projectID,
			SupplierID: &supplierID,
			POID:       &po.ID,
			Title:      "Weld photos",
			URL:        "https://files.example/p1",
		})
		return err
	})
	if err != nil {
		t.Fatalf("setup dependents: %v", err)
	}

	if err := store.RunInTransaction(context.Background(), func(tx *Transaction) error {
		return tx.DeleteSupplier(supplierID)
	}); err != nil {
		t.Fatalf("delete supplier: %v", err)
	}

	snap := store.Snapshot()
	if len(snap.PurchaseOrders) != 0 {
		t.Fatal("purchase orders referencing the supplier must be removed")
	}
	if len(snap.Shipments) != 0 {
		t.Fatal("shipments referencing the supplier must be removed")
	}
	if len(snap.ExternalLinks) != 1 {
		t.Fatal("external links must survive supplier deletion")
	}
	link := snap.ExternalLinks[0]
	if link.SupplierID != nil {
		t.Fatalf("expected supplierId nulled, got %v", *link.SupplierID)
	}
	if link.POID != nil {
		t.Fatalf("expected poId nulled after its order cascaded, got %v", *link.POID)
	}
}

func TestDeletePurchaseOrderCascades(t *testing.T) {
	store := newTestStore(t)
	_, projectID, supplierID := fixture(t, store)
	keep := addOrder(t, store, "po-keep", projectID, supplierID, 30, nil)
	gone := addOrder(t, store, "po-gone", projectID, supplierID, 70, nil)

	err := store.RunInTransaction(context.Background(), func(tx *Transaction) error {
		if _, err := tx.CreateShipment(Shipment{
			ProjectID:      projectID,
			SupplierID:     supplierID,
			POID:           gone.ID,
			Type:           "Air Freight",
			TrackingNumber: "TRK-3",
		}); err != nil {
			return err
		}
		_, err := tx.CreateExternalLink(ExternalLink{
			Type:      domain.LinkTracking,
			ProjectID: projectID,
			POID:      &gone.ID,
			Title:     "Carrier page",
			URL:       "https://track.example/3",
		})
		return err
	})
	if err != nil {
		t.Fatalf("setup dependents: %v", err)
	}

	if err := store.RunInTransaction(context.Background(), func(tx *Transaction) error {
		return tx.DeletePurchaseOrder(gone.ID)
	}); err != nil {
		t.Fatalf("delete purchase order: %v", err)
	}

	snap := store.Snapshot()
	if len(snap.PurchaseOrders) != 1 || snap.PurchaseOrders[0].ID != keep.ID {
		t.Fatalf("wrong orders survived: %+v", snap.PurchaseOrders)
	}
	if len(snap.Shipments) != 0 {
		t.Fatal("shipments of the deleted order must be removed")
	}
	if len(snap.ExternalLinks) != 1 || snap.ExternalLinks[0].POID != nil {
		t.Fatal("link must survive with poId nulled")
	}
	// Remaining order is the only input to the parent's progress now.
	if snap.Projects[0].Progress != 30 {
		t.Fatalf("project progress = %d, want 30", snap.Projects[0].Progress)
	}
}

func TestDeleteMissingEntityReportsNotFound(t *testing.T) {
	store := newTestStore(t)
	ops := map[string]func(tx *Transaction) error{
		"client":         func(tx *Transaction) error { return tx.DeleteClient("x") },
		"project":        func(tx *Transaction) error { return tx.DeleteProject("x") },
		"supplier":       func(tx *Transaction) error { return tx.DeleteSupplier("x") },
		"purchase order": func(tx *Transaction) error { return tx.DeletePurchaseOrder("x") },
		"shipment":       func(tx *Transaction) error { return tx.DeleteShipment("x") },
		"external link":  func(tx *Transaction) error { return tx.DeleteExternalLink("x") },
	}
	for name, op := range ops {
		err := store.RunInTransaction(context.Background(), op)
		if !domain.IsNotFound(err) {
			t.Errorf("delete %s: expected NotFoundError, got %v", name, err)
		}
	}
}

func TestSnapshotIsIsolatedFromStore(t *testing.T) {
	store := newTestStore(t)
	fixture(t, store)
	snap := store.Snapshot()
	snap.Clients[0].Name = "mutated"
	if store.Snapshot().Clients[0].Name == "mutated" {
		t.Fatal("snapshot mutation leaked into store state")
	}
}

func TestInsertionOrderPreserved(t *testing.T) {
	store := newTestStore(t)
	ids := []string{"c3", "c1", "c2"}
	err := store.RunInTransaction(context.Background(), func(tx *Transaction) error {
		for _, id := range ids {
			if _, err := tx.CreateClient(Client{Base: domain.Base{ID: id}, Name: "Client " + id}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("create clients: %v", err)
	}
	snap := store.Snapshot()
	for i, id := range ids {
		if snap.Clients[i].ID != id {
			t.Fatalf("order not preserved at %d: got %s want %s", i, snap.Clients[i].ID, id)
		}
	}
}
