package domain

// Snapshot is a point-in-time copy of all six collections. Slice order is
// insertion order and is preserved by both persistence adapters.
type Snapshot struct {
	Projects       []Project       `json:"projects"`
	Clients        []Client        `json:"clients"`
	Suppliers      []Supplier      `json:"suppliers"`
	PurchaseOrders []PurchaseOrder `json:"purchaseOrders"`
	ExternalLinks  []ExternalLink  `json:"externalLinks"`
	Shipments      []Shipment      `json:"shipments"`
}

// CloneClient returns a deep copy of a client record.
func CloneClient(c Client) Client { return c }

// CloneProject returns a deep copy of a project record.
func CloneProject(p Project) Project {
	cp := p
	if p.ClientID != nil {
		id := *p.ClientID
		cp.ClientID = &id
	}
	return cp
}

// CloneSupplier returns a deep copy of a supplier record.
func CloneSupplier(s Supplier) Supplier {
	cp := s
	cp.PositiveComments = append([]string(nil), s.PositiveComments...)
	cp.NegativeComments = append([]string(nil), s.NegativeComments...)
	return cp
}

// ClonePurchaseOrder returns a deep copy of a purchase order and its parts.
func ClonePurchaseOrder(po PurchaseOrder) PurchaseOrder {
	cp := po
	cp.Parts = append([]Part(nil), po.Parts...)
	return cp
}

// CloneShipment returns a deep copy of a shipment record.
func CloneShipment(s Shipment) Shipment { return s }

// CloneExternalLink returns a deep copy of an external link record.
func CloneExternalLink(l ExternalLink) ExternalLink {
	cp := l
	if l.SupplierID != nil {
		id := *l.SupplierID
		cp.SupplierID = &id
	}
	if l.POID != nil {
		id := *l.POID
		cp.POID = &id
	}
	return cp
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Projects:       make([]Project, 0, len(s.Projects)),
		Clients:        make([]Client, 0, len(s.Clients)),
		Suppliers:      make([]Supplier, 0, len(s.Suppliers)),
		PurchaseOrders: make([]PurchaseOrder, 0, len(s.PurchaseOrders)),
		ExternalLinks:  make([]ExternalLink, 0, len(s.ExternalLinks)),
		Shipments:      make([]Shipment, 0, len(s.Shipments)),
	}
	for _, p := range s.Projects {
		out.Projects = append(out.Projects, CloneProject(p))
	}
	for _, c := range s.Clients {
		out.Clients = append(out.Clients, CloneClient(c))
	}
	for _, sp := range s.Suppliers {
		out.Suppliers = append(out.Suppliers, CloneSupplier(sp))
	}
	for _, po := range s.PurchaseOrders {
		out.PurchaseOrders = append(out.PurchaseOrders, ClonePurchaseOrder(po))
	}
	for _, l := range s.ExternalLinks {
		out.ExternalLinks = append(out.ExternalLinks, CloneExternalLink(l))
	}
	for _, sh := range s.Shipments {
		out.Shipments = append(out.Shipments, CloneShipment(sh))
	}
	return out
}

// Normalize replaces nil collections with empty slices. Blobs written by
// earlier versions may omit the shipments key entirely; decoding those leaves
// the slice nil, which Normalize repairs.
func (s *Snapshot) Normalize() {
	if s.Projects == nil {
		s.Projects = []Project{}
	}
	if s.Clients == nil {
		s.Clients = []Client{}
	}
	if s.Suppliers == nil {
		s.Suppliers = []Supplier{}
	}
	if s.PurchaseOrders == nil {
		s.PurchaseOrders = []PurchaseOrder{}
	}
	if s.ExternalLinks == nil {
		s.ExternalLinks = []ExternalLink{}
	}
	if s.Shipments == nil {
		s.Shipments = []Shipment{}
	}
}

// IsEmpty reports whether the snapshot holds no records at all.
func (s Snapshot) IsEmpty() bool {
	return len(s.Projects) == 0 && len(s.Clients) == 0 && len(s.Suppliers) == 0 &&
		len(s.PurchaseOrders) == 0 && len(s.ExternalLinks) == 0 && len(s.Shipments) == 0
}

// Counts summarizes collection sizes, keyed by entity type.
func (s Snapshot) Counts() map[EntityType]int {
	return map[EntityType]int{
		EntityProject:       len(s.Projects),
		EntityClient:        len(s.Clients),
		EntitySupplier:      len(s.Suppliers),
		EntityPurchaseOrder: len(s.PurchaseOrders),
		EntityExternalLink:  len(s.ExternalLinks),
		EntityShipment:      len(s.Shipments),
	}
}
