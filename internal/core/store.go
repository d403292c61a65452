// Package core implements the fabtrack consistency engine: a canonical
// in-memory store over six entity collections whose mutations are atomic
// transitions from one consistent snapshot to the next, with cascade and
// derivation rules applied inside the same transition.
package core

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"fabtrack/pkg/domain"
)

type (
	// Client aliases domain.Client for store operations.
	Client = domain.Client
	// Project aliases domain.Project.
	Project = domain.Project
	// Supplier aliases domain.Supplier.
	Supplier = domain.Supplier
	// Part aliases domain.Part.
	Part = domain.Part
	// PurchaseOrder aliases domain.PurchaseOrder.
	PurchaseOrder = domain.PurchaseOrder
	// Shipment aliases domain.Shipment.
	Shipment = domain.Shipment
	// ExternalLink aliases domain.ExternalLink.
	ExternalLink = domain.ExternalLink
	// Snapshot aliases domain.Snapshot.
	Snapshot = domain.Snapshot
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
)

type memoryState struct {
	clients        []Client
	projects       []Project
	suppliers      []Supplier
	purchaseOrders []PurchaseOrder
	externalLinks  []ExternalLink
	shipments      []Shipment
}

func stateFromSnapshot(s Snapshot) memoryState {
	c := s.Clone()
	return memoryState{
		clients:        c.Clients,
		projects:       c.Projects,
		suppliers:      c.Suppliers,
		purchaseOrders: c.PurchaseOrders,
		externalLinks:  c.ExternalLinks,
		shipments:      c.Shipments,
	}
}

func (s memoryState) raw() Snapshot {
	return Snapshot{
		Projects:       s.projects,
		Clients:        s.clients,
		Suppliers:      s.suppliers,
		PurchaseOrders: s.purchaseOrders,
		ExternalLinks:  s.externalLinks,
		Shipments:      s.shipments,
	}
}

func (s memoryState) snapshot() Snapshot {
	cloned := s.raw().Clone()
	cloned.Normalize()
	return cloned
}

func (s memoryState) clone() memoryState {
	return stateFromSnapshot(s.raw())
}

// MemoryStore holds the canonical in-memory state. All six collections are
// owned exclusively by the store; readers receive clones and writers go
// through RunInTransaction.
type MemoryStore struct {
	mu    sync.RWMutex
	state memoryState
	vocab domain.ShipmentVocabulary
	nowFn func() time.Time
}

// NewMemoryStore constructs an empty store validating shipments against the
// supplied vocabulary (FreightVocabulary when zero-valued).
func NewMemoryStore(vocab domain.ShipmentVocabulary) *MemoryStore {
	if len(vocab.Types) == 0 {
		vocab = domain.FreightVocabulary
	}
	return &MemoryStore{
		vocab: vocab,
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) newID() string {
	return uuid.NewString()
}

// Transaction is a mutation set applied against a cloned state. Commit swaps
// the store state wholesale, so partially applied cascades are never
// observable.
type Transaction struct {
	store   *MemoryStore
	state   memoryState
	changes []Change
	now     time.Time
}

// RunInTransaction executes fn within a transactional copy of the store
// state and commits the copy when fn succeeds.
func (s *MemoryStore) RunInTransaction(ctx context.Context, fn func(tx *Transaction) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

// Snapshot returns a deep copy of the committed state.
func (s *MemoryStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.snapshot()
}

// ImportState replaces the committed state with the supplied snapshot.
func (s *MemoryStore) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateFromSnapshot(snapshot)
}

// Reset empties every collection.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryState{}
}

// Changes returns the change log recorded so far within the transaction.
func (tx *Transaction) Changes() []Change {
	return append([]Change(nil), tx.changes...)
}

func (tx *Transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Collection lookups ---------------------------------------------------------

func (tx *Transaction) findClient(id string) int {
	for i := range tx.state.clients {
		if tx.state.clients[i].ID == id {
			return i
		}
	}
	return -1
}

func (tx *Transaction) findProject(id string) int {
	for i := range tx.state.projects {
		if tx.state.projects[i].ID == id {
			return i
		}
	}
	return -1
}

func (tx *Transaction) findSupplier(id string) int {
	for i := range tx.state.suppliers {
		if tx.state.suppliers[i].ID == id {
			return i
		}
	}
	return -1
}

func (tx *Transaction) findPurchaseOrder(id string) int {
	for i := range tx.state.purchaseOrders {
		if tx.state.purchaseOrders[i].ID == id {
			return i
		}
	}
	return -1
}

func (tx *Transaction) findShipment(id string) int {
	for i := range tx.state.shipments {
		if tx.state.shipments[i].ID == id {
			return i
		}
	}
	return -1
}

func (tx *Transaction) findExternalLink(id string) int {
	for i := range tx.state.externalLinks {
		if tx.state.externalLinks[i].ID == id {
			return i
		}
	}
	return -1
}

// FindPurchaseOrder returns a copy of the purchase order within the
// transaction snapshot.
func (tx *Transaction) FindPurchaseOrder(id string) (PurchaseOrder, bool) {
	if i := tx.findPurchaseOrder(id); i >= 0 {
		return domain.ClonePurchaseOrder(tx.state.purchaseOrders[i]), true
	}
	return PurchaseOrder{}, false
}

// FindProject returns a copy of the project within the transaction snapshot.
func (tx *Transaction) FindProject(id string) (Project, bool) {
	if i := tx.findProject(id); i >= 0 {
		return domain.CloneProject(tx.state.projects[i]), true
	}
	return Project{}, false
}

// Client ----------------------------------------------------------------------

// CreateClient appends a new client record.
func (tx *Transaction) CreateClient(c Client) (Client, error) {
	if err := tx.validateClient(c); err != nil {
		return Client{}, err
	}
	if c.ID == "" {
		c.ID = tx.store.newID()
	}
	c.CreatedAt = tx.now
	c.UpdatedAt = tx.now
	tx.state.clients = append(tx.state.clients, domain.CloneClient(c))
	tx.recordChange(Change{Entity: domain.EntityClient, Action: domain.ActionCreate, After: domain.CloneClient(c)})
	return domain.CloneClient(c), nil
}

// UpdateClient mutates a client using the provided mutator function.
func (tx *Transaction) UpdateClient(id string, mutator func(*Client) error) (Client, error) {
	i := tx.findClient(id)
	if i < 0 {
		return Client{}, domain.NotFoundError{Entity: domain.EntityClient, ID: id}
	}
	before := domain.CloneClient(tx.state.clients[i])
	current := domain.CloneClient(before)
	if err := mutator(&current); err != nil {
		return Client{}, err
	}
	current.ID = id
	if err := tx.validateClient(current); err != nil {
		return Client{}, err
	}
	current.UpdatedAt = tx.now
	tx.state.clients[i] = domain.CloneClient(current)
	tx.recordChange(Change{Entity: domain.EntityClient, Action: domain.ActionUpdate, Before: before, After: domain.CloneClient(current)})
	return domain.CloneClient(current), nil
}

// DeleteClient removes a client. Projects referencing it keep existing with
// their clientId nulled; nothing else cascades.
func (tx *Transaction) DeleteClient(id string) error {
	i := tx.findClient(id)
	if i < 0 {
		return domain.NotFoundError{Entity: domain.EntityClient, ID: id}
	}
	before := domain.CloneClient(tx.state.clients[i])
	tx.state.clients = append(tx.state.clients[:i], tx.state.clients[i+1:]...)
	for j := range tx.state.projects {
		if tx.state.projects[j].ClientID != nil && *tx.state.projects[j].ClientID == id {
			tx.state.projects[j].ClientID = nil
		}
	}
	tx.recordChange(Change{Entity: domain.EntityClient, Action: domain.ActionDelete, Before: before})
	return nil
}

// Project ---------------------------------------------------------------------

// CreateProject appends a new project record.
func (tx *Transaction) CreateProject(p Project) (Project, error) {
	if err := tx.validateProject(p); err != nil {
		return Project{}, err
	}
	if p.ID == "" {
		p.ID = tx.store.newID()
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.projects = append(tx.state.projects, domain.CloneProject(p))
	tx.recordChange(Change{Entity: domain.EntityProject, Action: domain.ActionCreate, After: domain.CloneProject(p)})
	return domain.CloneProject(p), nil
}

// UpdateProject mutates a project. Progress is not rederived here; project
// progress only recomputes on purchase order mutations.
func (tx *Transaction) UpdateProject(id string, mutator func(*Project) error) (Project, error) {
	i := tx.findProject(id)
	if i < 0 {
		return Project{}, domain.NotFoundError{Entity: domain.EntityProject, ID: id}
	}
	before := domain.CloneProject(tx.state.projects[i])
	current := domain.CloneProject(before)
	if err := mutator(&current); err != nil {
		return Project{}, err
	}
	current.ID = id
	if err := tx.validateProject(current); err != nil {
		return Project{}, err
	}
	current.UpdatedAt = tx.now
	tx.state.projects[i] = domain.CloneProject(current)
	tx.recordChange(Change{Entity: domain.EntityProject, Action: domain.ActionUpdate, Before: before, After: domain.CloneProject(current)})
	return domain.CloneProject(current), nil
}

// DeleteProject removes a project and cascades to every purchase order,
// external link and shipment referencing it. Links on other projects that
// pointed at a removed order keep existing with poId nulled. Dependents are
// collected before anything is removed and the combined next state commits
// atomically.
func (tx *Transaction) DeleteProject(id string) error {
	i := tx.findProject(id)
	if i < 0 {
		return domain.NotFoundError{Entity: domain.EntityProject, ID: id}
	}
	before := domain.CloneProject(tx.state.projects[i])

	removedPOs := map[string]bool{}
	for _, po := range tx.state.purchaseOrders {
		if po.ProjectID == id {
			removedPOs[po.ID] = true
		}
	}
	tx.state.projects = append(tx.state.projects[:i], tx.state.projects[i+1:]...)
	tx.removePurchaseOrdersWhere(func(po PurchaseOrder) bool { return removedPOs[po.ID] })
	tx.removeShipmentsWhere(func(s Shipment) bool { return s.ProjectID == id || removedPOs[s.POID] })
	tx.removeExternalLinksWhere(func(l ExternalLink) bool { return l.ProjectID == id })
	for j := range tx.state.externalLinks {
		l := &tx.state.externalLinks[j]
		if l.POID != nil && removedPOs[*l.POID] {
			l.POID = nil
		}
	}

	tx.recordChange(Change{Entity: domain.EntityProject, Action: domain.ActionDelete, Before: before})
	return nil
}

// Supplier --------------------------------------------------------------------

// CreateSupplier appends a new supplier record.
func (tx *Transaction) CreateSupplier(s Supplier) (Supplier, error) {
	if err := tx.validateSupplier(s); err != nil {
		return Supplier{}, err
	}
	if s.ID == "" {
		s.ID = tx.store.newID()
	}
	s.CreatedAt = tx.now
	s.UpdatedAt = tx.now
	tx.state.suppliers = append(tx.state.suppliers, domain.CloneSupplier(s))
	tx.recordChange(Change{Entity: domain.EntitySupplier, Action: domain.ActionCreate, After: domain.CloneSupplier(s)})
	return domain.CloneSupplier(s), nil
}

// UpdateSupplier mutates a supplier using the provided mutator function.
func (tx *Transaction) UpdateSupplier(id string, mutator func(*Supplier) error) (Supplier, error) {
	i := tx.findSupplier(id)
	if i < 0 {
		return Supplier{}, domain.NotFoundError{Entity: domain.EntitySupplier, ID: id}
	}
	before := domain.CloneSupplier(tx.state.suppliers[i])
	current := domain.CloneSupplier(before)
	if err := mutator(&current); err != nil {
		return Supplier{}, err
	}
	current.ID = id
	if err := tx.validateSupplier(current); err != nil {
		return Supplier{}, err
	}
	current.UpdatedAt = tx.now
	tx.state.suppliers[i] = domain.CloneSupplier(current)
	tx.recordChange(Change{Entity: domain.EntitySupplier, Action: domain.ActionUpdate, Before: before, After: domain.CloneSupplier(current)})
	return domain.CloneSupplier(current), nil
}

// DeleteSupplier removes a supplier. Purchase orders and shipments
// referencing it are deleted (including shipments tied to the removed
// orders); external links keep existing with supplierId nulled. Projects that
// lost purchase orders get their progress recomputed.
func (tx *Transaction) DeleteSupplier(id string) error {
	i := tx.findSupplier(id)
	if i < 0 {
		return domain.NotFoundError{Entity: domain.EntitySupplier, ID: id}
	}
	before := domain.CloneSupplier(tx.state.suppliers[i])

	removedPOs := map[string]bool{}
	affectedProjects := map[string]bool{}
	for _, po := range tx.state.purchaseOrders {
		if po.SupplierID == id {
			removedPOs[po.ID] = true
			affectedProjects[po.ProjectID] = true
		}
	}
	tx.state.suppliers = append(tx.state.suppliers[:i], tx.state.suppliers[i+1:]...)
	tx.removePurchaseOrdersWhere(func(po PurchaseOrder) bool { return removedPOs[po.ID] })
	tx.removeShipmentsWhere(func(s Shipment) bool { return s.SupplierID == id || removedPOs[s.POID] })
	for j := range tx.state.externalLinks {
		l := &tx.state.externalLinks[j]
		if l.SupplierID != nil && *l.SupplierID == id {
			l.SupplierID = nil
		}
		if l.POID != nil && removedPOs[*l.POID] {
			l.POID = nil
		}
	}
	for projectID := range affectedProjects {
		tx.recomputeProjectProgress(projectID)
	}

	tx.recordChange(Change{Entity: domain.EntitySupplier, Action: domain.ActionDelete, Before: before})
	return nil
}

// PurchaseOrder ---------------------------------------------------------------

// CreatePurchaseOrder appends a new purchase order, derives its progress from
// parts when unset, and recomputes the parent project's progress.
func (tx *Transaction) CreatePurchaseOrder(po PurchaseOrder) (PurchaseOrder, error) {
	if err := tx.validatePurchaseOrder(po); err != nil {
		return PurchaseOrder{}, err
	}
	if po.ID == "" {
		po.ID = tx.store.newID()
	}
	for j := range po.Parts {
		if po.Parts[j].ID == "" {
			po.Parts[j].ID = tx.store.newID()
		}
	}
	po.Progress = derivedOrderProgress(po.Progress, po.Parts)
	po.CreatedAt = tx.now
	po.UpdatedAt = tx.now
	tx.state.purchaseOrders = append(tx.state.purchaseOrders, domain.ClonePurchaseOrder(po))
	tx.recomputeProjectProgress(po.ProjectID)
	tx.recordChange(Change{Entity: domain.EntityPurchaseOrder, Action: domain.ActionCreate, After: domain.ClonePurchaseOrder(po)})
	return domain.ClonePurchaseOrder(po), nil
}

// UpdatePurchaseOrder mutates a purchase order. Order progress rederives only
// when the parts array changed; project progress recomputes for the parent
// (both parents when the order moved between projects).
func (tx *Transaction) UpdatePurchaseOrder(id string, mutator func(*PurchaseOrder) error) (PurchaseOrder, error) {
	i := tx.findPurchaseOrder(id)
	if i < 0 {
		return PurchaseOrder{}, domain.NotFoundError{Entity: domain.EntityPurchaseOrder, ID: id}
	}
	before := domain.ClonePurchaseOrder(tx.state.purchaseOrders[i])
	current := domain.ClonePurchaseOrder(before)
	if err := mutator(&current); err != nil {
		return PurchaseOrder{}, err
	}
	current.ID = id
	if err := tx.validatePurchaseOrder(current); err != nil {
		return PurchaseOrder{}, err
	}
	for j := range current.Parts {
		if current.Parts[j].ID == "" {
			current.Parts[j].ID = tx.store.newID()
		}
	}
	if partsChanged(before.Parts, current.Parts) {
		current.Progress = derivedOrderProgress(current.Progress, current.Parts)
	}
	current.UpdatedAt = tx.now
	tx.state.purchaseOrders[i] = domain.ClonePurchaseOrder(current)
	tx.recomputeProjectProgress(current.ProjectID)
	if before.ProjectID != current.ProjectID {
		tx.recomputeProjectProgress(before.ProjectID)
	}
	tx.recordChange(Change{Entity: domain.EntityPurchaseOrder, Action: domain.ActionUpdate, Before: before, After: domain.ClonePurchaseOrder(current)})
	return domain.ClonePurchaseOrder(current), nil
}

// DeletePurchaseOrder removes a purchase order together with its owned parts,
// deletes shipments referencing it, nulls poId on external links and
// recomputes the parent project's progress.
func (tx *Transaction) DeletePurchaseOrder(id string) error {
	i := tx.findPurchaseOrder(id)
	if i < 0 {
		return domain.NotFoundError{Entity: domain.EntityPurchaseOrder, ID: id}
	}
	before := domain.ClonePurchaseOrder(tx.state.purchaseOrders[i])
	tx.state.purchaseOrders = append(tx.state.purchaseOrders[:i], tx.state.purchaseOrders[i+1:]...)
	tx.removeShipmentsWhere(func(s Shipment) bool { return s.POID == id })
	for j := range tx.state.externalLinks {
		if tx.state.externalLinks[j].POID != nil && *tx.state.externalLinks[j].POID == id {
			tx.state.externalLinks[j].POID = nil
		}
	}
	tx.recomputeProjectProgress(before.ProjectID)
	tx.recordChange(Change{Entity: domain.EntityPurchaseOrder, Action: domain.ActionDelete, Before: before})
	return nil
}

// Shipment --------------------------------------------------------------------

// CreateShipment appends a new shipment record.
func (tx *Transaction) CreateShipment(s Shipment) (Shipment, error) {
	if err := tx.validateShipment(s); err != nil {
		return Shipment{}, err
	}
	if s.ID == "" {
		s.ID = tx.store.newID()
	}
	s.CreatedAt = tx.now
	s.UpdatedAt = tx.now
	tx.state.shipments = append(tx.state.shipments, domain.CloneShipment(s))
	tx.recordChange(Change{Entity: domain.EntityShipment, Action: domain.ActionCreate, After: domain.CloneShipment(s)})
	return domain.CloneShipment(s), nil
}

// UpdateShipment mutates a shipment using the provided mutator function.
func (tx *Transaction) UpdateShipment(id string, mutator func(*Shipment) error) (Shipment, error) {
	i := tx.findShipment(id)
	if i < 0 {
		return Shipment{}, domain.NotFoundError{Entity: domain.EntityShipment, ID: id}
	}
	before := domain.CloneShipment(tx.state.shipments[i])
	current := domain.CloneShipment(before)
	if err := mutator(&current); err != nil {
		return Shipment{}, err
	}
	current.ID = id
	if err := tx.validateShipment(current); err != nil {
		return Shipment{}, err
	}
	current.UpdatedAt = tx.now
	tx.state.shipments[i] = domain.CloneShipment(current)
	tx.recordChange(Change{Entity: domain.EntityShipment, Action: domain.ActionUpdate, Before: before, After: domain.CloneShipment(current)})
	return domain.CloneShipment(current), nil
}

// DeleteShipment removes a shipment record. Nothing cascades from it.
func (tx *Transaction) DeleteShipment(id string) error {
	i := tx.findShipment(id)
	if i < 0 {
		return domain.NotFoundError{Entity: domain.EntityShipment, ID: id}
	}
	before := domain.CloneShipment(tx.state.shipments[i])
	tx.state.shipments = append(tx.state.shipments[:i], tx.state.shipments[i+1:]...)
	tx.recordChange(Change{Entity: domain.EntityShipment, Action: domain.ActionDelete, Before: before})
	return nil
}

// ExternalLink ----------------------------------------------------------------

// CreateExternalLink appends a new external link record.
func (tx *Transaction) CreateExternalLink(l ExternalLink) (ExternalLink, error) {
	if err := tx.validateExternalLink(l); err != nil {
		return ExternalLink{}, err
	}
	if l.ID == "" {
		l.ID = tx.store.newID()
	}
	l.CreatedAt = tx.now
	l.UpdatedAt = tx.now
	tx.state.externalLinks = append(tx.state.externalLinks, domain.CloneExternalLink(l))
	tx.recordChange(Change{Entity: domain.EntityExternalLink, Action: domain.ActionCreate, After: domain.CloneExternalLink(l)})
	return domain.CloneExternalLink(l), nil
}

// UpdateExternalLink mutates an external link using the provided mutator.
func (tx *Transaction) UpdateExternalLink(id string, mutator func(*ExternalLink) error) (ExternalLink, error) {
	i := tx.findExternalLink(id)
	if i < 0 {
		return ExternalLink{}, domain.NotFoundError{Entity: domain.EntityExternalLink, ID: id}
	}
	before := domain.CloneExternalLink(tx.state.externalLinks[i])
	current := domain.CloneExternalLink(before)
	if err := mutator(&current); err != nil {
		return ExternalLink{}, err
	}
	current.ID = id
	if err := tx.validateExternalLink(current); err != nil {
		return ExternalLink{}, err
	}
	current.UpdatedAt = tx.now
	tx.state.externalLinks[i] = domain.CloneExternalLink(current)
	tx.recordChange(Change{Entity: domain.EntityExternalLink, Action: domain.ActionUpdate, Before: before, After: domain.CloneExternalLink(current)})
	return domain.CloneExternalLink(current), nil
}

// DeleteExternalLink removes an external link record.
func (tx *Transaction) DeleteExternalLink(id string) error {
	i := tx.findExternalLink(id)
	if i < 0 {
		return domain.NotFoundError{Entity: domain.EntityExternalLink, ID: id}
	}
	before := domain.CloneExternalLink(tx.state.externalLinks[i])
	tx.state.externalLinks = append(tx.state.externalLinks[:i], tx.state.externalLinks[i+1:]...)
	tx.recordChange(Change{Entity: domain.EntityExternalLink, Action: domain.ActionDelete, Before: before})
	return nil
}

// Cascade helpers -------------------------------------------------------------

func (tx *Transaction) removePurchaseOrdersWhere(match func(PurchaseOrder) bool) {
	kept := tx.state.purchaseOrders[:0]
	for _, po := range tx.state.purchaseOrders {
		if match(po) {
			tx.recordChange(Change{Entity: domain.EntityPurchaseOrder, Action: domain.ActionDelete, Before: domain.ClonePurchaseOrder(po)})
			continue
		}
		kept = append(kept, po)
	}
	tx.state.purchaseOrders = kept
}

func (tx *Transaction) removeShipmentsWhere(match func(Shipment) bool) {
	kept := tx.state.shipments[:0]
	for _, sh := range tx.state.shipments {
		if match(sh) {
			tx.recordChange(Change{Entity: domain.EntityShipment, Action: domain.ActionDelete, Before: domain.CloneShipment(sh)})
			continue
		}
		kept = append(kept, sh)
	}
	tx.state.shipments = kept
}

func (tx *Transaction) removeExternalLinksWhere(match func(ExternalLink) bool) {
	kept := tx.state.externalLinks[:0]
	for _, l := range tx.state.externalLinks {
		if match(l) {
			tx.recordChange(Change{Entity: domain.EntityExternalLink, Action: domain.ActionDelete, Before: domain.CloneExternalLink(l)})
			continue
		}
		kept = append(kept, l)
	}
	tx.state.externalLinks = kept
}
