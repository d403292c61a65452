package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"fabtrack/pkg/domain"
)

// ErrNoRemote is reported when a sync operation runs without a configured
// remote store.
var ErrNoRemote = errors.New("no remote store configured")

// Service exposes the sanctioned mutation surface over the consistency
// engine. Every successful mutation commits atomically in memory, mirrors the
// full snapshot to the local store, and bumps the version counter used to
// sequence remote pushes.
type Service struct {
	store   *MemoryStore
	local   domain.LocalStore
	remote  domain.RemoteStore
	logger  Logger
	metrics MetricsRecorder
	nowFn   func() time.Time
	vocab   domain.ShipmentVocabulary
	archive archiveStore

	phaseMu sync.RWMutex
	phase   Phase
	source  LoadSource

	syncMu     sync.Mutex
	version    uint64
	lastSynced uint64
}

// Option configures a Service.
type Option func(*Service)

// WithLogger overrides the no-op default logger.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetricsRecorder attaches a metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLocalStore attaches the durable local mirror.
func WithLocalStore(local domain.LocalStore) Option {
	return func(s *Service) { s.local = local }
}

// WithRemoteStore attaches the remote sync backend.
func WithRemoteStore(remote domain.RemoteStore) Option {
	return func(s *Service) { s.remote = remote }
}

// WithClock overrides the time source, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// WithShipmentVocabulary selects the closed shipment type enumeration.
func WithShipmentVocabulary(v domain.ShipmentVocabulary) Option {
	return func(s *Service) { s.vocab = v }
}

// NewService constructs a service with an empty in-memory store.
func NewService(opts ...Option) *Service {
	s := &Service{
		logger: noopLogger{},
		nowFn:  func() time.Time { return time.Now().UTC() },
		phase:  PhaseUninitialized,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.store = NewMemoryStore(s.vocab)
	s.store.nowFn = s.nowFn
	return s
}

// Store returns the underlying in-memory store.
func (s *Service) Store() *MemoryStore { return s.store }

func (s *Service) observe(ctx context.Context, op string, success bool, start time.Time) {
	if s.metrics != nil {
		s.metrics.Observe(ctx, op, success, time.Since(start))
	}
}

// mutate runs fn transactionally and, on success, bumps the version and
// mirrors the committed snapshot to the local store.
func (s *Service) mutate(ctx context.Context, op string, fn func(tx *Transaction) error) error {
	start := time.Now()
	err := s.store.RunInTransaction(ctx, fn)
	if err != nil {
		s.observe(ctx, op, false, start)
		s.logger.Warn("mutation rejected", "operation", op, "error", err)
		return err
	}
	s.bumpVersion()
	s.mirror(ctx, op)
	s.observe(ctx, op, true, start)
	return nil
}

func (s *Service) bumpVersion() uint64 {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()
	s.version++
	return s.version
}

// mirror writes the committed snapshot through to the local store. A mirror
// failure is logged but never rolls back the in-memory mutation; local state
// stays the immediate source of truth for reads.
func (s *Service) mirror(ctx context.Context, op string) {
	if s.local == nil {
		return
	}
	if err := s.local.Save(ctx, s.store.Snapshot()); err != nil {
		s.logger.Error("local mirror failed", "operation", op, "error", err)
	}
}

// Version returns the monotonic mutation counter.
func (s *Service) Version() uint64 {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()
	return s.version
}

// Synced reports whether the latest local version has been confirmed pushed.
func (s *Service) Synced() bool {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()
	return s.lastSynced == s.version
}

// Read model ------------------------------------------------------------------

// Snapshot returns a deep copy of the full committed state.
func (s *Service) Snapshot() Snapshot { return s.store.Snapshot() }

// ListProjects returns all projects in insertion order.
func (s *Service) ListProjects() []Project { return s.store.Snapshot().Projects }

// ListClients returns all clients in insertion order.
func (s *Service) ListClients() []Client { return s.store.Snapshot().Clients }

// ListSuppliers returns all suppliers in insertion order.
func (s *Service) ListSuppliers() []Supplier { return s.store.Snapshot().Suppliers }

// ListPurchaseOrders returns all purchase orders in insertion order.
func (s *Service) ListPurchaseOrders() []PurchaseOrder { return s.store.Snapshot().PurchaseOrders }

// ListShipments returns all shipments in insertion order.
func (s *Service) ListShipments() []Shipment { return s.store.Snapshot().Shipments }

// ListExternalLinks returns all external links in insertion order.
func (s *Service) ListExternalLinks() []ExternalLink { return s.store.Snapshot().ExternalLinks }

// GetProject returns the project with the given id.
func (s *Service) GetProject(id string) (Project, bool) {
	for _, p := range s.store.Snapshot().Projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// GetPurchaseOrder returns the purchase order with the given id.
func (s *Service) GetPurchaseOrder(id string) (PurchaseOrder, bool) {
	for _, po := range s.store.Snapshot().PurchaseOrders {
		if po.ID == id {
			return po, true
		}
	}
	return PurchaseOrder{}, false
}

// Mutations -------------------------------------------------------------------

// AddClient creates a client record.
func (s *Service) AddClient(ctx context.Context, c Client) (Client, error) {
	var created Client
	err := s.mutate(ctx, "add_client", func(tx *Transaction) error {
		var err error
		created, err = tx.CreateClient(c)
		return err
	})
	return created, err
}

// UpdateClient patches a client via the mutator.
func (s *Service) UpdateClient(ctx context.Context, id string, mutator func(*Client) error) (Client, error) {
	var updated Client
	err := s.mutate(ctx, "update_client", func(tx *Transaction) error {
		var err error
		updated, err = tx.UpdateClient(id, mutator)
		return err
	})
	return updated, err
}

// DeleteClient removes a client, nulling clientId on its projects.
func (s *Service) DeleteClient(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_client", func(tx *Transaction) error {
		return tx.DeleteClient(id)
	})
}

// AddProject creates a project record.
func (s *Service) AddProject(ctx context.Context, p Project) (Project, error) {
	var created Project
	err := s.mutate(ctx, "add_project", func(tx *Transaction) error {
		var err error
		created, err = tx.CreateProject(p)
		return err
	})
	return created, err
}

// UpdateProject patches a project via the mutator.
func (s *Service) UpdateProject(ctx context.Context, id string, mutator func(*Project) error) (Project, error) {
	var updated Project
	err := s.mutate(ctx, "update_project", func(tx *Transaction) error {
		var err error
		updated, err = tx.UpdateProject(id, mutator)
		return err
	})
	return updated, err
}

// DeleteProject removes a project and everything that references it.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_project", func(tx *Transaction) error {
		return tx.DeleteProject(id)
	})
}

// AddSupplier creates a supplier record.
func (s *Service) AddSupplier(ctx context.Context, sp Supplier) (Supplier, error) {
	var created Supplier
	err := s.mutate(ctx, "add_supplier", func(tx *Transaction) error {
		var err error
		created, err = tx.CreateSupplier(sp)
		return err
	})
	return created, err
}

// UpdateSupplier patches a supplier via the mutator.
func (s *Service) UpdateSupplier(ctx context.Context, id string, mutator func(*Supplier) error) (Supplier, error) {
	var updated Supplier
	err := s.mutate(ctx, "update_supplier", func(tx *Transaction) error {
		var err error
		updated, err = tx.UpdateSupplier(id, mutator)
		return err
	})
	return updated, err
}

// DeleteSupplier removes a supplier together with its purchase orders and
// shipments; external links survive with their supplier reference nulled.
func (s *Service) DeleteSupplier(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_supplier", func(tx *Transaction) error {
		return tx.DeleteSupplier(id)
	})
}

// AddPurchaseOrder creates a purchase order record.
func (s *Service) AddPurchaseOrder(ctx context.Context, po PurchaseOrder) (PurchaseOrder, error) {
	var created PurchaseOrder
	err := s.mutate(ctx, "add_purchase_order", func(tx *Transaction) error {
		var err error
		created, err = tx.CreatePurchaseOrder(po)
		return err
	})
	return created, err
}

// UpdatePurchaseOrder patches a purchase order via the mutator.
func (s *Service) UpdatePurchaseOrder(ctx context.Context, id string, mutator func(*PurchaseOrder) error) (PurchaseOrder, error) {
	var updated PurchaseOrder
	err := s.mutate(ctx, "update_purchase_order", func(tx *Transaction) error {
		var err error
		updated, err = tx.UpdatePurchaseOrder(id, mutator)
		return err
	})
	return updated, err
}

// DeletePurchaseOrder removes a purchase order and its dependents.
func (s *Service) DeletePurchaseOrder(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_purchase_order", func(tx *Transaction) error {
		return tx.DeletePurchaseOrder(id)
	})
}

// AddShipment creates a shipment record.
func (s *Service) AddShipment(ctx context.Context, sh Shipment) (Shipment, error) {
	var created Shipment
	err := s.mutate(ctx, "add_shipment", func(tx *Transaction) error {
		var err error
		created, err = tx.CreateShipment(sh)
		return err
	})
	return created, err
}

// UpdateShipment patches a shipment via the mutator.
func (s *Service) UpdateShipment(ctx context.Context, id string, mutator func(*Shipment) error) (Shipment, error) {
	var updated Shipment
	err := s.mutate(ctx, "update_shipment", func(tx *Transaction) error {
		var err error
		updated, err = tx.UpdateShipment(id, mutator)
		return err
	})
	return updated, err
}

// DeleteShipment removes a shipment record.
func (s *Service) DeleteShipment(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_shipment", func(tx *Transaction) error {
		return tx.DeleteShipment(id)
	})
}

// AddExternalLink creates an external link record.
func (s *Service) AddExternalLink(ctx context.Context, l ExternalLink) (ExternalLink, error) {
	var created ExternalLink
	err := s.mutate(ctx, "add_external_link", func(tx *Transaction) error {
		var err error
		created, err = tx.CreateExternalLink(l)
		return err
	})
	return created, err
}

// UpdateExternalLink patches an external link via the mutator.
func (s *Service) UpdateExternalLink(ctx context.Context, id string, mutator func(*ExternalLink) error) (ExternalLink, error) {
	var updated ExternalLink
	err := s.mutate(ctx, "update_external_link", func(tx *Transaction) error {
		var err error
		updated, err = tx.UpdateExternalLink(id, mutator)
		return err
	})
	return updated, err
}

// DeleteExternalLink removes an external link record.
func (s *Service) DeleteExternalLink(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_external_link", func(tx *Transaction) error {
		return tx.DeleteExternalLink(id)
	})
}

// Bulk operations -------------------------------------------------------------

// GenerateSampleData replaces the in-memory state with the synthetic sample
// dataset and mirrors it locally.
func (s *Service) GenerateSampleData(ctx context.Context) error {
	start := time.Now()
	s.store.ImportState(seedSnapshot(s.vocab, s.nowFn()))
	s.bumpVersion()
	s.mirror(ctx, "generate_sample_data")
	s.observe(ctx, "generate_sample_data", true, start)
	s.logger.Info("sample data generated")
	return nil
}

// ClearAll empties every in-memory collection and removes the persisted blob.
// The blob goes first so a failing local store leaves the in-memory state and
// version untouched.
func (s *Service) ClearAll(ctx context.Context) error {
	start := time.Now()
	if s.local != nil {
		if err := s.local.Clear(ctx); err != nil {
			s.observe(ctx, "clear_all", false, start)
			return err
		}
	}
	s.store.Reset()
	s.bumpVersion()
	s.observe(ctx, "clear_all", true, start)
	s.logger.Info("all data cleared")
	return nil
}

// Remote sync -----------------------------------------------------------------

// SyncToRemote pushes the current snapshot. The push is tagged with the
// version observed at start and re-reads committed state rather than closing
// over an earlier snapshot; a confirmation arriving after further local edits
// is discarded so the next sync cycle picks the edits up.
func (s *Service) SyncToRemote(ctx context.Context) domain.SyncResult {
	if s.remote == nil {
		return domain.Failed("push", ErrNoRemote)
	}
	start := time.Now()
	s.syncMu.Lock()
	taggedVersion := s.version
	s.syncMu.Unlock()

	snapshot := s.store.Snapshot()
	res := s.remote.PushAll(ctx, snapshot)
	s.observe(ctx, "sync_to_remote", res.Success, start)
	if !res.Success {
		s.logger.Warn("remote push failed", "step", res.Step, "error", res.Err)
		return res
	}

	s.syncMu.Lock()
	defer s.syncMu.Unlock()
	if s.version != taggedVersion {
		s.logger.Debug("stale push confirmation discarded",
			"pushed_version", taggedVersion, "current_version", s.version)
		return res
	}
	s.lastSynced = taggedVersion
	return res
}

// LoadFromRemote replaces local state with a freshly pulled remote snapshot.
func (s *Service) LoadFromRemote(ctx context.Context) domain.SyncResult {
	if s.remote == nil {
		return domain.Failed("pull", ErrNoRemote)
	}
	start := time.Now()
	snapshot, res := s.remote.PullAll(ctx)
	s.observe(ctx, "load_from_remote", res.Success, start)
	if !res.Success {
		s.logger.Warn("remote pull failed", "step", res.Step, "error", res.Err)
		return res
	}
	s.store.ImportState(snapshot)
	version := s.bumpVersion()
	s.mirror(ctx, "load_from_remote")
	s.syncMu.Lock()
	s.lastSynced = version
	s.syncMu.Unlock()
	return res
}
