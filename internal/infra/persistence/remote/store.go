// Package remote syncs the full snapshot against a PostgreSQL backend,
// translating the local camelCase entity shape to snake_case tables and back.
package remote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver

	"fabtrack/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.RemoteStore = (*Store)(nil)

// pgUndefinedTable is the SQLSTATE for a relation that does not exist yet.
const pgUndefinedTable = "42P01"

// executor is the subset of sql.DB the sync paths need. Tests substitute a
// recording implementation.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Store implements domain.RemoteStore against PostgreSQL. All operations are
// whole-collection: push upserts every row then prunes the rest, pull reads
// every table back in insertion order.
type Store struct {
	db *sql.DB
	ex executor
}

// Open connects to the PostgreSQL instance at dsn and provisions the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &Store{db: db, ex: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS clients (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			contact_person TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			position BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			client_id TEXT REFERENCES clients(id) ON DELETE SET NULL,
			location TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			progress INTEGER NOT NULL DEFAULT 0,
			start_date TEXT NOT NULL DEFAULT '',
			end_date TEXT NOT NULL DEFAULT '',
			project_manager TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			position BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS suppliers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			country TEXT NOT NULL DEFAULT '',
			contact_person TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			on_time_delivery DOUBLE PRECISION NOT NULL DEFAULT 0,
			location TEXT NOT NULL DEFAULT '',
			positive_comments JSONB NOT NULL DEFAULT '[]',
			negative_comments JSONB NOT NULL DEFAULT '[]',
			position BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS purchase_orders (
			id TEXT PRIMARY KEY,
			po_number TEXT NOT NULL,
			project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			supplier_id TEXT NOT NULL REFERENCES suppliers(id) ON DELETE CASCADE,
			status TEXT NOT NULL DEFAULT '',
			deadline TEXT NOT NULL DEFAULT '',
			issued_date TEXT NOT NULL DEFAULT '',
			progress INTEGER NOT NULL DEFAULT 0,
			amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			description TEXT NOT NULL DEFAULT '',
			position BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS parts (
			id TEXT PRIMARY KEY,
			po_id TEXT NOT NULL REFERENCES purchase_orders(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT '',
			progress INTEGER NOT NULL DEFAULT 0,
			position BIGINT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS external_links (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			supplier_id TEXT REFERENCES suppliers(id) ON DELETE SET NULL,
			po_id TEXT REFERENCES purchase_orders(id) ON DELETE SET NULL,
			title TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			date TEXT NOT NULL DEFAULT '',
			position BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS shipments (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			supplier_id TEXT NOT NULL REFERENCES suppliers(id) ON DELETE CASCADE,
			po_id TEXT NOT NULL REFERENCES purchase_orders(id) ON DELETE CASCADE,
			part_id TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT '',
			shipped_date TEXT NOT NULL DEFAULT '',
			etd_date TEXT NOT NULL DEFAULT '',
			eta_date TEXT NOT NULL DEFAULT '',
			container_number TEXT NOT NULL DEFAULT '',
			container_size TEXT NOT NULL DEFAULT '',
			container_type TEXT NOT NULL DEFAULT '',
			lock_number TEXT NOT NULL DEFAULT '',
			tracking_number TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			position BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.ex.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// PushAll mirrors the snapshot to the remote tables in strict parent-first
// order. Each step upserts its rows then prunes rows absent from the
// snapshot. On failure the remaining steps are skipped; completed steps stay,
// the remote schema's own constraints are the backstop.
func (s *Store) PushAll(ctx context.Context, snapshot domain.Snapshot) domain.SyncResult {
	snapshot.Normalize()
	steps := []struct {
		name string
		run  func(context.Context, domain.Snapshot) error
	}{
		{"clients", s.pushClients},
		{"projects", s.pushProjects},
		{"suppliers", s.pushSuppliers},
		{"purchase_orders", s.pushPurchaseOrders},
		{"parts", s.pushParts},
		{"external_links", s.pushExternalLinks},
		{"shipments", s.pushShipments},
	}
	for _, step := range steps {
		if err := step.run(ctx, snapshot); err != nil {
			return domain.Failed(step.name, err)
		}
	}
	return domain.OK("push complete")
}

func (s *Store) pushClients(ctx context.Context, snapshot domain.Snapshot) error {
	ids := make([]string, 0, len(snapshot.Clients))
	for i, c := range snapshot.Clients {
		r := clientToRow(c)
		ids = append(ids, r.ID)
		_, err := s.ex.ExecContext(ctx, `
			INSERT INTO clients (id, name, contact_person, email, phone, location, position, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			ON CONFLICT (id) DO UPDATE SET
				name=EXCLUDED.name, contact_person=EXCLUDED.contact_person,
				email=EXCLUDED.email, phone=EXCLUDED.phone,
				location=EXCLUDED.location, position=EXCLUDED.position,
				updated_at=EXCLUDED.updated_at`,
			r.ID, r.Name, r.ContactPerson, r.Email, r.Phone, r.Location, i, r.CreatedAt, r.UpdatedAt)
		if err != nil {
			return fmt.Errorf("upsert client %s: %w", r.ID, err)
		}
	}
	return s.prune(ctx, "clients", ids)
}

func (s *Store) pushProjects(ctx context.Context, snapshot domain.Snapshot) error {
	ids := make([]string, 0, len(snapshot.Projects))
	for i, p := range snapshot.Projects {
		r := projectToRow(p)
		ids = append(ids, r.ID)
		_, err := s.ex.ExecContext(ctx, `
			INSERT INTO projects (id, name, client_id, location, status, progress, start_date, end_date, project_manager, description, position, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			ON CONFLICT (id) DO UPDATE SET
				name=EXCLUDED.name, client_id=EXCLUDED.client_id,
				location=EXCLUDED.location, status=EXCLUDED.status,
				progress=EXCLUDED.progress, start_date=EXCLUDED.start_date,
				end_date=EXCLUDED.end_date, project_manager=EXCLUDED.project_manager,
				description=EXCLUDED.description, position=EXCLUDED.position,
				updated_at=EXCLUDED.updated_at`,
			r.ID, r.Name, r.ClientID, r.Location, r.Status, r.Progress,
			r.StartDate, r.EndDate, r.ProjectManager, r.Description, i, r.CreatedAt, r.UpdatedAt)
		if err != nil {
			return fmt.Errorf("upsert project %s: %w", r.ID, err)
		}
	}
	return s.prune(ctx, "projects", ids)
}

func (s *Store) pushSuppliers(ctx context.Context, snapshot domain.Snapshot) error {
	ids := make([]string, 0, len(snapshot.Suppliers))
	for i, sup := range snapshot.Suppliers {
		r, err := supplierToRow(sup)
		if err != nil {
			return fmt.Errorf("encode supplier %s: %w", sup.ID, err)
		}
		ids = append(ids, r.ID)
		_, err = s.ex.ExecContext(ctx, `
			INSERT INTO suppliers (id, name, country, contact_person, email, phone, rating, on_time_delivery, location, positive_comments, negative_comments, position, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
			ON CONFLICT (id) DO UPDATE SET
				name=EXCLUDED.name, country=EXCLUDED.country,
				contact_person=EXCLUDED.contact_person, email=EXCLUDED.email,
				phone=EXCLUDED.phone, rating=EXCLUDED.rating,
				on_time_delivery=EXCLUDED.on_time_delivery, location=EXCLUDED.location,
				positive_comments=EXCLUDED.positive_comments,
				negative_comments=EXCLUDED.negative_comments,
				position=EXCLUDED.position, updated_at=EXCLUDED.updated_at`,
			r.ID, r.Name, r.Country, r.ContactPerson, r.Email, r.Phone,
			r.Rating, r.OnTimeDelivery, r.Location, r.PositiveComments,
			r.NegativeComments, i, r.CreatedAt, r.UpdatedAt)
		if err != nil {
			return fmt.Errorf("upsert supplier %s: %w", r.ID, err)
		}
	}
	return s.prune(ctx, "suppliers", ids)
}

func (s *Store) pushPurchaseOrders(ctx context.Context, snapshot domain.Snapshot) error {
	ids := make([]string, 0, len(snapshot.PurchaseOrders))
	for i, po := range snapshot.PurchaseOrders {
		r := purchaseOrderToRow(po)
		ids = append(ids, r.ID)
		_, err := s.ex.ExecContext(ctx, `
			INSERT INTO purchase_orders (id, po_number, project_id, supplier_id, status, deadline, issued_date, progress, amount, description, position, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			ON CONFLICT (id) DO UPDATE SET
				po_number=EXCLUDED.po_number, project_id=EXCLUDED.project_id,
				supplier_id=EXCLUDED.supplier_id, status=EXCLUDED.status,
				deadline=EXCLUDED.deadline, issued_date=EXCLUDED.issued_date,
				progress=EXCLUDED.progress, amount=EXCLUDED.amount,
				description=EXCLUDED.description, position=EXCLUDED.position,
				updated_at=EXCLUDED.updated_at`,
			r.ID, r.PONumber, r.ProjectID, r.SupplierID, r.Status, r.Deadline,
			r.IssuedDate, r.Progress, r.Amount, r.Description, i, r.CreatedAt, r.UpdatedAt)
		if err != nil {
			return fmt.Errorf("upsert purchase order %s: %w", r.ID, err)
		}
	}
	return s.prune(ctx, "purchase_orders", ids)
}

// pushParts flattens every order's parts into one table keyed by po_id.
func (s *Store) pushParts(ctx context.Context, snapshot domain.Snapshot) error {
	var ids []string
	pos := 0
	for _, po := range snapshot.PurchaseOrders {
		for _, part := range po.Parts {
			r := partToRow(po.ID, part)
			ids = append(ids, r.ID)
			_, err := s.ex.ExecContext(ctx, `
				INSERT INTO parts (id, po_id, name, quantity, status, progress, position)
				VALUES ($1,$2,$3,$4,$5,$6,$7)
				ON CONFLICT (id) DO UPDATE SET
					po_id=EXCLUDED.po_id, name=EXCLUDED.name,
					quantity=EXCLUDED.quantity, status=EXCLUDED.status,
					progress=EXCLUDED.progress, position=EXCLUDED.position`,
				r.ID, r.POID, r.Name, r.Quantity, r.Status, r.Progress, pos)
			if err != nil {
				return fmt.Errorf("upsert part %s: %w", r.ID, err)
			}
			pos++
		}
	}
	return s.prune(ctx, "parts", ids)
}

func (s *Store) pushExternalLinks(ctx context.Context, snapshot domain.Snapshot) error {
	ids := make([]string, 0, len(snapshot.ExternalLinks))
	for i, l := range snapshot.ExternalLinks {
		r := externalLinkToRow(l)
		ids = append(ids, r.ID)
		_, err := s.ex.ExecContext(ctx, `
			INSERT INTO external_links (id, type, project_id, supplier_id, po_id, title, url, date, position, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			ON CONFLICT (id) DO UPDATE SET
				type=EXCLUDED.type, project_id=EXCLUDED.project_id,
				supplier_id=EXCLUDED.supplier_id, po_id=EXCLUDED.po_id,
				title=EXCLUDED.title, url=EXCLUDED.url, date=EXCLUDED.date,
				position=EXCLUDED.position, updated_at=EXCLUDED.updated_at`,
			r.ID, r.Type, r.ProjectID, r.SupplierID, r.POID, r.Title, r.URL,
			r.Date, i, r.CreatedAt, r.UpdatedAt)
		if err != nil {
			return fmt.Errorf("upsert external link %s: %w", r.ID, err)
		}
	}
	return s.prune(ctx, "external_links", ids)
}

func (s *Store) pushShipments(ctx context.Context, snapshot domain.Snapshot) error {
	ids := make([]string, 0, len(snapshot.Shipments))
	for i, sh := range snapshot.Shipments {
		r := shipmentToRow(sh)
		ids = append(ids, r.ID)
		_, err := s.ex.ExecContext(ctx, `
			INSERT INTO shipments (id, project_id, supplier_id, po_id, part_id, type, shipped_date, etd_date, eta_date, container_number, container_size, container_type, lock_number, tracking_number, status, notes, position, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
			ON CONFLICT (id) DO UPDATE SET
				project_id=EXCLUDED.project_id, supplier_id=EXCLUDED.supplier_id,
				po_id=EXCLUDED.po_id, part_id=EXCLUDED.part_id,
				type=EXCLUDED.type, shipped_date=EXCLUDED.shipped_date,
				etd_date=EXCLUDED.etd_date, eta_date=EXCLUDED.eta_date,
				container_number=EXCLUDED.container_number,
				container_size=EXCLUDED.container_size,
				container_type=EXCLUDED.container_type,
				lock_number=EXCLUDED.lock_number,
				tracking_number=EXCLUDED.tracking_number,
				status=EXCLUDED.status, notes=EXCLUDED.notes,
				position=EXCLUDED.position, updated_at=EXCLUDED.updated_at`,
			r.ID, r.ProjectID, r.SupplierID, r.POID, r.PartID, r.Type,
			r.ShippedDate, r.ETDDate, r.ETADate, r.ContainerNumber,
			r.ContainerSize, r.ContainerType, r.LockNumber, r.TrackingNumber,
			r.Status, r.Notes, i, r.CreatedAt, r.UpdatedAt)
		if err != nil {
			return fmt.Errorf("upsert shipment %s: %w", r.ID, err)
		}
	}
	return s.prune(ctx, "shipments", ids)
}

// prune deletes rows the snapshot no longer contains. An empty keep set
// empties the table; FK actions clean up any dependents.
func (s *Store) prune(ctx context.Context, table string, keep []string) error {
	if keep == nil {
		keep = []string{}
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id <> ALL($1)`, table)
	if _, err := s.ex.ExecContext(ctx, query, keep); err != nil {
		return fmt.Errorf("prune %s: %w", table, err)
	}
	return nil
}

// PullAll loads every table in stored position order, reattaches parts to
// their owning purchase orders and returns the composed snapshot. A missing
// shipments table yields an empty collection rather than a failed pull.
func (s *Store) PullAll(ctx context.Context) (domain.Snapshot, domain.SyncResult) {
	var snapshot domain.Snapshot

	clients, err := s.pullClients(ctx)
	if err != nil {
		return domain.Snapshot{}, domain.Failed("clients", err)
	}
	snapshot.Clients = clients

	projects, err := s.pullProjects(ctx)
	if err != nil {
		return domain.Snapshot{}, domain.Failed("projects", err)
	}
	snapshot.Projects = projects

	suppliers, err := s.pullSuppliers(ctx)
	if err != nil {
		return domain.Snapshot{}, domain.Failed("suppliers", err)
	}
	snapshot.Suppliers = suppliers

	orders, err := s.pullPurchaseOrders(ctx)
	if err != nil {
		return domain.Snapshot{}, domain.Failed("purchase_orders", err)
	}
	parts, err := s.pullParts(ctx)
	if err != nil {
		return domain.Snapshot{}, domain.Failed("parts", err)
	}
	attachParts(orders, parts)
	snapshot.PurchaseOrders = orders

	links, err := s.pullExternalLinks(ctx)
	if err != nil {
		return domain.Snapshot{}, domain.Failed("external_links", err)
	}
	snapshot.ExternalLinks = links

	shipments, err := s.pullShipments(ctx)
	if err != nil {
		if isUndefinedTable(err) {
			shipments = nil
		} else {
			return domain.Snapshot{}, domain.Failed("shipments", err)
		}
	}
	snapshot.Shipments = shipments

	snapshot.Normalize()
	return snapshot, domain.OK("pull complete")
}

// attachParts reassembles the nested shape, matching each part to its owning
// order by po_id. Parts whose order vanished between reads are dropped.
func attachParts(orders []domain.PurchaseOrder, parts []partRow) {
	index := make(map[string]int, len(orders))
	for i, po := range orders {
		index[po.ID] = i
	}
	for _, r := range parts {
		i, ok := index[r.POID]
		if !ok {
			continue
		}
		orders[i].Parts = append(orders[i].Parts, rowToPart(r))
	}
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}

func (s *Store) pullClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := s.ex.QueryContext(ctx, `
		SELECT id, name, contact_person, email, phone, location, created_at, updated_at
		FROM clients ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Client
	for rows.Next() {
		var r clientRow
		if err := rows.Scan(&r.ID, &r.Name, &r.ContactPerson, &r.Email, &r.Phone, &r.Location, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rowToClient(r))
	}
	return out, rows.Err()
}

func (s *Store) pullProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := s.ex.QueryContext(ctx, `
		SELECT id, name, client_id, location, status, progress, start_date, end_date, project_manager, description, created_at, updated_at
		FROM projects ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Project
	for rows.Next() {
		var r projectRow
		if err := rows.Scan(&r.ID, &r.Name, &r.ClientID, &r.Location, &r.Status, &r.Progress, &r.StartDate, &r.EndDate, &r.ProjectManager, &r.Description, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rowToProject(r))
	}
	return out, rows.Err()
}

func (s *Store) pullSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	rows, err := s.ex.QueryContext(ctx, `
		SELECT id, name, country, contact_person, email, phone, rating, on_time_delivery, location, positive_comments, negative_comments, created_at, updated_at
		FROM suppliers ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Supplier
	for rows.Next() {
		var r supplierRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Country, &r.ContactPerson, &r.Email, &r.Phone, &r.Rating, &r.OnTimeDelivery, &r.Location, &r.PositiveComments, &r.NegativeComments, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		sup, err := rowToSupplier(r)
		if err != nil {
			return nil, fmt.Errorf("decode supplier %s: %w", r.ID, err)
		}
		out = append(out, sup)
	}
	return out, rows.Err()
}

func (s *Store) pullPurchaseOrders(ctx context.Context) ([]domain.PurchaseOrder, error) {
	rows, err := s.ex.QueryContext(ctx, `
		SELECT id, po_number, project_id, supplier_id, status, deadline, issued_date, progress, amount, description, created_at, updated_at
		FROM purchase_orders ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.PurchaseOrder
	for rows.Next() {
		var r purchaseOrderRow
		if err := rows.Scan(&r.ID, &r.PONumber, &r.ProjectID, &r.SupplierID, &r.Status, &r.Deadline, &r.IssuedDate, &r.Progress, &r.Amount, &r.Description, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rowToPurchaseOrder(r))
	}
	return out, rows.Err()
}

func (s *Store) pullParts(ctx context.Context) ([]partRow, error) {
	rows, err := s.ex.QueryContext(ctx, `
		SELECT id, po_id, name, quantity, status, progress
		FROM parts ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []partRow
	for rows.Next() {
		var r partRow
		if err := rows.Scan(&r.ID, &r.POID, &r.Name, &r.Quantity, &r.Status, &r.Progress); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) pullExternalLinks(ctx context.Context) ([]domain.ExternalLink, error) {
	rows, err := s.ex.QueryContext(ctx, `
		SELECT id, type, project_id, supplier_id, po_id, title, url, date, created_at, updated_at
		FROM external_links ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.ExternalLink
	for rows.Next() {
		var r externalLinkRow
		if err := rows.Scan(&r.ID, &r.Type, &r.ProjectID, &r.SupplierID, &r.POID, &r.Title, &r.URL, &r.Date, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rowToExternalLink(r))
	}
	return out, rows.Err()
}

func (s *Store) pullShipments(ctx context.Context) ([]domain.Shipment, error) {
	rows, err := s.ex.QueryContext(ctx, `
		SELECT id, project_id, supplier_id, po_id, part_id, type, shipped_date, etd_date, eta_date, container_number, container_size, container_type, lock_number, tracking_number, status, notes, created_at, updated_at
		FROM shipments ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Shipment
	for rows.Next() {
		var r shipmentRow
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.SupplierID, &r.POID, &r.PartID, &r.Type, &r.ShippedDate, &r.ETDDate, &r.ETADate, &r.ContainerNumber, &r.ContainerSize, &r.ContainerType, &r.LockNumber, &r.TrackingNumber, &r.Status, &r.Notes, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rowToShipment(r))
	}
	return out, rows.Err()
}
