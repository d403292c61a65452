package remote

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"fabtrack/pkg/domain"
)

type executedStatement struct {
	query string
	args  []any
}

// recordingExecutor captures statements instead of talking to a database.
// Queries are failed outright so pull paths can test error attribution.
type recordingExecutor struct {
	statements []executedStatement
	failTable  string
	failErr    error
	queryErr   error
}

type noopResult struct{}

func (noopResult) LastInsertId() (int64, error) { return 0, nil }
func (noopResult) RowsAffected() (int64, error) { return 1, nil }

func (r *recordingExecutor) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	if r.failTable != "" && strings.Contains(query, r.failTable) {
		return nil, r.failErr
	}
	r.statements = append(r.statements, executedStatement{query: query, args: args})
	return noopResult{}, nil
}

func (r *recordingExecutor) QueryContext(_ context.Context, query string, _ ...any) (*sql.Rows, error) {
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	return nil, errors.New("recordingExecutor does not serve rows")
}

func pushFixture() domain.Snapshot {
	clientID := "c1"
	var s domain.Snapshot
	s.Clients = []domain.Client{{Base: domain.Base{ID: clientID}, Name: "Acme"}}
	s.Projects = []domain.Project{{Base: domain.Base{ID: "p1"}, Name: "Line A", ClientID: &clientID}}
	s.Suppliers = []domain.Supplier{{Base: domain.Base{ID: "s1"}, Name: "Steelworks"}}
	s.PurchaseOrders = []domain.PurchaseOrder{{
		Base:       domain.Base{ID: "po1"},
		PONumber:   "PO-1",
		ProjectID:  "p1",
		SupplierID: "s1",
		Parts:      []domain.Part{{ID: "part1", Name: "Bracket", Quantity: 4}},
	}}
	s.ExternalLinks = []domain.ExternalLink{{Base: domain.Base{ID: "l1"}, Type: domain.LinkReport, ProjectID: "p1", Title: "Report", URL: "https://files.example/r"}}
	s.Shipments = []domain.Shipment{{
		Base: domain.Base{ID: "sh1"}, ProjectID: "p1", SupplierID: "s1", POID: "po1",
		Type: "Air Freight", TrackingNumber: "TRK-1",
	}}
	s.Normalize()
	return s
}

// statementTable extracts the target table of an INSERT or DELETE statement.
func statementTable(query string) string {
	fields := strings.Fields(query)
	for i, f := range fields {
		if (f == "INTO" || f == "FROM") && i+1 < len(fields) {
			return fields[i+1]
		}
	}
	return ""
}

func TestPushAllStrictOrder(t *testing.T) {
	ex := &recordingExecutor{}
	store := &Store{ex: ex}

	res := store.PushAll(context.Background(), pushFixture())
	if !res.Success {
		t.Fatalf("push failed: %+v", res)
	}

	var tables []string
	for _, st := range ex.statements {
		table := statementTable(st.query)
		if len(tables) == 0 || tables[len(tables)-1] != table {
			tables = append(tables, table)
		}
	}
	// Each table's upserts and prune are contiguous, parents before children.
	want := []string{"clients", "projects", "suppliers", "purchase_orders", "parts", "external_links", "shipments"}
	if len(tables) != len(want) {
		t.Fatalf("table sequence %v, want %v", tables, want)
	}
	for i := range want {
		if tables[i] != want[i] {
			t.Fatalf("table sequence %v, want %v", tables, want)
		}
	}
}

func TestPushAllAbortsOnFailedStep(t *testing.T) {
	ex := &recordingExecutor{failTable: "suppliers", failErr: errors.New("column mismatch")}
	store := &Store{ex: ex}

	res := store.PushAll(context.Background(), pushFixture())
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Step != "suppliers" {
		t.Fatalf("failed step = %q, want suppliers", res.Step)
	}
	// Earlier steps ran; later steps were skipped, not rolled back.
	seen := map[string]bool{}
	for _, st := range ex.statements {
		seen[statementTable(st.query)] = true
	}
	if !seen["clients"] || !seen["projects"] {
		t.Fatal("parent steps missing before the failure")
	}
	for _, table := range []string{"purchase_orders", "parts", "external_links", "shipments"} {
		if seen[table] {
			t.Fatalf("step %s ran after the failure", table)
		}
	}
}

func TestPushFlattensPartsWithOwnerID(t *testing.T) {
	ex := &recordingExecutor{}
	store := &Store{ex: ex}

	if res := store.PushAll(context.Background(), pushFixture()); !res.Success {
		t.Fatalf("push failed: %+v", res)
	}
	for _, st := range ex.statements {
		if strings.Contains(st.query, "INSERT INTO parts") {
			if st.args[0] != "part1" || st.args[1] != "po1" {
				t.Fatalf("part row args = %v, want id part1 owned by po1", st.args[:2])
			}
			return
		}
	}
	t.Fatal("no part upsert recorded")
}

func TestPushPrunesWithKeptIDs(t *testing.T) {
	ex := &recordingExecutor{}
	store := &Store{ex: ex}

	if res := store.PushAll(context.Background(), pushFixture()); !res.Success {
		t.Fatalf("push failed: %+v", res)
	}
	for _, st := range ex.statements {
		if strings.Contains(st.query, "DELETE FROM clients") {
			keep, ok := st.args[0].([]string)
			if !ok || len(keep) != 1 || keep[0] != "c1" {
				t.Fatalf("prune args = %v", st.args)
			}
			return
		}
	}
	t.Fatal("no prune recorded for clients")
}

func TestPushEmptySnapshotPrunesEverything(t *testing.T) {
	ex := &recordingExecutor{}
	store := &Store{ex: ex}

	var empty domain.Snapshot
	if res := store.PushAll(context.Background(), empty); !res.Success {
		t.Fatalf("push failed: %+v", res)
	}
	prunes := 0
	for _, st := range ex.statements {
		if strings.HasPrefix(strings.TrimSpace(st.query), "DELETE FROM") {
			prunes++
			keep, ok := st.args[0].([]string)
			if !ok || len(keep) != 0 {
				t.Fatalf("empty push must prune with an empty keep set, got %v", st.args)
			}
		}
	}
	if prunes != 7 {
		t.Fatalf("prunes = %d, want 7", prunes)
	}
}

func TestPullAllReportsFailedCollection(t *testing.T) {
	ex := &recordingExecutor{queryErr: errors.New("connection reset")}
	store := &Store{ex: ex}

	_, res := store.PullAll(context.Background())
	if res.Success {
		t.Fatal("expected pull failure")
	}
	if res.Step != "clients" {
		t.Fatalf("failed step = %q, want clients", res.Step)
	}
}

func TestIsUndefinedTable(t *testing.T) {
	if !isUndefinedTable(&pgconn.PgError{Code: pgUndefinedTable}) {
		t.Fatal("undefined_table not classified")
	}
	if isUndefinedTable(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("unique_violation misclassified as undefined_table")
	}
	if isUndefinedTable(errors.New("plain")) {
		t.Fatal("plain error misclassified")
	}
}

func TestAttachParts(t *testing.T) {
	orders := []domain.PurchaseOrder{
		{Base: domain.Base{ID: "po1"}, Parts: []domain.Part{}},
		{Base: domain.Base{ID: "po2"}, Parts: []domain.Part{}},
	}
	parts := []partRow{
		{ID: "a", POID: "po2", Name: "Frame", Quantity: 1},
		{ID: "b", POID: "po1", Name: "Roller", Quantity: 2},
		{ID: "c", POID: "po1", Name: "Gear", Quantity: 3},
		{ID: "d", POID: "orphan", Name: "Lost", Quantity: 1},
	}
	attachParts(orders, parts)

	if len(orders[0].Parts) != 2 || orders[0].Parts[0].ID != "b" || orders[0].Parts[1].ID != "c" {
		t.Fatalf("po1 parts = %+v", orders[0].Parts)
	}
	if len(orders[1].Parts) != 1 || orders[1].Parts[0].ID != "a" {
		t.Fatalf("po2 parts = %+v", orders[1].Parts)
	}
}
