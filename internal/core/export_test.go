package core

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"fabtrack/internal/blob"
	"fabtrack/pkg/domain"
)

func TestExportSnapshot(t *testing.T) {
	store := blob.NewMemory()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(WithArchiveStore(store), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	if _, err := svc.AddClient(ctx, Client{Name: "Acme"}); err != nil {
		t.Fatal(err)
	}
	info, err := svc.ExportSnapshot(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if info.Key != "snapshots/20260801T120000Z.json.gz" {
		t.Fatalf("key = %q", info.Key)
	}
	if info.Metadata["version"] != "1" {
		t.Fatalf("version metadata = %q, want 1", info.Metadata["version"])
	}

	_, rc, err := store.Open(ctx, info.Key)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer rc.Close()
	gz, err := gzip.NewReader(rc)
	if err != nil {
		t.Fatalf("gzip: %v", err)
	}
	var snap domain.Snapshot
	if err := json.NewDecoder(gz).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(snap.Clients) != 1 || snap.Clients[0].Name != "Acme" {
		t.Fatalf("archived snapshot wrong: %+v", snap.Clients)
	}
}

func TestExportWithoutArchiveStore(t *testing.T) {
	svc := NewService()
	if _, err := svc.ExportSnapshot(context.Background()); !errors.Is(err, ErrNoArchiveStore) {
		t.Fatalf("err = %v, want ErrNoArchiveStore", err)
	}
}

func TestListSnapshotArchives(t *testing.T) {
	store := blob.NewMemory()
	svc := NewService(WithArchiveStore(store))
	ctx := context.Background()

	if _, err := svc.ExportSnapshot(ctx); err != nil {
		t.Fatal(err)
	}
	infos, err := svc.ListSnapshotArchives(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("archives = %d, want 1", len(infos))
	}
}
