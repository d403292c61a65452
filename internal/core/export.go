package core

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fabtrack/internal/blob"
)

// ErrNoArchiveStore is reported when an export runs without a configured
// blob store.
var ErrNoArchiveStore = errors.New("no archive store configured")

// archiveStore keeps the service struct decoupled from the blob package name.
type archiveStore = blob.Store

// WithArchiveStore attaches the blob store used for snapshot exports.
func WithArchiveStore(store blob.Store) Option {
	return func(s *Service) { s.archive = store }
}

// ExportSnapshot writes the current snapshot as a gzipped JSON archive to the
// configured blob store and returns the stored object's info. Archives are
// keyed snapshots/<timestamp>.json.gz and tagged with the version they
// captured.
func (s *Service) ExportSnapshot(ctx context.Context) (blob.Info, error) {
	if s.archive == nil {
		return blob.Info{}, ErrNoArchiveStore
	}
	start := time.Now()
	snapshot := s.store.Snapshot()
	version := s.Version()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(snapshot); err != nil {
		s.observe(ctx, "export_snapshot", false, start)
		return blob.Info{}, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := gz.Close(); err != nil {
		s.observe(ctx, "export_snapshot", false, start)
		return blob.Info{}, fmt.Errorf("compress snapshot: %w", err)
	}

	key := fmt.Sprintf("snapshots/%s.json.gz", s.nowFn().Format("20060102T150405Z"))
	info, err := s.archive.Put(ctx, key, &buf, blob.PutOptions{
		ContentType: "application/gzip",
		Metadata:    map[string]string{"version": fmt.Sprintf("%d", version)},
	})
	s.observe(ctx, "export_snapshot", err == nil, start)
	if err != nil {
		s.logger.Error("snapshot export failed", "key", key, "error", err)
		return blob.Info{}, err
	}
	s.logger.Info("snapshot exported", "key", key, "bytes", info.Size)
	return info, nil
}

// ListSnapshotArchives returns infos for all exported snapshot archives.
func (s *Service) ListSnapshotArchives(ctx context.Context) ([]blob.Info, error) {
	if s.archive == nil {
		return nil, ErrNoArchiveStore
	}
	return s.archive.List(ctx, "snapshots/")
}
