package domain

import "context"

// LocalStore is the durable fallback mirror of the full snapshot. Save runs
// after every state change; Load runs once at startup.
type LocalStore interface {
	// Save serializes the entire snapshot as one unit, overwriting any prior
	// value. Never partial.
	Save(ctx context.Context, snapshot Snapshot) error
	// Load returns the persisted snapshot. found is false when nothing was
	// stored; a corrupt payload yields ErrCorruptSnapshot and found false.
	Load(ctx context.Context) (snapshot Snapshot, found bool, err error)
	// Clear removes the persisted blob entirely.
	Clear(ctx context.Context) error
	Close() error
}

// RemoteStore pushes the full local snapshot to a remote relational backend
// and pulls a full snapshot back. Implementations translate local camelCase
// fields to remote snake_case columns and back, one direction per operation.
type RemoteStore interface {
	// PushAll upserts every collection in parent-before-child order. On
	// failure the remaining steps are skipped and the result names the step
	// that failed; already-pushed steps are not rolled back.
	PushAll(ctx context.Context, snapshot Snapshot) SyncResult
	// PullAll loads every collection, reattaches parts to their owning
	// purchase orders and returns the composed snapshot. A missing optional
	// table yields an empty collection rather than a failure.
	PullAll(ctx context.Context) (Snapshot, SyncResult)
	Close() error
}
