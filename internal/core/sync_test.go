package core

import (
	"context"
	"errors"
	"testing"
)

func TestSyncToRemotePushesCurrentState(t *testing.T) {
	remote := &fakeRemote{}
	svc := NewService(WithRemoteStore(remote))
	ctx := context.Background()

	if _, err := svc.AddClient(ctx, Client{Name: "Acme"}); err != nil {
		t.Fatal(err)
	}
	res := svc.SyncToRemote(ctx)
	if !res.Success {
		t.Fatalf("push failed: %+v", res)
	}
	if len(remote.stored.Clients) != 1 {
		t.Fatalf("remote received %d clients, want 1", len(remote.stored.Clients))
	}
	if !svc.Synced() {
		t.Fatal("state not marked synced after successful push")
	}
}

func TestSyncWithoutRemoteFails(t *testing.T) {
	svc := NewService()
	res := svc.SyncToRemote(context.Background())
	if res.Success {
		t.Fatal("expected failure without a remote store")
	}
	if !errors.Is(res.Err, ErrNoRemote) {
		t.Fatalf("err = %v, want ErrNoRemote", res.Err)
	}
}

func TestFailedPushLeavesLocalStateIntact(t *testing.T) {
	remote := &fakeRemote{pushErr: errors.New("constraint violation")}
	svc := NewService(WithRemoteStore(remote))
	ctx := context.Background()

	created, err := svc.AddClient(ctx, Client{Name: "Acme"})
	if err != nil {
		t.Fatal(err)
	}
	res := svc.SyncToRemote(ctx)
	if res.Success {
		t.Fatal("expected push failure")
	}
	if res.Step != "clients" {
		t.Fatalf("failed step = %q, want clients", res.Step)
	}
	// Local-first durability: the failed push never rolls back local edits.
	if _, ok := clientByID(svc.ListClients(), created.ID); !ok {
		t.Fatal("local state lost after failed push")
	}
	if svc.Synced() {
		t.Fatal("failed push must not mark state synced")
	}
}

func TestStalePushConfirmationDiscarded(t *testing.T) {
	remote := &fakeRemote{}
	svc := NewService(WithRemoteStore(remote))
	ctx := context.Background()

	if _, err := svc.AddClient(ctx, Client{Name: "Acme"}); err != nil {
		t.Fatal(err)
	}

	// A local edit lands while the push is in flight. The push completes
	// successfully but its confirmation refers to a superseded version.
	remote.onPush = func() {
		remote.onPush = nil
		if _, err := svc.AddClient(ctx, Client{Name: "Raced In"}); err != nil {
			t.Errorf("concurrent edit: %v", err)
		}
	}
	res := svc.SyncToRemote(ctx)
	if !res.Success {
		t.Fatalf("push failed: %+v", res)
	}
	if svc.Synced() {
		t.Fatal("stale confirmation must not mark the newer version synced")
	}

	// The next cycle picks the edit up and settles.
	res = svc.SyncToRemote(ctx)
	if !res.Success {
		t.Fatalf("second push failed: %+v", res)
	}
	if !svc.Synced() {
		t.Fatal("expected synced after a clean push")
	}
	if len(remote.stored.Clients) != 2 {
		t.Fatalf("remote has %d clients, want 2", len(remote.stored.Clients))
	}
}

func TestPushReadsCommittedStateNotCapturedSnapshot(t *testing.T) {
	remote := &fakeRemote{}
	svc := NewService(WithRemoteStore(remote))
	ctx := context.Background()

	if _, err := svc.AddClient(ctx, Client{Name: "First"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddClient(ctx, Client{Name: "Second"}); err != nil {
		t.Fatal(err)
	}
	res := svc.SyncToRemote(ctx)
	if !res.Success {
		t.Fatalf("push failed: %+v", res)
	}
	if len(remote.stored.Clients) != 2 {
		t.Fatalf("push sent %d clients, want the full committed state of 2", len(remote.stored.Clients))
	}
}

func TestLoadFromRemote(t *testing.T) {
	remote := &fakeRemote{stored: remoteSnapshot(), hasState: true}
	local := &fakeLocal{}
	svc := NewService(WithRemoteStore(remote), WithLocalStore(local))
	ctx := context.Background()

	if _, err := svc.AddClient(ctx, Client{Name: "Stale Local"}); err != nil {
		t.Fatal(err)
	}
	res := svc.LoadFromRemote(ctx)
	if !res.Success {
		t.Fatalf("pull failed: %+v", res)
	}
	snap := svc.Snapshot()
	if len(snap.Clients) != 1 || snap.Clients[0].ID != "remote-client" {
		t.Fatalf("state not replaced by pull: %+v", snap.Clients)
	}
	if !svc.Synced() {
		t.Fatal("freshly pulled state should be synced")
	}
	if !local.found {
		t.Fatal("pulled state not mirrored locally")
	}
}

func TestLoadFromRemoteFailureKeepsState(t *testing.T) {
	remote := &fakeRemote{pullErr: errors.New("timeout")}
	svc := NewService(WithRemoteStore(remote))
	ctx := context.Background()

	created, err := svc.AddClient(ctx, Client{Name: "Keep Me"})
	if err != nil {
		t.Fatal(err)
	}
	res := svc.LoadFromRemote(ctx)
	if res.Success {
		t.Fatal("expected pull failure")
	}
	if _, ok := clientByID(svc.ListClients(), created.ID); !ok {
		t.Fatal("state replaced despite failed pull")
	}
}
