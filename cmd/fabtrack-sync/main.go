// Command fabtrack-sync resolves the tracked dataset from its configured
// backends and runs one-shot sync operations against the remote store.
//
// Configuration comes from the environment (a .env file is honored):
//
//	FABTRACK_LOCAL_PATH   sqlite mirror path (default fabtrack.db)
//	FABTRACK_REMOTE_DSN   postgres DSN; empty disables the remote backend
//	FABTRACK_BLOB_DRIVER  archive store driver (fs|s3|memory), see blob.Open
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"fabtrack/internal/blob"
	"fabtrack/internal/core"
	"fabtrack/internal/infra/persistence/local"
	"fabtrack/internal/infra/persistence/remote"
)

func main() {
	push := flag.Bool("push", false, "push the resolved snapshot to the remote store")
	export := flag.Bool("export", false, "export the resolved snapshot to the blob archive")
	seed := flag.Bool("seed", false, "replace the dataset with the synthetic sample set")
	timeout := flag.Duration("timeout", 30*time.Second, "overall operation timeout")
	flag.Parse()

	if err := run(*push, *export, *seed, *timeout); err != nil {
		fmt.Fprintln(os.Stderr, "fabtrack-sync:", err)
		os.Exit(1)
	}
}

func run(push, export, seed bool, timeout time.Duration) error {
	_ = godotenv.Load()

	zl, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()
	logger := core.NewZapLogger(zl)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	localStore, err := local.New(os.Getenv("FABTRACK_LOCAL_PATH"))
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer func() { _ = localStore.Close() }()

	opts := []core.Option{
		core.WithLogger(logger),
		core.WithLocalStore(localStore),
	}

	if dsn := os.Getenv("FABTRACK_REMOTE_DSN"); dsn != "" {
		remoteStore, err := remote.Open(ctx, dsn)
		if err != nil {
			return fmt.Errorf("open remote store: %w", err)
		}
		defer func() { _ = remoteStore.Close() }()
		opts = append(opts, core.WithRemoteStore(remoteStore))
	}

	if export {
		archive, err := blob.Open(ctx)
		if err != nil {
			return fmt.Errorf("open blob store: %w", err)
		}
		opts = append(opts, core.WithArchiveStore(archive))
	}

	svc := core.NewService(opts...)

	source := svc.Resolve(ctx)
	fmt.Println("loaded from:", source)

	if seed {
		if err := svc.GenerateSampleData(ctx); err != nil {
			return fmt.Errorf("seed sample data: %w", err)
		}
	}

	snapshot := svc.Snapshot()
	for entity, n := range snapshot.Counts() {
		fmt.Printf("  %-16s %d\n", entity, n)
	}

	if push {
		result := svc.SyncToRemote(ctx)
		if !result.Success {
			return fmt.Errorf("push failed at step %s: %s", result.Step, result.Message)
		}
		fmt.Println("push:", result.Message)
	}

	if export {
		info, err := svc.ExportSnapshot(ctx)
		if err != nil {
			return fmt.Errorf("export snapshot: %w", err)
		}
		fmt.Printf("exported %s (%d bytes)\n", info.Key, info.Size)
	}

	return nil
}
