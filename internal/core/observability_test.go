package core

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestExpvarMetricsRecorder(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	ctx := context.Background()

	rec.Observe(ctx, "add_client", true, 20*time.Millisecond)
	rec.Observe(ctx, "add_client", true, 30*time.Millisecond)
	rec.Observe(ctx, "add_client", false, 5*time.Millisecond)

	snap := rec.Snapshot()
	if snap.Results["add_client"]["success"] != 2 {
		t.Fatalf("success count = %d, want 2", snap.Results["add_client"]["success"])
	}
	if snap.Results["add_client"]["error"] != 1 {
		t.Fatalf("error count = %d, want 1", snap.Results["add_client"]["error"])
	}
	if snap.DurationsMS["add_client"] != 55 {
		t.Fatalf("duration total = %v, want 55", snap.DurationsMS["add_client"])
	}
}

func TestExpvarRecorderGeneratesUniqueNames(t *testing.T) {
	a := NewExpvarMetricsRecorder("")
	b := NewExpvarMetricsRecorder("")
	if a.Name() == b.Name() {
		t.Fatalf("expected distinct generated names, both %q", a.Name())
	}
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	ctx := context.Background()

	rec.Observe(ctx, "sync_to_remote", true, 120*time.Millisecond)
	rec.Observe(ctx, "sync_to_remote", false, 80*time.Millisecond)

	if got := testutil.ToFloat64(rec.operations.WithLabelValues("sync_to_remote", "success")); got != 1 {
		t.Fatalf("success counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rec.operations.WithLabelValues("sync_to_remote", "error")); got != 1 {
		t.Fatalf("error counter = %v, want 1", got)
	}
}

func TestServiceObservesOperations(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	svc := NewService(WithMetricsRecorder(rec))
	ctx := context.Background()

	if _, err := svc.AddClient(ctx, Client{Name: "Acme"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddClient(ctx, Client{}); err == nil {
		t.Fatal("expected validation failure")
	}

	snap := rec.Snapshot()
	if snap.Results["add_client"]["success"] != 1 {
		t.Fatalf("success count = %d, want 1", snap.Results["add_client"]["success"])
	}
	if snap.Results["add_client"]["error"] != 1 {
		t.Fatalf("error count = %d, want 1", snap.Results["add_client"]["error"])
	}
}
