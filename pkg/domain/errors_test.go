package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorPredicates(t *testing.T) {
	nf := NotFoundError{Entity: EntityProject, ID: "p1"}
	ve := ValidationError{Entity: EntityClient, Field: "name", Reason: "required"}

	if !IsNotFound(nf) || IsNotFound(ve) {
		t.Fatal("IsNotFound misclassified")
	}
	if !IsValidation(ve) || IsValidation(nf) {
		t.Fatal("IsValidation misclassified")
	}
	// Predicates see through wrapping.
	wrapped := fmt.Errorf("apply mutation: %w", nf)
	if !IsNotFound(wrapped) {
		t.Fatal("wrapped NotFoundError not detected")
	}
}

func TestCorruptSnapshotSentinelWraps(t *testing.T) {
	err := fmt.Errorf("%w: unexpected end of input", ErrCorruptSnapshot)
	if !errors.Is(err, ErrCorruptSnapshot) {
		t.Fatal("wrapped sentinel not detected")
	}
}

func TestSyncResultConstructors(t *testing.T) {
	ok := OK("push complete")
	if !ok.Success || ok.Message != "push complete" || ok.Step != "" {
		t.Fatalf("OK result malformed: %+v", ok)
	}
	cause := errors.New("connection refused")
	failed := Failed("clients", cause)
	if failed.Success {
		t.Fatal("failed result reports success")
	}
	if failed.Step != "clients" {
		t.Fatalf("step = %q", failed.Step)
	}
	if !errors.Is(failed.Err, cause) {
		t.Fatal("cause not retained")
	}
}
