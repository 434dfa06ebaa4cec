package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesCauseAndCode(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("disk full")
	err := Wrap(CodePersistence, cause, "save cart blob")

	if err.Code() != CodePersistence {
		t.Fatalf("unexpected code %s", err.Code())
	}
	if err.Unwrap() != cause {
		t.Fatal("expected cause to be preserved")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if typed := As(wrapped); typed == nil || typed.Code() != CodePersistence {
		t.Fatalf("As should unwrap typed error, got %v", typed)
	}
}

func TestHasCode(t *testing.T) {
	t.Parallel()

	err := New(CodeInsufficientStock, "only 3 left")
	if !HasCode(err, CodeInsufficientStock) {
		t.Fatal("expected HasCode to match")
	}
	if HasCode(err, CodeOutOfStock) {
		t.Fatal("expected HasCode mismatch for other code")
	}
	if HasCode(fmt.Errorf("plain"), CodeOutOfStock) {
		t.Fatal("plain errors should not match any code")
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(Code("SOMETHING_ELSE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestDumpChain(t *testing.T) {
	t.Parallel()

	err := Wrap(CodeSync, fmt.Errorf("connection refused"), "push cart")
	d := Dump(fmt.Errorf("wrapped: %w", err))
	if d.Code != CodeSync {
		t.Fatalf("unexpected dump code %s", d.Code)
	}
	if len(d.Chain) < 2 {
		t.Fatalf("expected chain of at least 2, got %d", len(d.Chain))
	}
}
