package etl_test

import (
	"context"
	"errors"
	"testing"

	"reelmerge/internal/etl"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = etl.WithRunID(ctx, "run-42")
	ctx = etl.WithStage(ctx, "normalize")
	ctx = etl.WithProvider(ctx, "provider1")

	if id, ok := etl.RunIDFromContext(ctx); !ok || id != "run-42" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if stage, ok := etl.StageFromContext(ctx); !ok || stage != "normalize" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if provider, ok := etl.ProviderFromContext(ctx); !ok || provider != "provider1" {
		t.Fatalf("unexpected provider: %v %v", provider, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := etl.WithStage(context.Background(), "")
	if _, ok := etl.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}

func TestWrapTagsSentinel(t *testing.T) {
	err := etl.Wrap(etl.ErrValidation, "extract", "read csv", "header mismatch", errors.New("boom"))
	if !errors.Is(err, etl.ErrValidation) {
		t.Fatalf("expected validation sentinel, got %v", err)
	}
	want := "validation error: extract: read csv: header mismatch: boom"
	if err.Error() != want {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestWrapDefaultsToIO(t *testing.T) {
	err := etl.Wrap(nil, "load", "write artifact", "", nil)
	if !errors.Is(err, etl.ErrIO) {
		t.Fatalf("expected io sentinel, got %v", err)
	}
}
