package logging

import (
	"context"
	"testing"
)

func TestGetLoggerCachesPerContext(t *testing.T) {
	base := New(INFO, "test")
	ctx := WithCorrelationID(context.Background(), "clord-1")

	scoped, ctx2 := base.GetLogger(ctx)
	if scoped == nil {
		t.Fatal("expected a scoped logger")
	}

	again, ctx3 := scoped.GetLogger(ctx2)
	if again != scoped {
		t.Errorf("expected GetLogger to return the cached logger from ctx, got a new one")
	}
	if ctx3 != ctx2 {
		t.Errorf("expected ctx to be unchanged once a logger is already cached")
	}
}

func TestCorrelationIDDefaultsWhenAbsent(t *testing.T) {
	if got := correlationID(context.Background()); got != "no-correlation-id" {
		t.Errorf("expected default correlation id, got %q", got)
	}
	ctx := WithCorrelationID(context.Background(), "abc-123")
	if got := correlationID(ctx); got != "abc-123" {
		t.Errorf("expected correlation id %q, got %q", "abc-123", got)
	}
}
