package inventory

import (
	"context"
	"errors"
	"testing"
)

func TestMockAdjuster(t *testing.T) {
	mock := NewMockAdjuster()
	ctx := context.Background()

	if err := mock.AdjustStock(ctx, "p-1", 2); err != nil {
		t.Fatalf("unexpected adjust error: %v", err)
	}

	mock.Errs["p-2"] = errors.New("warehouse offline")
	if err := mock.AdjustStock(ctx, "p-2", 1); err == nil {
		t.Fatal("expected adjust error for p-2")
	}

	calls := mock.Adjustments()
	if len(calls) != 2 || calls[0].ProductID != "p-1" || calls[0].Delta != 2 {
		t.Fatalf("unexpected recorded calls: %+v", calls)
	}
}
