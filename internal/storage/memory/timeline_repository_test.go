package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/fos/internal/domain"
	"github.com/vladislavdragonenkov/fos/internal/storage/memory"
)

func TestTimelineRepository_OrdersByTime(t *testing.T) {
	repo := memory.NewTimelineRepository()
	base := time.Now().UTC()

	events := []domain.TimelineEvent{
		{OrderID: "o1", Type: domain.TimelineStatusChanged, Occurred: base.Add(2 * time.Second)},
		{OrderID: "o1", Type: domain.TimelineOrderPlaced, Occurred: base},
		{OrderID: "o1", Type: domain.TimelineOrderCancelled, Occurred: base.Add(2 * time.Second)},
	}
	for _, ev := range events {
		if err := repo.Append(context.Background(), ev); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	got, err := repo.List(context.Background(), "o1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	want := []string{domain.TimelineOrderPlaced, domain.TimelineStatusChanged, domain.TimelineOrderCancelled}
	for i, ev := range got {
		if ev.Type != want[i] {
			t.Fatalf("event %d: expected %s, got %s", i, want[i], ev.Type)
		}
	}
}
