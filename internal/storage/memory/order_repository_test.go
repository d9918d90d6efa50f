package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/fos/internal/domain"
	"github.com/vladislavdragonenkov/fos/internal/storage/memory"
)

func newOrder() domain.Order {
	now := time.Now().UTC()
	price := decimal.RequireFromString("5.50")
	return domain.Order{
		ID:            "order-1",
		CustomerID:    "customer-1",
		VendorID:      "vendor-1",
		Status:        domain.OrderStatusPending,
		Currency:      domain.DefaultCurrency,
		TotalPrice:    decimal.RequireFromString("27.50"),
		Items:         []domain.OrderItem{domain.NewOrderItem("item-1", "prod-1", "vendor-1", "Laksa", 5, price, now)},
		PaymentMethod: domain.PaymentMethodCash,
		Version:       0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestOrderRepository_CreateGet(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()
	order := newOrder()

	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.ID != order.ID {
		t.Fatalf("expected id %s, got %s", order.ID, stored.ID)
	}

	// Мутация полученной копии не должна влиять на хранилище.
	stored.Items[0].Qty = 99
	again, _ := repo.Get(ctx, order.ID)
	if again.Items[0].Qty != 5 {
		t.Fatalf("stored order was mutated through returned copy")
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_ListByCustomer(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()
	order := newOrder()
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	orders, err := repo.ListByCustomer(ctx, order.CustomerID, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
}

func TestOrderRepository_ListFilter(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	for i, status := range []domain.OrderStatus{domain.OrderStatusCompleted, domain.OrderStatusCancelled, domain.OrderStatusPending} {
		o := newOrder()
		o.ID = "order-" + string(rune('a'+i))
		o.Status = status
		o.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if err := repo.Create(ctx, o); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	all, err := repo.List(ctx, domain.OrderFilter{VendorID: "vendor-1"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 3 || all[0].ID != "order-a" || all[2].ID != "order-c" {
		t.Fatalf("unexpected list order: %+v", all)
	}

	window, err := repo.List(ctx, domain.OrderFilter{CreatedFrom: base.Add(time.Hour), CreatedTo: base.Add(2 * time.Hour)})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(window) != 1 || window[0].ID != "order-b" {
		t.Fatalf("expected only order-b in window, got %+v", window)
	}

	limited, _ := repo.List(ctx, domain.OrderFilter{Limit: 2})
	if len(limited) != 2 {
		t.Fatalf("expected limit 2, got %d", len(limited))
	}
}

func TestOrderRepository_Save(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()
	order := newOrder()
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	stored.Status = domain.OrderStatusConfirmed
	if err := repo.Save(ctx, stored); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	updated, err := repo.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if updated.Status != domain.OrderStatusConfirmed {
		t.Fatalf("expected status confirmed, got %s", updated.Status)
	}
	if updated.Version != stored.Version+1 {
		t.Fatalf("expected version increment, got %d", updated.Version)
	}
}

func TestOrderRepository_SaveVersionConflict(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()
	order := newOrder()
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	order.Version = 42
	if err := repo.Save(ctx, order); !errors.Is(err, domain.ErrOrderVersionConflict) {
		t.Fatalf("expected version conflict error, got %v", err)
	}
}
