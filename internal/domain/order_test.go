package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/fos/internal/domain"
)

// helper для создания базового заказа с одной позицией.
func makeOrder() domain.Order {
	now := time.Now().UTC()
	item := domain.NewOrderItem("item-1", "prod-1", "vendor-1", "Nasi Lemak", 5, decimal.RequireFromString("12.50"), now)
	return domain.Order{
		ID:            "order-1",
		CustomerID:    "customer-1",
		VendorID:      "vendor-1",
		Status:        domain.OrderStatusPending,
		Currency:      domain.DefaultCurrency,
		TotalPrice:    decimal.RequireFromString("62.50"),
		Items:         []domain.OrderItem{item},
		PaymentMethod: domain.PaymentMethodPayPal,
		CaptureID:     "CAP-1",
		Version:       0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestOrderValidateInvariants_Ok(t *testing.T) {
	order := makeOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestOrderValidateInvariants_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(o *domain.Order)
	}{
		{
			name: "no customer",
			mut: func(o *domain.Order) {
				o.CustomerID = ""
			},
		},
		{
			name: "negative amount",
			mut: func(o *domain.Order) {
				o.TotalPrice = decimal.NewFromInt(-1)
			},
		},
		{
			name: "no items",
			mut: func(o *domain.Order) {
				o.Items = nil
			},
		},
		{
			name: "qty invalid",
			mut: func(o *domain.Order) {
				o.Items[0].Qty = 0
			},
		},
		{
			name: "price invalid",
			mut: func(o *domain.Order) {
				o.Items[0].UnitPrice = decimal.NewFromInt(-5)
			},
		},
		{
			name: "subtotal mismatch",
			mut: func(o *domain.Order) {
				o.Items[0].Subtotal = decimal.NewFromInt(1)
			},
		},
		{
			name: "amount mismatch",
			mut: func(o *domain.Order) {
				o.TotalPrice = decimal.NewFromInt(999)
			},
		},
		{
			name: "unknown payment method",
			mut: func(o *domain.Order) {
				o.PaymentMethod = "bitcoin"
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := makeOrder()
			// Копируем позиции, чтобы мутации не протекали между кейсами.
			order.Items = append([]domain.OrderItem(nil), order.Items...)
			tc.mut(&order)

			if len(order.ValidateInvariants()) == 0 {
				t.Fatalf("expected validation errors for case %s", tc.name)
			}
		})
	}
}

func TestItemsSubtotal(t *testing.T) {
	now := time.Now()
	items := []domain.OrderItem{
		domain.NewOrderItem("a", "p1", "v1", "Teh Tarik", 2, decimal.RequireFromString("3.20"), now),
		domain.NewOrderItem("b", "p2", "v1", "Roti Canai", 3, decimal.RequireFromString("1.50"), now),
	}
	got := domain.ItemsSubtotal(items)
	if !got.Equal(decimal.RequireFromString("10.90")) {
		t.Fatalf("expected 10.90, got %s", got)
	}
}

func TestOrderFilterMatch(t *testing.T) {
	order := makeOrder()
	base := order.CreatedAt

	cases := []struct {
		name   string
		filter domain.OrderFilter
		want   bool
	}{
		{name: "empty filter", filter: domain.OrderFilter{}, want: true},
		{name: "customer mismatch", filter: domain.OrderFilter{CustomerID: "other"}, want: false},
		{name: "vendor via item", filter: domain.OrderFilter{VendorID: "vendor-1"}, want: true},
		{name: "status excluded", filter: domain.OrderFilter{Statuses: []domain.OrderStatus{domain.OrderStatusCompleted}}, want: false},
		{name: "inside range", filter: domain.OrderFilter{CreatedFrom: base, CreatedTo: base.Add(time.Minute)}, want: true},
		{name: "upper bound exclusive", filter: domain.OrderFilter{CreatedTo: base}, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.filter.Match(order); got != tc.want {
				t.Fatalf("Match() = %v, want %v", got, tc.want)
			}
		})
	}
}
