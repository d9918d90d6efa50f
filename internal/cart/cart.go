// Package cart хранит корзины покупателей до checkout. Корзина привязана к паре
// (покупатель, продавец): один заказ всегда оформляется у одного продавца.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/fos/internal/domain"
)

var (
	ErrInvalidLine  = errors.New("cart line is invalid")
	ErrLineNotFound = errors.New("cart line not found")
	ErrEmptyCart    = errors.New("cart is empty")
	ErrInvalidKey   = errors.New("cart key requires user and vendor")
)

// Key идентифицирует корзину.
type Key struct {
	UserID   string
	VendorID string
}

func (k Key) validate() error {
	if strings.TrimSpace(k.UserID) == "" || strings.TrimSpace(k.VendorID) == "" {
		return ErrInvalidKey
	}
	return nil
}

// Line — позиция корзины.
type Line struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Qty       int32           `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (l Line) validate() error {
	switch {
	case l.ProductID == "":
		return fmt.Errorf("%w: product_id is required", ErrInvalidLine)
	case l.Qty <= 0:
		return fmt.Errorf("%w: qty must be positive", ErrInvalidLine)
	case l.UnitPrice.IsNegative():
		return fmt.Errorf("%w: unit price must be non-negative", ErrInvalidLine)
	}
	return nil
}

// Cart — содержимое корзины, позиции отсортированы по ProductID.
type Cart struct {
	Key   Key
	Lines []Line
}

// Subtotal возвращает Σ UnitPrice × Qty.
func (c Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Lines {
		sum = sum.Add(domain.LineSubtotal(l.UnitPrice, l.Qty))
	}
	return sum
}

// Store — хранилище корзин.
type Store interface {
	// Add добавляет позицию; qty существующей позиции увеличивается, цена обновляется.
	Add(ctx context.Context, key Key, line Line) (Cart, error)
	// SetQty задаёт количество; qty <= 0 удаляет позицию.
	SetQty(ctx context.Context, key Key, productID string, qty int32) (Cart, error)
	Remove(ctx context.Context, key Key, productID string) (Cart, error)
	Get(ctx context.Context, key Key) (Cart, error)
	Clear(ctx context.Context, key Key) error
}

func sortLines(lines []Line) {
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
}

// OrderPlacer оформляет заказ (реализуется ordering.Service).
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, order domain.Order) (domain.Order, error)
}

// CheckoutInput — данные оплаты и доставки для оформления корзины.
type CheckoutInput struct {
	PaymentMethod   domain.PaymentMethod
	CaptureID       string
	Currency        string
	ShippingAddress domain.Address
	// OrderID задаёт идентификатор заказа вызывающей стороной; повторный checkout с тем же ID отклоняется.
	OrderID string
}

// Checkout превращает корзину в pending-заказ и очищает её.
// Если заказ создан, а корзину очистить не удалось, возвращаются и заказ, и ошибка.
func Checkout(ctx context.Context, store Store, placer OrderPlacer, key Key, in CheckoutInput) (domain.Order, error) {
	c, err := store.Get(ctx, key)
	if err != nil {
		return domain.Order{}, err
	}
	if len(c.Lines) == 0 {
		return domain.Order{}, ErrEmptyCart
	}

	now := time.Now().UTC()
	items := make([]domain.OrderItem, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, domain.NewOrderItem("", l.ProductID, key.VendorID, l.Name, l.Qty, l.UnitPrice, now))
	}

	order, err := placer.PlaceOrder(ctx, domain.Order{
		ID:              in.OrderID,
		CustomerID:      key.UserID,
		VendorID:        key.VendorID,
		Currency:        in.Currency,
		Items:           items,
		TotalPrice:      c.Subtotal(),
		PaymentMethod:   in.PaymentMethod,
		CaptureID:       in.CaptureID,
		ShippingAddress: in.ShippingAddress,
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("checkout: %w", err)
	}
	if err := store.Clear(ctx, key); err != nil {
		return order, fmt.Errorf("order %s placed but cart was not cleared: %w", order.ID, err)
	}
	return order, nil
}
