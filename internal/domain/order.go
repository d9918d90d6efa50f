package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency — валюта платформы (ринггит, RM).
const DefaultCurrency = "MYR"

// PaymentMethod описывает способ оплаты, выбранный при checkout.
type PaymentMethod string

const (
	// PaymentMethodPayPal — оплата через PayPal; при отмене нужен capture id для возврата.
	PaymentMethodPayPal PaymentMethod = "paypal"
	// PaymentMethodCard — оплата картой через Stripe (PaymentIntent).
	PaymentMethodCard PaymentMethod = "card"
	// PaymentMethodCash — оплата наличными при получении, возврат не требуется.
	PaymentMethodCash PaymentMethod = "cash"
)

// Valid проверяет, что способ оплаты поддерживается.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodPayPal, PaymentMethodCard, PaymentMethodCash:
		return true
	default:
		return false
	}
}

// Refundable сообщает, нужно ли возвращать деньги через провайдера при отмене.
func (m PaymentMethod) Refundable() bool {
	return m == PaymentMethodPayPal || m == PaymentMethodCard
}

// Address — адрес доставки заказа.
type Address struct {
	Line1    string `json:"line1"`
	Line2    string `json:"line2,omitempty"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
	State    string `json:"state,omitempty"`
	Country  string `json:"country,omitempty"`
}

// OrderItem представляет одну позицию заказа.
type OrderItem struct {
	ID        string
	ProductID string
	// VendorID выводится через товар; пустое значение разрешается через каталог.
	VendorID  string
	Name      string
	Qty       int32
	UnitPrice decimal.Decimal
	// Subtotal = UnitPrice × Qty, фиксируется при создании позиции.
	Subtotal  decimal.Decimal
	CreatedAt time.Time
}

// NewOrderItem создаёт позицию и вычисляет её subtotal.
func NewOrderItem(id, productID, vendorID, name string, qty int32, unitPrice decimal.Decimal, createdAt time.Time) OrderItem {
	return OrderItem{
		ID:        id,
		ProductID: productID,
		VendorID:  vendorID,
		Name:      name,
		Qty:       qty,
		UnitPrice: unitPrice,
		Subtotal:  LineSubtotal(unitPrice, qty),
		CreatedAt: createdAt,
	}
}

// LineSubtotal возвращает UnitPrice × Qty.
func LineSubtotal(unitPrice decimal.Decimal, qty int32) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt32(qty))
}

// ItemsSubtotal суммирует UnitPrice × Qty по всем позициям.
func ItemsSubtotal(items []OrderItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(LineSubtotal(item.UnitPrice, item.Qty))
	}
	return sum
}

// Order агрегирует состояние заказа и его позиции.
type Order struct {
	ID              string
	CustomerID      string
	VendorID        string
	Status          OrderStatus
	Currency        string
	TotalPrice      decimal.Decimal
	Items           []OrderItem
	PaymentMethod   PaymentMethod
	CaptureID       string
	ShippingAddress Address
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Elapsed возвращает время, прошедшее с момента создания заказа.
func (o *Order) Elapsed(now time.Time) time.Duration {
	return now.Sub(o.CreatedAt)
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if o.Currency == "" {
		errs = append(errs, ErrCurrencyRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.TotalPrice.IsNegative() {
		errs = append(errs, ErrAmountNegative)
	}
	if !o.PaymentMethod.Valid() {
		errs = append(errs, ErrPaymentMethodInvalid)
	}

	// Сверяем сумму заказа с суммой позиций: qty * price.
	calc := decimal.Zero
	for _, item := range o.Items {
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.UnitPrice.IsNegative() {
			errs = append(errs, ErrItemPriceInvalid)
		}
		if item.ProductID == "" {
			errs = append(errs, ErrItemProductRequired)
		}
		line := LineSubtotal(item.UnitPrice, item.Qty)
		if !item.Subtotal.Equal(line) {
			errs = append(errs, ErrItemSubtotalMismatch)
		}
		calc = calc.Add(line)
	}
	if !calc.Equal(o.TotalPrice) {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}

// OrderFilter описывает выборку заказов для отчётов и списков.
type OrderFilter struct {
	CustomerID string
	VendorID   string
	Statuses   []OrderStatus
	// CreatedFrom/CreatedTo ограничивают created_at полуинтервалом [from, to).
	CreatedFrom time.Time
	CreatedTo   time.Time
	Limit       int
}

// Match проверяет, попадает ли заказ под фильтр. Используется in-memory хранилищем.
func (f OrderFilter) Match(o Order) bool {
	if f.CustomerID != "" && o.CustomerID != f.CustomerID {
		return false
	}
	if f.VendorID != "" && !orderHasVendor(o, f.VendorID) {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if s == o.Status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.CreatedFrom.IsZero() && o.CreatedAt.Before(f.CreatedFrom) {
		return false
	}
	if !f.CreatedTo.IsZero() && !o.CreatedAt.Before(f.CreatedTo) {
		return false
	}
	return true
}

func orderHasVendor(o Order, vendorID string) bool {
	if o.VendorID == vendorID {
		return true
	}
	for _, item := range o.Items {
		if item.VendorID == vendorID {
			return true
		}
	}
	return false
}
