// Package revenue считает выручку продавца, налог и долю платформы по позициям заказа.
package revenue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/fos/internal/domain"
)

var (
	// TaxRateVendorReport — ставка налога в отчётах продавца.
	TaxRateVendorReport = decimal.RequireFromString("0.06")
	// TaxRateCheckout — ставка налога, которую видит покупатель на checkout.
	TaxRateCheckout = decimal.RequireFromString("0.08")
	// PlatformShare — фиксированная комиссия платформы с каждого заказа.
	PlatformShare = decimal.RequireFromString("0.10")
)

// moneyPlaces — точность денежных сумм (сены).
const moneyPlaces = 2

// Attribution — часть заказа, относящаяся к одному продавцу.
type Attribution struct {
	VendorID string
	Subtotal decimal.Decimal
	TaxRate  decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	Items    int
}

// Split — деление суммы между платформой и продавцом.
type Split struct {
	Platform decimal.Decimal
	Vendor   decimal.Decimal
}

// Attributor вычисляет выручку продавца. Resolver нужен только для позиций без VendorID.
type Attributor struct {
	resolver domain.VendorResolver
}

// NewAttributor создаёт калькулятор. resolver может быть nil.
func NewAttributor(resolver domain.VendorResolver) *Attributor {
	return &Attributor{resolver: resolver}
}

// Attribute суммирует позиции продавца vendorID и начисляет налог по ставке taxRate.
// Пустой набор позиций даёт нулевой результат.
func (a *Attributor) Attribute(ctx context.Context, items []domain.OrderItem, vendorID string, taxRate decimal.Decimal) (Attribution, error) {
	out := Attribution{
		VendorID: vendorID,
		Subtotal: decimal.Zero,
		TaxRate:  taxRate,
		Tax:      decimal.Zero,
		Total:    decimal.Zero,
	}
	if taxRate.IsNegative() {
		return out, fmt.Errorf("tax rate must be non-negative, got %s", taxRate)
	}

	var unresolved []string
	for _, item := range items {
		owner, err := a.vendorOf(ctx, item)
		switch {
		case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrUnknownProductVendor):
			unresolved = append(unresolved, item.ProductID)
			continue
		case err != nil:
			return out, fmt.Errorf("resolve vendor of product %s: %w", item.ProductID, err)
		}
		if owner != vendorID {
			continue
		}
		out.Subtotal = out.Subtotal.Add(domain.LineSubtotal(item.UnitPrice, item.Qty))
		out.Items++
	}
	if len(unresolved) > 0 {
		return out, &domain.DataIntegrityError{
			Reason: "vendor unknown for products " + strings.Join(unresolved, ","),
			Err:    domain.ErrUnknownProductVendor,
		}
	}

	out.Tax = out.Subtotal.Mul(taxRate).Round(moneyPlaces)
	out.Total = out.Subtotal.Add(out.Tax)
	return out, nil
}

func (a *Attributor) vendorOf(ctx context.Context, item domain.OrderItem) (string, error) {
	if item.VendorID != "" {
		return item.VendorID, nil
	}
	if a == nil || a.resolver == nil {
		return "", domain.ErrUnknownProductVendor
	}
	vendor, err := a.resolver.VendorOf(ctx, item.ProductID)
	if err != nil {
		return "", err
	}
	if vendor == "" {
		return "", domain.ErrUnknownProductVendor
	}
	return vendor, nil
}

// PlatformCut делит сумму 10/90. Доля продавца считается как остаток,
// поэтому Platform + Vendor всегда равно total.
func PlatformCut(total decimal.Decimal) Split {
	platform := total.Mul(PlatformShare).Round(moneyPlaces)
	return Split{
		Platform: platform,
		Vendor:   total.Sub(platform),
	}
}

// OrderSubtotal возвращает Σ UnitPrice × Qty.
func OrderSubtotal(items []domain.OrderItem) decimal.Decimal {
	return domain.ItemsSubtotal(items)
}
