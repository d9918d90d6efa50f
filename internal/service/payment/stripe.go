package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/refund"

	"github.com/vladislavdragonenkov/fos/internal/domain"
)

const stripeProvider = "stripe"

// refundCreator совпадает с сигнатурой refund.New и подменяется в тестах.
type refundCreator func(params *stripe.RefundParams) (*stripe.Refund, error)

// StripeGateway возвращает деньги за карточные заказы. CaptureID заказа хранит PaymentIntent.
type StripeGateway struct {
	create refundCreator
}

// NewStripeGateway настраивает глобальный ключ stripe-go и создаёт шлюз.
func NewStripeGateway(secretKey string) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, errors.New("stripe secret key is required")
	}
	stripe.Key = secretKey
	return &StripeGateway{create: refund.New}, nil
}

// RefundPayment создаёт возврат по PaymentIntent на сумму amount.
func (g *StripeGateway) RefundPayment(ctx context.Context, captureID string, amount decimal.Decimal, currency string) (domain.RefundReceipt, error) {
	if captureID == "" {
		return domain.RefundReceipt{}, domain.ErrMissingCaptureID
	}
	if err := ctx.Err(); err != nil {
		return domain.RefundReceipt{}, err
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(captureID),
		Amount:        stripe.Int64(toMinorUnits(amount)),
		Reason:        stripe.String("requested_by_customer"),
	}

	r, err := g.create(params)
	if err != nil {
		return domain.RefundReceipt{}, fmt.Errorf("stripe refund: %w", err)
	}

	receipt := domain.RefundReceipt{
		RefundID:  r.ID,
		CaptureID: captureID,
		Provider:  stripeProvider,
		Status:    domain.RefundStatusPending,
		Amount:    fromMinorUnits(r.Amount),
		Currency:  strings.ToUpper(string(r.Currency)),
		CreatedAt: time.Unix(r.Created, 0).UTC(),
	}
	if r.Status == stripe.RefundStatusSucceeded {
		receipt.Status = domain.RefundStatusCompleted
	}
	if receipt.Currency == "" {
		receipt.Currency = currency
	}
	return receipt, nil
}

// toMinorUnits переводит ринггиты в сены.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func fromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

var _ domain.PaymentGateway = (*StripeGateway)(nil)
