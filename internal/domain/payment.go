package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RefundStatus описывает результат возврата у провайдера.
type RefundStatus string

const (
	// RefundStatusCompleted — провайдер подтвердил возврат.
	RefundStatusCompleted RefundStatus = "completed"
	// RefundStatusPending — возврат принят, но ещё обрабатывается.
	RefundStatusPending RefundStatus = "pending"
)

// RefundReceipt — подтверждение возврата от провайдера.
type RefundReceipt struct {
	RefundID  string
	CaptureID string
	Provider  string
	Status    RefundStatus
	Amount    decimal.Decimal
	Currency  string
	CreatedAt time.Time
}
