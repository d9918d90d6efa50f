package domain

import "time"

// Типы событий таймлайна заказа.
const (
	TimelineOrderPlaced    = "OrderPlaced"
	TimelineStatusChanged  = "OrderStatusChanged"
	TimelineOrderCancelled = "OrderCancelled"
	TimelineRefundIssued   = "RefundIssued"
	TimelineRefundFailed   = "RefundFailed"
	TimelineStockReverted  = "StockReverted"
	TimelineIntegrityIssue = "DataIntegrityAnomaly"
)

// TimelineEvent описывает событие в жизненном цикле заказа.
type TimelineEvent struct {
	OrderID  string
	Type     string
	Reason   string
	Occurred time.Time
}
