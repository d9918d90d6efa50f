package kafka

import (
	"encoding/json"
	"time"
)

// EventType определяет тип события заказа.
type EventType string

const (
	EventTypeOrderPlaced        EventType = "order.placed"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeOrderCancelled     EventType = "order.cancelled"
	EventTypeRefundIssued       EventType = "order.refund_issued"
	EventTypeRefundFailed       EventType = "order.refund_failed"
	EventTypeIntegrityAnomaly   EventType = "order.integrity_anomaly"
)

// Topics для Kafka
const (
	// TopicOrderEvents получает конверты из transactional outbox.
	TopicOrderEvents = "fos.order.events"
	// TopicOrderLifecycle получает best-effort события напрямую из сервиса заказов.
	TopicOrderLifecycle  = "fos.order.lifecycle"
	TopicDeadLetterQueue = "fos.dlq"
)

// Kafka headers
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
	HeaderEventType     = "x-event-type"
)

// OrderEvent представляет событие жизненного цикла заказа.
type OrderEvent struct {
	EventType  EventType              `json:"event_type"`
	OrderID    string                 `json:"order_id"`
	CustomerID string                 `json:"customer_id"`
	VendorID   string                 `json:"vendor_id,omitempty"`
	Status     string                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// NewOrderEvent создает новое событие заказа с текущим временем.
func NewOrderEvent(eventType EventType, orderID, customerID, vendorID, status string, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventType:  eventType,
		OrderID:    orderID,
		CustomerID: customerID,
		VendorID:   vendorID,
		Status:     status,
		Timestamp:  time.Now().UTC(),
		Metadata:   metadata,
	}
}

// OutboxEnvelope — формат сообщения, которое outbox worker кладёт в TopicOrderEvents.
type OutboxEnvelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}
