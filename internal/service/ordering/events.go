package ordering

import (
	"context"
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fos/internal/domain"
	"github.com/vladislavdragonenkov/fos/internal/messaging/kafka"
)

const aggregateOrder = "order"

const (
	eventOrderPlaced      = kafka.EventTypeOrderPlaced
	eventStatusChanged    = kafka.EventTypeOrderStatusChanged
	eventOrderCancelled   = kafka.EventTypeOrderCancelled
	eventRefundFailed     = kafka.EventTypeRefundFailed
	eventIntegrityAnomaly = kafka.EventTypeIntegrityAnomaly
)

// emitEvent кладёт событие в outbox и дублирует его в timeline заказа.
// Причина берётся из payload["reason"], время из payload["ts"].
func (s *Service) emitEvent(ctx context.Context, order *domain.Order, eventType string, payload map[string]interface{}) {
	if payload == nil {
		payload = make(map[string]interface{})
	}
	payload["order_id"] = order.ID
	fields := log.Fields{"order_id": order.ID, "event": eventType}

	if s.outbox != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			s.logger.WithError(err).WithFields(fields).Error("marshal event failed")
		} else if _, err := s.outbox.Enqueue(ctx, domain.OutboxMessage{
			AggregateType: aggregateOrder,
			AggregateID:   order.ID,
			EventType:     eventType,
			Payload:       data,
		}); err != nil {
			s.logger.WithError(err).WithFields(fields).Error("enqueue event failed")
		} else {
			s.metrics.RecordOutboxEvent()
		}
	}

	if s.timeline == nil {
		return
	}
	reason, _ := payload["reason"].(string)
	occurred := s.now()
	if ts, ok := payload["ts"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			occurred = parsed
		}
	}
	event := domain.TimelineEvent{
		OrderID:  order.ID,
		Type:     eventType,
		Reason:   reason,
		Occurred: occurred,
	}
	if err := s.timeline.Append(ctx, event); err != nil {
		s.logger.WithError(err).WithFields(fields).Warn("append timeline event failed")
		return
	}
	s.metrics.RecordTimelineEvent()
}

// publishLifecycle публикует событие в Kafka, если producer настроен. Ошибка не прерывает операцию.
func (s *Service) publishLifecycle(eventType kafka.EventType, order *domain.Order, metadata map[string]interface{}) {
	if s.events == nil {
		return
	}
	event := kafka.NewOrderEvent(eventType, order.ID, order.CustomerID, order.VendorID, string(order.Status), metadata)
	if err := s.events.PublishEvent(kafka.TopicOrderLifecycle, order.ID, event); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"event_type": eventType,
			"order_id":   order.ID,
		}).Warn("failed to publish order event to kafka")
	}
}
