package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"
)

func TestProducer_PublishEvent(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := NewProducerWithClient(mockProducer, log.WithField("component", "kafka-producer-test"))

	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event OrderEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.OrderID != "order-123" || event.EventType != EventTypeOrderCancelled {
			t.Errorf("unexpected event %+v", event)
		}
		return nil
	})

	event := NewOrderEvent(EventTypeOrderCancelled, "order-123", "cust-1", "vendor-1", "cancelled", map[string]interface{}{
		"reason": "changed mind",
	})
	if err := producer.PublishEvent(TopicOrderLifecycle, "order-123", event); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_Error(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := NewProducerWithClient(mockProducer, nil)

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	event := NewOrderEvent(EventTypeOrderPlaced, "order-123", "cust-1", "", "pending", nil)
	if err := producer.PublishEvent(TopicOrderLifecycle, "order-123", event); err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEventMarshalError(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := NewProducerWithClient(mockProducer, nil)

	if err := producer.PublishEvent(TopicOrderLifecycle, "k", map[string]interface{}{"bad": make(chan int)}); err == nil {
		t.Fatal("expected marshal error")
	}
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewProducerWithoutBrokers(t *testing.T) {
	if _, err := NewProducer(ProducerConfig{}); err == nil {
		t.Fatal("expected error without brokers")
	}
}

func TestNewOrderEvent(t *testing.T) {
	event := NewOrderEvent(EventTypeOrderStatusChanged, "order-123", "cust-1", "vendor-9", "confirmed", map[string]interface{}{
		"from": "pending",
	})

	if event.EventType != EventTypeOrderStatusChanged {
		t.Errorf("expected event type %s, got %s", EventTypeOrderStatusChanged, event.EventType)
	}
	if event.OrderID != "order-123" || event.CustomerID != "cust-1" || event.VendorID != "vendor-9" {
		t.Errorf("unexpected ids: %+v", event)
	}
	if event.Status != "confirmed" {
		t.Errorf("expected status confirmed, got %s", event.Status)
	}
	if event.Metadata["from"] != "pending" {
		t.Error("metadata not set correctly")
	}
	if event.Timestamp.IsZero() || time.Since(event.Timestamp) > time.Second {
		t.Error("timestamp should be close to current time")
	}
}
