package app

import (
	"bytes"
	"testing"

	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/fos/internal/domain"
	"github.com/vladislavdragonenkov/fos/internal/messaging/kafka"
)

func TestSplitBrokers(t *testing.T) {
	assert.Nil(t, splitBrokers(""))
	assert.Nil(t, splitBrokers(" , ,"))
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, splitBrokers(" broker1:9092, broker2:9092 ,"))
}

func TestInitKafkaProducer_EmptyBrokers(t *testing.T) {
	producer, err := initKafkaProducer("", log.WithField("test", "kafka"))
	require.NoError(t, err)
	assert.Nil(t, producer)

	producer, err = initKafkaProducer(" , ", log.WithField("test", "kafka"))
	require.NoError(t, err)
	assert.Nil(t, producer)
}

func TestInitKafkaProducer_InvalidBrokers(t *testing.T) {
	producer, err := initKafkaProducer("invalid-broker:9999, localhost:1", log.WithField("test", "kafka"))
	assert.Error(t, err)
	assert.Nil(t, producer)
}

func TestCloseKafka(t *testing.T) {
	logger := log.WithField("test", "kafka")
	closeKafka(nil, logger)

	producer := kafka.NewProducerWithClient(mocks.NewSyncProducer(t, nil), logger)
	closeKafkaProducer(producer, logger)
}

func TestOutboxPublishers_WithoutKafkaLogsEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&log.JSONFormatter{})

	publisher, dlq := outboxPublishers(nil, logger.WithField("test", "outbox"))
	assert.Nil(t, dlq)
	require.NotNil(t, publisher)

	err := publisher.Publish(domain.OutboxMessage{
		ID:          "evt-1",
		AggregateID: "order-1",
		EventType:   string(kafka.EventTypeOrderCancelled),
		Payload:     []byte(`{"order_id":"order-1"}`),
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"event_type":"order.cancelled"`)
	assert.Contains(t, buf.String(), `"aggregate_id":"order-1"`)
}

func TestOutboxPublishers_WithKafka(t *testing.T) {
	syncProducer := mocks.NewSyncProducer(t, nil)
	syncProducer.ExpectSendMessageAndSucceed()
	producer := kafka.NewProducerWithClient(syncProducer, log.WithField("test", "kafka"))
	defer closeKafka(producer, log.WithField("test", "kafka"))

	publisher, dlq := outboxPublishers(producer, log.WithField("test", "outbox"))
	require.NotNil(t, dlq)
	require.NoError(t, publisher.Publish(domain.OutboxMessage{
		ID:          "evt-2",
		AggregateID: "order-2",
		EventType:   string(kafka.EventTypeOrderPlaced),
		Payload:     []byte(`{}`),
	}))
}
