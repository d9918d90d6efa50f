package app

import (
	"encoding/json"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fos/internal/domain"
	"github.com/vladislavdragonenkov/fos/internal/messaging/kafka"
)

const defaultKafkaClientID = "fos-order-service"

// splitBrokers разбирает список брокеров через запятую, отбрасывая пустые элементы.
func splitBrokers(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// initKafkaProducer создаёт producer, если заданы брокеры.
// Для пустого списка возвращает nil, nil: сервис работает без Kafka.
func initKafkaProducer(brokers string, logger *log.Entry) (*kafka.Producer, error) {
	return initKafkaProducerWithClientID(brokers, defaultKafkaClientID, logger)
}

func initKafkaProducerWithClientID(brokers, clientID string, logger *log.Entry) (*kafka.Producer, error) {
	brokerList := splitBrokers(brokers)
	if len(brokerList) == 0 {
		return nil, nil
	}

	producer, err := kafka.NewProducer(kafka.ProducerConfig{Brokers: brokerList, ClientID: clientID})
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil, err
	}

	logger.WithField("brokers", brokerList).Info("kafka producer initialized")
	return producer, nil
}

// closeKafka закрывает producer, если он был создан.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}
	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
		return
	}
	logger.Info("kafka producer closed")
}

// outboxPublishers возвращает основной и DLQ-паблишер для outbox worker.
func outboxPublishers(producer *kafka.Producer, logger *log.Entry) (domain.OutboxPublisher, domain.OutboxPublisher) {
	if producer == nil {
		return &logPublisher{logger: logger.WithField("sink", "log")}, nil
	}
	return kafka.NewOutboxPublisher(producer, kafka.TopicOrderEvents),
		kafka.NewOutboxPublisher(producer, kafka.TopicDeadLetterQueue)
}

// logPublisher пишет события outbox в лог, когда Kafka не настроена.
type logPublisher struct {
	logger *log.Entry
}

func (p *logPublisher) Publish(event domain.OutboxMessage) error {
	entry := p.logger.WithFields(log.Fields{
		"event_id":     event.ID,
		"event_type":   event.EventType,
		"aggregate_id": event.AggregateID,
	})
	if json.Valid(event.Payload) {
		entry = entry.WithField("payload", string(event.Payload))
	}
	entry.Info("outbox event")
	return nil
}
