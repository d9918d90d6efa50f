// report-projector слушает события заказов и сбрасывает кэш графиков выручки,
// чтобы инстансы сервиса не отдавали устаревшие серии.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fos/internal/domain"
	"github.com/vladislavdragonenkov/fos/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/fos/internal/report"
	"github.com/vladislavdragonenkov/fos/internal/version"
)

const (
	envKafkaBrokers = "FOS_KAFKA_BROKERS"
	envGroupID      = "FOS_PROJECTOR_GROUP"
	envRedisAddr    = "FOS_REDIS_ADDR"
	envRedisDB      = "FOS_REDIS_DB"

	defaultGroupID = "fos-report-projector"
)

type config struct {
	brokers   []string
	groupID   string
	redisAddr string
	redisDB   int
}

func readConfig(lookup func(string) (string, bool)) (config, error) {
	cfg := config{groupID: defaultGroupID}
	if v, ok := lookup(envKafkaBrokers); ok {
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.brokers = append(cfg.brokers, b)
			}
		}
	}
	if v, ok := lookup(envGroupID); ok && strings.TrimSpace(v) != "" {
		cfg.groupID = strings.TrimSpace(v)
	}
	if v, ok := lookup(envRedisAddr); ok {
		cfg.redisAddr = strings.TrimSpace(v)
	}
	if v, ok := lookup(envRedisDB); ok && strings.TrimSpace(v) != "" {
		db, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || db < 0 {
			return config{}, errors.New(envRedisDB + " must be a non-negative integer")
		}
		cfg.redisDB = db
	}

	switch {
	case len(cfg.brokers) == 0:
		return config{}, errors.New(envKafkaBrokers + " is required")
	case cfg.redisAddr == "":
		return config{}, errors.New(envRedisAddr + " is required")
	}
	return cfg, nil
}

// projector решает, меняет ли событие данные графиков.
type projector struct {
	cache  report.SeriesCache
	logger *log.Entry
}

// affectsReports: графики строятся по сумме и статусу заказов.
// Outbox несёт типы таймлайна, lifecycle-топик — типы kafka.EventType.
func affectsReports(eventType string) bool {
	switch eventType {
	case domain.TimelineOrderPlaced, domain.TimelineStatusChanged, domain.TimelineOrderCancelled,
		string(kafka.EventTypeOrderPlaced), string(kafka.EventTypeOrderStatusChanged), string(kafka.EventTypeOrderCancelled):
		return true
	default:
		return false
	}
}

func (p *projector) handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var eventType, orderID string
	switch msg.Topic {
	case kafka.TopicOrderEvents:
		env, err := kafka.ParseOutboxEnvelope(msg)
		if err != nil {
			return err
		}
		eventType, orderID = env.EventType, env.AggregateID
	case kafka.TopicOrderLifecycle:
		event, err := kafka.ParseOrderEvent(msg)
		if err != nil {
			return err
		}
		eventType, orderID = string(event.EventType), event.OrderID
	default:
		p.logger.WithField("topic", msg.Topic).Debug("skip message from unexpected topic")
		return nil
	}

	fields := log.Fields{"event_type": eventType, "order_id": orderID, "offset": msg.Offset}
	if !affectsReports(eventType) {
		p.logger.WithFields(fields).Debug("event does not affect reports")
		return nil
	}
	if err := p.cache.Invalidate(ctx); err != nil {
		return err
	}
	p.logger.WithFields(fields).Info("report cache invalidated")
	return nil
}

func main() {
	_ = godotenv.Load()
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	logger := log.WithField("component", "report-projector").WithFields(version.Fields())

	cfg, err := readConfig(os.LookupEnv)
	if err != nil {
		logger.WithError(err).Fatal("некорректная конфигурация")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := redis.NewClient(&redis.Options{Addr: cfg.redisAddr, DB: cfg.redisDB})
	defer client.Close()
	cache := report.NewRedisSeriesCache(client, time.Minute)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err = cache.Ping(pingCtx)
	cancel()
	if err != nil {
		logger.WithError(err).Fatal("redis недоступен")
	}

	dlq, err := kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.brokers, ClientID: cfg.groupID})
	if err != nil {
		logger.WithError(err).Fatal("не удалось создать DLQ producer")
	}
	defer dlq.Close()

	p := &projector{cache: cache, logger: logger}
	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:    cfg.brokers,
		GroupID:    cfg.groupID,
		Topics:     []string{kafka.TopicOrderEvents, kafka.TopicOrderLifecycle},
		MaxRetries: 3,
		RetryDelay: 200 * time.Millisecond,
		DLQ:        dlq,
	}, p.handle)
	if err != nil {
		logger.WithError(err).Fatal("не удалось создать consumer")
	}
	if err := consumer.Start(ctx); err != nil {
		logger.WithError(err).Fatal("не удалось запустить consumer")
	}

	<-ctx.Done()
	if err := consumer.Stop(); err != nil {
		logger.WithError(err).Warn("consumer stopped with error")
	}
	logger.Info("report-projector остановлен")
}
