package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fos/internal/app"
	"github.com/vladislavdragonenkov/fos/internal/version"
)

const (
	envGRPCAddr              = "FOS_GRPC_ADDR"
	envHTTPAddr              = "FOS_HTTP_ADDR"
	envStorageDriver         = "FOS_STORAGE_DRIVER"
	envPostgresDSN           = "FOS_POSTGRES_DSN"
	envPostgresAutoMigrate   = "FOS_POSTGRES_AUTO_MIGRATE"
	envPostgresMaxConns      = "FOS_POSTGRES_MAX_CONNS"
	envKafkaBrokers          = "FOS_KAFKA_BROKERS"
	envOutboxPollInterval    = "FOS_OUTBOX_POLL_INTERVAL"
	envOutboxBatchSize       = "FOS_OUTBOX_BATCH_SIZE"
	envOutboxMaxAttempts     = "FOS_OUTBOX_MAX_ATTEMPTS"
	envOutboxRetryDelay      = "FOS_OUTBOX_RETRY_DELAY"
	envRedisAddr             = "FOS_REDIS_ADDR"
	envRedisDB               = "FOS_REDIS_DB"
	envCartTTL               = "FOS_CART_TTL"
	envReportCacheTTL        = "FOS_REPORT_CACHE_TTL"
	envPayPalBaseURL         = "FOS_PAYPAL_BASE_URL"
	envPayPalClientID        = "FOS_PAYPAL_CLIENT_ID"
	envPayPalClientSecret    = "FOS_PAYPAL_CLIENT_SECRET"
	envStripeSecretKey       = "FOS_STRIPE_SECRET_KEY"
	envAllowMockIntegrations = "FOS_ALLOW_MOCK_INTEGRATIONS"
	envLogLevel              = "FOS_LOG_LEVEL"
)

type envLookup func(key string) (string, bool)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger(lookup envLookup) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
	if raw, ok := lookup(envLogLevel); ok {
		if level, err := log.ParseLevel(strings.TrimSpace(raw)); err == nil {
			log.SetLevel(level)
		}
	}
}

// readConfigFromEnv накладывает переменные окружения на DefaultConfig.
// Некорректные значения не роняют запуск: остаётся значение по умолчанию, а проблема попадает в warnings.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string
	warn := func(key, raw string, err error) {
		warnings = append(warnings, fmt.Sprintf("%s=%q ignored: %v", key, raw, err))
	}

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			parsed, err := parseBool(v)
			if err != nil {
				warn(key, v, err)
				return
			}
			*dst = parsed
		}
	}
	integer := func(key string, dst *int, valid func(int) bool, rule string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			parsed, err := parseInt(v, valid, rule)
			if err != nil {
				warn(key, v, err)
				return
			}
			*dst = parsed
		}
	}
	duration := func(key string, dst *time.Duration, valid func(time.Duration) bool, rule string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			parsed, err := parseDuration(v, valid, rule)
			if err != nil {
				warn(key, v, err)
				return
			}
			*dst = parsed
		}
	}
	positive := func(v int) bool { return v > 0 }
	nonNegative := func(v int) bool { return v >= 0 }
	positiveDuration := func(v time.Duration) bool { return v > 0 }
	nonNegativeDuration := func(v time.Duration) bool { return v >= 0 }

	str(envGRPCAddr, &cfg.GRPCAddr)
	str(envHTTPAddr, &cfg.HTTPAddr)
	if v, ok := lookup(envStorageDriver); ok && strings.TrimSpace(v) != "" {
		cfg.StorageDriver = app.StorageDriver(strings.ToLower(strings.TrimSpace(v)))
	}
	str(envPostgresDSN, &cfg.PostgresDSN)
	boolean(envPostgresAutoMigrate, &cfg.PostgresAutoMigrate)
	integer(envPostgresMaxConns, &cfg.PostgresMaxConns, positive, "must be > 0")
	str(envKafkaBrokers, &cfg.KafkaBrokers)

	duration(envOutboxPollInterval, &cfg.OutboxPollInterval, positiveDuration, "must be > 0")
	integer(envOutboxBatchSize, &cfg.OutboxBatchSize, positive, "must be > 0")
	integer(envOutboxMaxAttempts, &cfg.OutboxMaxAttempts, positive, "must be > 0")
	duration(envOutboxRetryDelay, &cfg.OutboxRetryDelay, nonNegativeDuration, "must be >= 0")

	str(envRedisAddr, &cfg.RedisAddr)
	integer(envRedisDB, &cfg.RedisDB, nonNegative, "must be >= 0")
	duration(envCartTTL, &cfg.CartTTL, positiveDuration, "must be > 0")
	duration(envReportCacheTTL, &cfg.ReportCacheTTL, nonNegativeDuration, "must be >= 0")

	str(envPayPalBaseURL, &cfg.PayPalBaseURL)
	str(envPayPalClientID, &cfg.PayPalClientID)
	str(envPayPalClientSecret, &cfg.PayPalClientSecret)
	str(envStripeSecretKey, &cfg.StripeSecretKey)
	boolean(envAllowMockIntegrations, &cfg.AllowMockIntegrations)

	return cfg, warnings
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean")
	}
}

func parseInt(raw string, valid func(int) bool, rule string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if !valid(value) {
		return 0, errors.New(rule)
	}
	return value, nil
}

func parseDuration(raw string, valid func(time.Duration) bool, rule string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if !valid(value) {
		return 0, errors.New(rule)
	}
	return value, nil
}

func main() {
	// .env опционален; переменные окружения процесса имеют приоритет.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Warn("failed to load .env")
	}

	setupLogger(os.LookupEnv)
	cfg, warnings := readConfigFromEnv(os.LookupEnv)
	for _, w := range warnings {
		log.Warn(w)
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("некорректная конфигурация")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(version.Fields()).WithFields(log.Fields{
		"grpc_addr":      cfg.GRPCAddr,
		"http_addr":      cfg.HTTPAddr,
		"storage_driver": cfg.StorageDriver,
		"kafka":          cfg.KafkaBrokers != "",
		"redis":          cfg.RedisAddr != "",
	}).Info("запускаем OrderService")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("OrderService остановлен")
}
