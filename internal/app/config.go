package app

import (
	"fmt"
	"time"
)

// StorageDriver выбирает реализацию репозиториев.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config — настройки запуска сервиса заказов.
type Config struct {
	GRPCAddr string
	// HTTPAddr обслуживает /metrics, health-пробы, отчёты и корзины.
	HTTPAddr string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool
	PostgresMaxConns    int

	// KafkaBrokers — список через запятую; пусто — события только логируются.
	KafkaBrokers  string
	KafkaClientID string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration

	// Если RedisAddr пуст, корзины в памяти, кэш графиков выключен.
	RedisAddr      string
	RedisDB        int
	CartTTL        time.Duration
	ReportCacheTTL time.Duration

	PayPalBaseURL      string
	PayPalClientID     string
	PayPalClientSecret string
	StripeSecretKey    string

	// AllowMockIntegrations подставляет mock-шлюзы оплаты и склад без каталога.
	AllowMockIntegrations bool

	ShutdownTimeout time.Duration
}

// DefaultConfig возвращает настройки для локального запуска.
func DefaultConfig() Config {
	return Config{
		GRPCAddr:            ":50051",
		HTTPAddr:            ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		KafkaClientID:       "fos-order-service",
		OutboxPollInterval:  time.Second,
		OutboxBatchSize:     100,
		OutboxMaxAttempts:   3,
		OutboxRetryDelay:    200 * time.Millisecond,
		CartTTL:             24 * time.Hour,
		ReportCacheTTL:      5 * time.Minute,
		PayPalBaseURL:       "https://api-m.sandbox.paypal.com",
		ShutdownTimeout:     5 * time.Second,
	}
}

// Validate проверяет согласованность настроек до старта зависимостей.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres storage requires dsn")
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}
	if c.OutboxBatchSize <= 0 || c.OutboxMaxAttempts <= 0 {
		return fmt.Errorf("outbox batch size and max attempts must be positive")
	}
	if c.OutboxPollInterval <= 0 {
		return fmt.Errorf("outbox poll interval must be positive")
	}
	if (c.PayPalClientID == "") != (c.PayPalClientSecret == "") {
		return fmt.Errorf("paypal client id and secret must be set together")
	}
	return nil
}
