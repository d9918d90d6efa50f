package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fos/internal/cart"
	"github.com/vladislavdragonenkov/fos/internal/domain"
	"github.com/vladislavdragonenkov/fos/internal/report"
	"github.com/vladislavdragonenkov/fos/internal/service/inventory"
	"github.com/vladislavdragonenkov/fos/internal/service/payment"
)

// buildPaymentRouter регистрирует шлюзы возврата по способам оплаты.
// Способ без шлюза не мешает старту: отмена такого заказа закончится ErrPaymentGatewayMissing.
func buildPaymentRouter(ctx context.Context, cfg Config, logger *log.Entry) (*payment.Router, error) {
	router := payment.NewRouter()

	switch {
	case cfg.PayPalClientID != "":
		gw, err := payment.NewPayPalGateway(ctx, payment.PayPalConfig{
			BaseURL:      cfg.PayPalBaseURL,
			ClientID:     cfg.PayPalClientID,
			ClientSecret: cfg.PayPalClientSecret,
		})
		if err != nil {
			return nil, fmt.Errorf("init paypal gateway: %w", err)
		}
		router.Register(domain.PaymentMethodPayPal, gw)
		logger.WithField("base_url", cfg.PayPalBaseURL).Info("paypal gateway configured")
	case cfg.AllowMockIntegrations:
		router.Register(domain.PaymentMethodPayPal, payment.NewMockGateway("paypal"))
		logger.Warn("paypal refunds use mock gateway")
	default:
		logger.Warn("paypal gateway is not configured, paypal refunds will fail")
	}

	switch {
	case cfg.StripeSecretKey != "":
		gw, err := payment.NewStripeGateway(cfg.StripeSecretKey)
		if err != nil {
			return nil, fmt.Errorf("init stripe gateway: %w", err)
		}
		router.Register(domain.PaymentMethodCard, gw)
		logger.Info("stripe gateway configured")
	case cfg.AllowMockIntegrations:
		router.Register(domain.PaymentMethodCard, payment.NewMockGateway("stripe"))
		logger.Warn("card refunds use mock gateway")
	default:
		logger.Warn("stripe gateway is not configured, card refunds will fail")
	}

	return router, nil
}

// stockAdjuster — каталог товаров хранилища; без каталога в dev-режиме остатки не проверяются.
func stockAdjuster(cfg Config, deps runtimeDependencies, logger *log.Entry) domain.StockAdjuster {
	if cfg.AllowMockIntegrations && cfg.StorageDriver != StorageDriverPostgres {
		logger.Warn("stock adjustments use mock adjuster")
		return inventory.NewMockAdjuster()
	}
	return deps.productRepo
}

// initRedis подключается к Redis; при пустом адресе Redis не используется.
func initRedis(ctx context.Context, cfg Config, logger *log.Entry) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
	}
	logger.WithField("addr", cfg.RedisAddr).Info("redis connected")
	return client, nil
}

// cartStore выбирает хранилище корзин.
func cartStore(client *redis.Client, cfg Config) cart.Store {
	if client == nil {
		return cart.NewMemoryStore()
	}
	return cart.NewRedisStore(client, cfg.CartTTL)
}

// seriesCache выбирает кэш графиков.
func seriesCache(client *redis.Client, cfg Config) report.SeriesCache {
	if client == nil || cfg.ReportCacheTTL <= 0 {
		return report.NopCache{}
	}
	return report.NewRedisSeriesCache(client, cfg.ReportCacheTTL)
}
