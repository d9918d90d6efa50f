package app

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/fos/internal/cart"
	"github.com/vladislavdragonenkov/fos/internal/domain"
	"github.com/vladislavdragonenkov/fos/internal/report"
	"github.com/vladislavdragonenkov/fos/internal/service/inventory"
	"github.com/vladislavdragonenkov/fos/internal/service/payment"
)

func TestBuildPaymentRouter(t *testing.T) {
	logger := log.WithField("test", "payment")
	ctx := context.Background()

	t.Run("nothing configured", func(t *testing.T) {
		router, err := buildPaymentRouter(ctx, DefaultConfig(), logger)
		require.NoError(t, err)
		_, err = router.GatewayFor(domain.PaymentMethodPayPal)
		assert.ErrorIs(t, err, domain.ErrPaymentGatewayMissing)
		_, err = router.GatewayFor(domain.PaymentMethodCard)
		assert.ErrorIs(t, err, domain.ErrPaymentGatewayMissing)
	})

	t.Run("mocks", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.AllowMockIntegrations = true
		router, err := buildPaymentRouter(ctx, cfg, logger)
		require.NoError(t, err)

		gw, err := router.GatewayFor(domain.PaymentMethodPayPal)
		require.NoError(t, err)
		assert.IsType(t, &payment.MockGateway{}, gw)
		gw, err = router.GatewayFor(domain.PaymentMethodCard)
		require.NoError(t, err)
		assert.IsType(t, &payment.MockGateway{}, gw)
	})

	t.Run("real gateways win over mocks", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.AllowMockIntegrations = true
		cfg.PayPalClientID = "client"
		cfg.PayPalClientSecret = "secret"
		cfg.StripeSecretKey = "sk_test_123"
		router, err := buildPaymentRouter(ctx, cfg, logger)
		require.NoError(t, err)

		gw, err := router.GatewayFor(domain.PaymentMethodPayPal)
		require.NoError(t, err)
		assert.IsType(t, &payment.PayPalGateway{}, gw)
		gw, err = router.GatewayFor(domain.PaymentMethodCard)
		require.NoError(t, err)
		assert.IsType(t, &payment.StripeGateway{}, gw)
	})
}

func TestStockAdjuster(t *testing.T) {
	logger := log.WithField("test", "stock")
	deps, err := initRuntimeDependencies(context.Background(), DefaultConfig(), logger)
	require.NoError(t, err)

	assert.Equal(t, deps.productRepo, stockAdjuster(DefaultConfig(), deps, logger))

	cfg := DefaultConfig()
	cfg.AllowMockIntegrations = true
	assert.IsType(t, &inventory.MockAdjuster{}, stockAdjuster(cfg, deps, logger))
}

func TestRedisBackedSelectorsWithoutRedis(t *testing.T) {
	client, err := initRedis(context.Background(), DefaultConfig(), log.WithField("test", "redis"))
	require.NoError(t, err)
	assert.Nil(t, client)

	assert.IsType(t, &cart.MemoryStore{}, cartStore(nil, DefaultConfig()))
	assert.IsType(t, report.NopCache{}, seriesCache(nil, DefaultConfig()))
}

func TestInitRedis_Unreachable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RedisAddr = "127.0.0.1:1"
	client, err := initRedis(context.Background(), cfg, log.WithField("test", "redis"))
	assert.Error(t, err)
	assert.Nil(t, client)
}
