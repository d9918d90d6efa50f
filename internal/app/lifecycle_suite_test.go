package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/vladislavdragonenkov/fos/internal/cart"
	"github.com/vladislavdragonenkov/fos/internal/domain"
	"github.com/vladislavdragonenkov/fos/internal/metrics"
	"github.com/vladislavdragonenkov/fos/internal/report"
	"github.com/vladislavdragonenkov/fos/internal/service/ordering"
	"github.com/vladislavdragonenkov/fos/internal/service/outbox"
	"github.com/vladislavdragonenkov/fos/internal/service/payment"
)

type recordingOutboxPublisher struct {
	mu     sync.Mutex
	events []domain.OutboxMessage
}

func (p *recordingOutboxPublisher) Publish(event domain.OutboxMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingOutboxPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType)
	}
	return out
}

type invalidationCounter struct {
	report.NopCache
	mu    sync.Mutex
	count int
}

func (c *invalidationCounter) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	return nil
}

func (c *invalidationCounter) invalidations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// OrderLifecycleTestSuite проходит заказ целиком: корзина, оформление, статусы,
// отмена с возвратом, outbox и сброс кэша отчётов.
type OrderLifecycleTestSuite struct {
	suite.Suite

	ctx       context.Context
	now       time.Time
	deps      runtimeDependencies
	paypal    *payment.MockGateway
	carts     *cart.MemoryStore
	cache     *invalidationCounter
	published *recordingOutboxPublisher
	worker    *outbox.Worker
	orders    *ordering.Service
}

func (s *OrderLifecycleTestSuite) SetupTest() {
	base := log.New()
	base.SetLevel(log.WarnLevel)
	logger := base.WithField("component", "lifecycle-test")

	s.ctx = context.Background()
	s.now = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

	deps, err := initRuntimeDependencies(s.ctx, DefaultConfig(), logger)
	s.Require().NoError(err)
	s.deps = deps

	for _, p := range []domain.Product{
		{ID: "nasi-lemak", VendorID: "vendor-1", Name: "Nasi Lemak", Price: decimal.RequireFromString("12.50"), Stock: 10},
		{ID: "teh-tarik", VendorID: "vendor-1", Name: "Teh Tarik", Price: decimal.RequireFromString("25.00"), Stock: 10},
	} {
		s.Require().NoError(deps.productRepo.UpsertProduct(s.ctx, p))
	}

	s.paypal = payment.NewMockGateway("paypal")
	s.carts = cart.NewMemoryStore()
	s.cache = &invalidationCounter{}
	s.published = &recordingOutboxPublisher{}

	s.orders, err = ordering.NewService(ordering.Dependencies{
		Orders:   deps.repo,
		Timeline: deps.timelineRepo,
		Outbox:   deps.outboxRepo,
		Payments: payment.NewRouter().Register(domain.PaymentMethodPayPal, s.paypal),
		Stock:    stockAdjuster(DefaultConfig(), deps, logger),
		Vendors:  deps.productRepo,
		Cache:    s.cache,
		Metrics:  metrics.NewOrderMetricsWithRegisterer(prometheus.NewRegistry()),
		Logger:   logger,
		Clock:    func() time.Time { return s.now },
	})
	s.Require().NoError(err)

	s.worker = outbox.NewWorker(deps.outboxRepo, s.published,
		outbox.WithLogger(logger),
		outbox.WithMetrics(metrics.NewOutboxMetrics(prometheus.NewRegistry())),
		outbox.WithAfterPublish(func(domain.OutboxMessage) { _ = s.orders.InvalidateReports(s.ctx) }),
	)
}

func (s *OrderLifecycleTestSuite) checkoutCart() domain.Order {
	key := cart.Key{UserID: "cust-1", VendorID: "vendor-1"}
	_, err := s.carts.Add(s.ctx, key, cart.Line{ProductID: "nasi-lemak", Name: "Nasi Lemak", Qty: 2, UnitPrice: decimal.RequireFromString("12.50")})
	s.Require().NoError(err)
	_, err = s.carts.Add(s.ctx, key, cart.Line{ProductID: "teh-tarik", Name: "Teh Tarik", Qty: 3, UnitPrice: decimal.RequireFromString("25.00")})
	s.Require().NoError(err)

	order, err := cart.Checkout(s.ctx, s.carts, s.orders, key, cart.CheckoutInput{
		PaymentMethod: domain.PaymentMethodPayPal,
		CaptureID:     "CAP-LIFECYCLE",
	})
	s.Require().NoError(err)
	return order
}

func (s *OrderLifecycleTestSuite) stockOf(productID string) int32 {
	p, err := s.deps.productRepo.GetProduct(s.ctx, productID)
	s.Require().NoError(err)
	return p.Stock
}

func (s *OrderLifecycleTestSuite) TestSuccessfulOrderLifecycle() {
	order := s.checkoutCart()
	s.Equal(domain.OrderStatusPending, order.Status)
	s.True(order.TotalPrice.Equal(decimal.RequireFromString("100")))
	s.Equal(int32(8), s.stockOf("nasi-lemak"))
	s.Equal(int32(7), s.stockOf("teh-tarik"))

	c, err := s.carts.Get(s.ctx, cart.Key{UserID: "cust-1", VendorID: "vendor-1"})
	s.Require().NoError(err)
	s.Empty(c.Lines, "checkout clears the cart")

	for _, want := range []domain.OrderStatus{
		domain.OrderStatusConfirmed,
		domain.OrderStatusPreparing,
		domain.OrderStatusReady,
		domain.OrderStatusCompleted,
	} {
		s.now = s.now.Add(5 * time.Minute)
		advanced, err := s.orders.AdvanceStatus(s.ctx, order.ID)
		s.Require().NoError(err)
		s.Equal(want, advanced.Status)
	}

	_, err = s.orders.Cancel(s.ctx, order.ID, "too late")
	s.ErrorIs(err, domain.ErrInvalidTransition)

	s.worker.ProcessOnce(s.ctx)
	types := s.published.types()
	s.Contains(types, domain.TimelineOrderPlaced)
	s.GreaterOrEqual(len(types), 5)
	s.Equal(len(types), s.cache.invalidations(), "every published event resets report cache")

	series, err := s.orders.BuildChartSeries(s.ctx, ordering.ChartQuery{Granularity: report.GranularityWeek, TaxRate: decimal.Zero})
	s.Require().NoError(err)
	s.Equal("10.00", series.Total.StringFixed(2))
}

func (s *OrderLifecycleTestSuite) TestOrderCancellationWithRefund() {
	order := s.checkoutCart()
	s.now = s.now.Add(30 * time.Second)

	cancelled, err := s.orders.Cancel(s.ctx, order.ID, "changed my mind")
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusCancelled, cancelled.Status)
	s.Equal(1, s.paypal.Calls())
	s.Equal("CAP-LIFECYCLE", s.paypal.LastCaptureID)
	s.Equal(int32(10), s.stockOf("nasi-lemak"), "stock returns to the catalog")
	s.Equal(int32(10), s.stockOf("teh-tarik"))

	series, err := s.orders.BuildChartSeries(s.ctx, ordering.ChartQuery{Granularity: report.GranularityWeek, VendorID: "vendor-1"})
	s.Require().NoError(err)
	s.True(series.Total.IsZero(), "cancelled orders are excluded from reports")
}

func (s *OrderLifecycleTestSuite) TestRefundFailureCompensation() {
	order := s.checkoutCart()
	s.paypal.RefundErr = domain.ErrRefundFailed

	_, err := s.orders.Cancel(s.ctx, order.ID, "refund please")
	s.ErrorIs(err, domain.ErrRefundFailed)

	stored, err := s.orders.GetOrder(s.ctx, order.ID)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusPending, stored.Status)
	s.Equal(int32(8), s.stockOf("nasi-lemak"), "stock stays reserved when refund fails")
}

func (s *OrderLifecycleTestSuite) TestCancellationWindowExpired() {
	order := s.checkoutCart()
	s.now = s.now.Add(61 * time.Second)

	_, err := s.orders.Cancel(s.ctx, order.ID, "late")
	s.ErrorIs(err, domain.ErrCancellationWindowExpired)
	s.Equal(0, s.paypal.Calls())
}

func (s *OrderLifecycleTestSuite) TestInsufficientStockLeavesCart() {
	key := cart.Key{UserID: "cust-2", VendorID: "vendor-1"}
	_, err := s.carts.Add(s.ctx, key, cart.Line{ProductID: "teh-tarik", Name: "Teh Tarik", Qty: 11, UnitPrice: decimal.RequireFromString("25.00")})
	s.Require().NoError(err)

	_, err = cart.Checkout(s.ctx, s.carts, s.orders, key, cart.CheckoutInput{PaymentMethod: domain.PaymentMethodCash})
	s.ErrorIs(err, domain.ErrInsufficientStock)

	c, err := s.carts.Get(s.ctx, key)
	s.Require().NoError(err)
	s.Len(c.Lines, 1, "failed checkout keeps the cart")
	s.Equal(int32(10), s.stockOf("teh-tarik"))
}

func TestOrderLifecycleTestSuite(t *testing.T) {
	suite.Run(t, new(OrderLifecycleTestSuite))
}
