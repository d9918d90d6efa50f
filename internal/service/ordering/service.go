// Package ordering управляет жизненным циклом заказа: checkout, смена статуса,
// отмена с возвратом средств и отчёты по выручке.
package ordering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fos/internal/domain"
	"github.com/vladislavdragonenkov/fos/internal/metrics"
	"github.com/vladislavdragonenkov/fos/internal/report"
	"github.com/vladislavdragonenkov/fos/internal/revenue"
)

// EventPublisher публикует best-effort события заказа в брокер.
type EventPublisher interface {
	PublishEvent(topic string, key string, event interface{}) error
}

// Dependencies — порты, которые нужны сервису.
type Dependencies struct {
	Orders   domain.OrderRepository
	Timeline domain.TimelineRepository
	Outbox   domain.OutboxRepository
	Payments domain.PaymentGatewayResolver
	Stock    domain.StockAdjuster
	// Vendors нужен для позиций без VendorID; может быть nil.
	Vendors domain.VendorResolver
	Cache   report.SeriesCache
	Events  EventPublisher
	Metrics *metrics.OrderMetrics
	Logger  *log.Entry
	Clock   func() time.Time
}

// Service — сервис заказов.
type Service struct {
	orders     domain.OrderRepository
	timeline   domain.TimelineRepository
	outbox     domain.OutboxRepository
	payments   domain.PaymentGatewayResolver
	stock      domain.StockAdjuster
	attributor *revenue.Attributor
	cache      report.SeriesCache
	events     EventPublisher
	metrics    *metrics.OrderMetrics
	logger     *log.Entry
	now        func() time.Time

	// параметры повтора при конфликте версий
	maxSaveAttempts int
	conflictDelay   time.Duration
}

// NewService проверяет обязательные зависимости и собирает сервис.
func NewService(deps Dependencies) (*Service, error) {
	switch {
	case deps.Orders == nil:
		return nil, errors.New("ordering: order repository is required")
	case deps.Payments == nil:
		return nil, errors.New("ordering: payment gateway resolver is required")
	case deps.Stock == nil:
		return nil, errors.New("ordering: stock adjuster is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = log.WithField("component", "ordering")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	cache := deps.Cache
	if cache == nil {
		cache = report.NopCache{}
	}

	return &Service{
		orders:          deps.Orders,
		timeline:        deps.Timeline,
		outbox:          deps.Outbox,
		payments:        deps.Payments,
		stock:           deps.Stock,
		attributor:      revenue.NewAttributor(deps.Vendors),
		cache:           cache,
		events:          deps.Events,
		metrics:         deps.Metrics,
		logger:          logger,
		now:             func() time.Time { return clock().UTC() },
		maxSaveAttempts: 3,
		conflictDelay:   10 * time.Millisecond,
	}, nil
}

// PlaceOrder создаёт заказ в статусе pending и списывает остатки по позициям.
// Пустые ID, валюта, subtotal и сумма заказа заполняются автоматически.
func (s *Service) PlaceOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	start := s.now()
	defer func() { s.metrics.RecordOperationDuration(string(domain.OrderStepPlace), time.Since(start)) }()

	order = s.normalize(order, start)
	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return domain.Order{}, errors.Join(errs...)
	}

	if err := s.reserveStock(ctx, order); err != nil {
		return domain.Order{}, err
	}
	if err := s.orders.Create(ctx, order); err != nil {
		s.releaseStock(ctx, order.ID, order.Items)
		return domain.Order{}, fmt.Errorf("create order %s: %w", order.ID, err)
	}

	s.metrics.RecordOrderPlaced()
	s.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"customer_id": order.CustomerID,
		"total":       order.TotalPrice.StringFixed(2),
	}).Info("order placed")

	s.emitEvent(ctx, &order, domain.TimelineOrderPlaced, map[string]interface{}{
		"customer_id":    order.CustomerID,
		"vendor_id":      order.VendorID,
		"total":          order.TotalPrice.StringFixed(2),
		"currency":       order.Currency,
		"payment_method": string(order.PaymentMethod),
		"ts":             order.CreatedAt.Format(time.RFC3339Nano),
	})
	s.publishLifecycle(eventOrderPlaced, &order, nil)
	return order, nil
}

func (s *Service) normalize(order domain.Order, now time.Time) domain.Order {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.Currency == "" {
		order.Currency = domain.DefaultCurrency
	}
	items := make([]domain.OrderItem, len(order.Items))
	for i, item := range order.Items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if item.VendorID == "" {
			item.VendorID = order.VendorID
		}
		if item.Subtotal.IsZero() {
			item.Subtotal = domain.LineSubtotal(item.UnitPrice, item.Qty)
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		items[i] = item
	}
	order.Items = items
	if order.TotalPrice.IsZero() {
		order.TotalPrice = domain.ItemsSubtotal(items)
	}
	order.Status = domain.OrderStatusPending
	order.Version = 0
	order.CreatedAt = now
	order.UpdatedAt = now
	return order
}

// reserveStock списывает остатки; при ошибке возвращает уже списанное.
func (s *Service) reserveStock(ctx context.Context, order domain.Order) error {
	reserved := make([]domain.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		if err := s.stock.AdjustStock(ctx, item.ProductID, -item.Qty); err != nil {
			s.releaseStock(ctx, order.ID, reserved)
			return fmt.Errorf("reserve stock for product %s: %w", item.ProductID, err)
		}
		reserved = append(reserved, item)
	}
	return nil
}

// releaseStock возвращает остатки по позициям и собирает ошибки.
func (s *Service) releaseStock(ctx context.Context, orderID string, items []domain.OrderItem) error {
	var errs []error
	for _, item := range items {
		if err := s.stock.AdjustStock(ctx, item.ProductID, item.Qty); err != nil {
			s.logger.WithError(err).WithFields(log.Fields{
				"order_id":   orderID,
				"product_id": item.ProductID,
				"qty":        item.Qty,
			}).Error("stock revert failed")
			errs = append(errs, fmt.Errorf("product %s: %w", item.ProductID, err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", domain.ErrStockRevert, errors.Join(errs...))
}

// GetOrder возвращает заказ по ID.
func (s *Service) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return s.orders.Get(ctx, orderID)
}

// ListOrders возвращает заказы по фильтру.
func (s *Service) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	return s.orders.List(ctx, filter)
}

// Timeline возвращает историю событий заказа в хронологическом порядке.
func (s *Service) Timeline(ctx context.Context, orderID string) ([]domain.TimelineEvent, error) {
	if _, err := s.orders.Get(ctx, orderID); err != nil {
		return nil, err
	}
	if s.timeline == nil {
		return nil, nil
	}
	return s.timeline.List(ctx, orderID)
}
