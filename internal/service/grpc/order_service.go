package grpcsvc

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vladislavdragonenkov/fos/internal/domain"
	"github.com/vladislavdragonenkov/fos/internal/report"
	"github.com/vladislavdragonenkov/fos/internal/revenue"
	"github.com/vladislavdragonenkov/fos/internal/service/ordering"
	fosv1 "github.com/vladislavdragonenkov/fos/proto/fos/v1"
)

// OrderManager — операции сервиса заказов, которые выставляются наружу через gRPC.
type OrderManager interface {
	PlaceOrder(ctx context.Context, order domain.Order) (domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	RequestStatusChange(ctx context.Context, orderID string, target domain.OrderStatus) (domain.Order, error)
	AdvanceStatus(ctx context.Context, orderID string) (domain.Order, error)
	Cancel(ctx context.Context, orderID, reason string) (domain.Order, error)
	ComputeRevenueSplit(ctx context.Context, orderID, vendorID string, taxRate decimal.Decimal) (ordering.RevenueReport, error)
	BuildChartSeries(ctx context.Context, q ordering.ChartQuery) (report.Series, error)
	Timeline(ctx context.Context, orderID string) ([]domain.TimelineEvent, error)
}

// OrderService реализует fos.v1.OrderService поверх OrderManager.
type OrderService struct {
	fosv1.UnimplementedOrderServiceServer

	orders OrderManager
	logger *log.Entry

	mu       sync.Mutex
	draining bool
	inflight sync.WaitGroup
}

const (
	defaultListOrdersLimit = 100
	maxListOrdersLimit     = 500
)

// NewOrderService конструирует адаптер.
func NewOrderService(orders OrderManager, logger *log.Entry) *OrderService {
	if logger == nil {
		logger = log.New().WithField("component", "order-grpc")
	}
	return &OrderService{
		orders: orders,
		logger: logger,
	}
}

// PlaceOrder оформляет заказ из запроса checkout.
func (s *OrderService) PlaceOrder(ctx context.Context, req *fosv1.PlaceOrderRequest) (*fosv1.PlaceOrderResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	done, err := s.track()
	if err != nil {
		return nil, err
	}
	defer done()

	order, err := orderFromRequest(req)
	if err != nil {
		return nil, err
	}

	placed, err := s.orders.PlaceOrder(ctx, order)
	if err != nil {
		return nil, s.toStatus(err, "PlaceOrder", order.ID)
	}
	return &fosv1.PlaceOrderResponse{Order: toAPIOrder(placed)}, nil
}

// GetOrder возвращает состояние заказа и таймлайн событий.
func (s *OrderService) GetOrder(ctx context.Context, req *fosv1.GetOrderRequest) (*fosv1.GetOrderResponse, error) {
	if req.GetOrderId() == "" {
		return nil, status.Error(codes.InvalidArgument, "order_id is required")
	}

	order, err := s.orders.GetOrder(ctx, req.OrderId)
	if err != nil {
		return nil, s.toStatus(err, "GetOrder", req.OrderId)
	}

	events, err := s.orders.Timeline(ctx, order.ID)
	if err != nil {
		// таймлайн вспомогательный, заказ отдаём без него
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to list timeline events")
	}

	return &fosv1.GetOrderResponse{
		Order:    toAPIOrder(order),
		Timeline: toAPITimeline(events),
	}, nil
}

// ListOrders возвращает заказы клиента или продавца.
func (s *OrderService) ListOrders(ctx context.Context, req *fosv1.ListOrdersRequest) (*fosv1.ListOrdersResponse, error) {
	if req == nil || (req.CustomerId == "" && req.VendorId == "") {
		return nil, status.Error(codes.InvalidArgument, "customer_id or vendor_id is required")
	}

	limit := int(req.PageSize)
	switch {
	case limit <= 0:
		limit = defaultListOrdersLimit
	case limit > maxListOrdersLimit:
		limit = maxListOrdersLimit
	}

	filter := domain.OrderFilter{
		CustomerID: req.CustomerId,
		VendorID:   req.VendorId,
		Limit:      limit,
	}
	for _, raw := range req.FilterStatuses {
		st, err := domain.ParseOrderStatus(raw)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		filter.Statuses = append(filter.Statuses, st)
	}

	orders, err := s.orders.ListOrders(ctx, filter)
	if err != nil {
		return nil, s.toStatus(err, "ListOrders", "")
	}

	result := make([]*fosv1.Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, toAPIOrder(order))
	}
	return &fosv1.ListOrdersResponse{Orders: result}, nil
}

// RequestStatusChange переводит заказ в целевой статус.
func (s *OrderService) RequestStatusChange(ctx context.Context, req *fosv1.RequestStatusChangeRequest) (*fosv1.RequestStatusChangeResponse, error) {
	if req.GetOrderId() == "" {
		return nil, status.Error(codes.InvalidArgument, "order_id is required")
	}
	target, err := domain.ParseOrderStatus(req.TargetStatus)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	done, err := s.track()
	if err != nil {
		return nil, err
	}
	defer done()

	order, err := s.orders.RequestStatusChange(ctx, req.OrderId, target)
	if err != nil && !(target == domain.OrderStatusCancelled && domain.IsPartialFailure(err)) {
		return nil, s.toStatus(err, "RequestStatusChange", req.OrderId)
	}
	return &fosv1.RequestStatusChangeResponse{Order: toAPIOrder(order)}, nil
}

// AdvanceOrderStatus переводит заказ на следующий шаг прямой цепочки.
func (s *OrderService) AdvanceOrderStatus(ctx context.Context, req *fosv1.AdvanceOrderStatusRequest) (*fosv1.AdvanceOrderStatusResponse, error) {
	if req == nil || req.OrderId == "" {
		return nil, status.Error(codes.InvalidArgument, "order_id is required")
	}
	done, err := s.track()
	if err != nil {
		return nil, err
	}
	defer done()

	order, err := s.orders.AdvanceStatus(ctx, req.OrderId)
	if err != nil {
		return nil, s.toStatus(err, "AdvanceOrderStatus", req.OrderId)
	}
	return &fosv1.AdvanceOrderStatusResponse{Order: toAPIOrder(order)}, nil
}

// CancelOrder отменяет заказ с возвратом средств и остатков.
// Частичный сбой (отмена сохранена, но нужна сверка) возвращается как успешный ответ
// с ReconciliationRequired и списком предупреждений.
func (s *OrderService) CancelOrder(ctx context.Context, req *fosv1.CancelOrderRequest) (*fosv1.CancelOrderResponse, error) {
	if req.GetOrderId() == "" {
		return nil, status.Error(codes.InvalidArgument, "order_id is required")
	}
	done, err := s.track()
	if err != nil {
		return nil, err
	}
	defer done()

	order, err := s.orders.Cancel(ctx, req.OrderId, req.Reason)
	if err == nil {
		return &fosv1.CancelOrderResponse{Order: toAPIOrder(order)}, nil
	}
	if !domain.IsPartialFailure(err) {
		return nil, s.toStatus(err, "CancelOrder", req.OrderId)
	}

	s.logger.WithError(err).WithField("order_id", order.ID).Warn("order cancelled with reconciliation required")
	return &fosv1.CancelOrderResponse{
		Order:                  toAPIOrder(order),
		ReconciliationRequired: true,
		Warnings:               flattenErrors(err),
	}, nil
}

// ComputeRevenueSplit считает выручку продавца по заказу и долю платформы.
func (s *OrderService) ComputeRevenueSplit(ctx context.Context, req *fosv1.ComputeRevenueSplitRequest) (*fosv1.ComputeRevenueSplitResponse, error) {
	if req == nil || req.OrderId == "" {
		return nil, status.Error(codes.InvalidArgument, "order_id is required")
	}
	taxRate, err := parseTaxRate(req.TaxRate)
	if err != nil {
		return nil, err
	}

	rep, err := s.orders.ComputeRevenueSplit(ctx, req.OrderId, req.VendorId, taxRate)
	if err != nil {
		return nil, s.toStatus(err, "ComputeRevenueSplit", req.OrderId)
	}

	return &fosv1.ComputeRevenueSplitResponse{
		OrderId:       rep.OrderID,
		VendorId:      rep.Attribution.VendorID,
		Subtotal:      money(rep.Attribution.Subtotal),
		TaxRate:       rep.Attribution.TaxRate.String(),
		Tax:           money(rep.Attribution.Tax),
		Total:         money(rep.Attribution.Total),
		PlatformShare: money(rep.Split.Platform),
		VendorShare:   money(rep.Split.Vendor),
	}, nil
}

// BuildChartSeries строит график выручки платформы или продавца.
func (s *OrderService) BuildChartSeries(ctx context.Context, req *fosv1.BuildChartSeriesRequest) (*fosv1.BuildChartSeriesResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	q, err := chartQueryFromRequest(req)
	if err != nil {
		return nil, err
	}

	series, err := s.orders.BuildChartSeries(ctx, q)
	if err != nil {
		return nil, s.toStatus(err, "BuildChartSeries", "")
	}
	return toAPISeries(series), nil
}

// GetTimeline возвращает события заказа в хронологическом порядке.
func (s *OrderService) GetTimeline(ctx context.Context, req *fosv1.GetTimelineRequest) (*fosv1.GetTimelineResponse, error) {
	if req == nil || req.OrderId == "" {
		return nil, status.Error(codes.InvalidArgument, "order_id is required")
	}
	events, err := s.orders.Timeline(ctx, req.OrderId)
	if err != nil {
		return nil, s.toStatus(err, "GetTimeline", req.OrderId)
	}
	return &fosv1.GetTimelineResponse{Events: toAPITimeline(events)}, nil
}

// Shutdown перестаёт принимать изменяющие запросы и ждёт завершения начатых.
// Отмена с возвратом средств не должна обрываться посередине.
func (s *OrderService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.draining = true
	s.mu.Unlock()

	waitDone := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(waitDone)
	}()

	select {
	case <-waitDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *OrderService) track() (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draining {
		return nil, status.Error(codes.Unavailable, "service is shutting down")
	}
	s.inflight.Add(1)
	return s.inflight.Done, nil
}

// validationErrors — ошибки, которые означают некорректный запрос.
var validationErrors = []error{
	domain.ErrCustomerRequired,
	domain.ErrCurrencyRequired,
	domain.ErrItemsRequired,
	domain.ErrAmountNegative,
	domain.ErrItemQtyInvalid,
	domain.ErrItemPriceInvalid,
	domain.ErrItemProductRequired,
	domain.ErrItemSubtotalMismatch,
	domain.ErrAmountMismatch,
	domain.ErrPaymentMethodInvalid,
	domain.ErrStatusUnknown,
	report.ErrUnknownGranularity,
}

func (s *OrderService) toStatus(err error, operation, orderID string) error {
	code := codeFor(err)
	entry := s.logger.WithError(err).WithFields(log.Fields{
		"operation": operation,
		"order_id":  orderID,
		"code":      code.String(),
	})
	if code == codes.Internal {
		entry.Error("order operation failed")
		return status.Error(codes.Internal, "internal error")
	}
	entry.Info("order operation rejected")
	return status.Error(code, err.Error())
}

func codeFor(err error) codes.Code {
	switch {
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, domain.ErrOrderNotFound):
		return codes.NotFound
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrCancellationWindowExpired),
		errors.Is(err, domain.ErrInsufficientStock):
		return codes.FailedPrecondition
	case errors.Is(err, domain.ErrRefundFailed),
		errors.Is(err, domain.ErrOrderVersionConflict):
		return codes.Aborted
	case errors.Is(err, domain.ErrDataIntegrity):
		return codes.DataLoss
	case errors.Is(err, domain.ErrProductNotFound):
		return codes.InvalidArgument
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return codes.InvalidArgument
		}
	}
	return codes.Internal
}

func flattenErrors(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, flattenErrors(e)...)
		}
		return out
	}
	return []string{err.Error()}
}

func orderFromRequest(req *fosv1.PlaceOrderRequest) (domain.Order, error) {
	if len(req.Items) == 0 {
		return domain.Order{}, status.Error(codes.InvalidArgument, domain.ErrItemsRequired.Error())
	}
	method := domain.PaymentMethod(strings.ToLower(strings.TrimSpace(req.PaymentMethod)))
	if !method.Valid() {
		return domain.Order{}, status.Errorf(codes.InvalidArgument, "%s: %q", domain.ErrPaymentMethodInvalid, req.PaymentMethod)
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for idx, item := range req.Items {
		if item == nil {
			return domain.Order{}, status.Errorf(codes.InvalidArgument, "item[%d] is nil", idx)
		}
		price, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			return domain.Order{}, status.Errorf(codes.InvalidArgument, "item[%d].unit_price is not a decimal: %q", idx, item.UnitPrice)
		}
		items = append(items, domain.OrderItem{
			ID:        item.Id,
			ProductID: item.ProductId,
			VendorID:  item.VendorId,
			Name:      item.Name,
			Qty:       item.Qty,
			UnitPrice: price,
		})
	}

	order := domain.Order{
		ID:            req.OrderId,
		CustomerID:    req.CustomerId,
		VendorID:      req.VendorId,
		Currency:      req.Currency,
		Items:         items,
		PaymentMethod: method,
		CaptureID:     req.CaptureId,
	}
	if addr := req.ShippingAddress; addr != nil {
		order.ShippingAddress = domain.Address{
			Line1:    addr.Line1,
			Line2:    addr.Line2,
			City:     addr.City,
			Postcode: addr.Postcode,
			State:    addr.State,
			Country:  addr.Country,
		}
	}
	return order, nil
}

func parseTaxRate(raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return revenue.TaxRateVendorReport, nil
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || rate.IsNegative() {
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "tax_rate must be a non-negative decimal, got %q", raw)
	}
	return rate, nil
}

func chartQueryFromRequest(req *fosv1.BuildChartSeriesRequest) (ordering.ChartQuery, error) {
	g, err := report.ParseGranularity(req.Granularity)
	if err != nil {
		return ordering.ChartQuery{}, status.Error(codes.InvalidArgument, err.Error())
	}
	framing, err := report.ParseWeekFraming(req.WeekFraming)
	if err != nil {
		return ordering.ChartQuery{}, status.Error(codes.InvalidArgument, err.Error())
	}
	taxRate, err := parseTaxRate(req.TaxRate)
	if err != nil {
		return ordering.ChartQuery{}, err
	}

	q := ordering.ChartQuery{
		VendorID:    req.VendorId,
		Granularity: g,
		Framing:     framing,
		TaxRate:     taxRate,
	}
	if req.Ref != "" {
		ref, err := time.Parse(time.RFC3339, req.Ref)
		if err != nil {
			return ordering.ChartQuery{}, status.Errorf(codes.InvalidArgument, "ref must be RFC3339: %v", err)
		}
		q.Ref = ref
	}
	if req.Timezone != "" {
		loc, err := time.LoadLocation(req.Timezone)
		if err != nil {
			return ordering.ChartQuery{}, status.Errorf(codes.InvalidArgument, "unknown timezone %q", req.Timezone)
		}
		q.Location = loc
	}
	return q, nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toAPIOrder(order domain.Order) *fosv1.Order {
	items := make([]*fosv1.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, &fosv1.OrderItem{
			Id:        item.ID,
			ProductId: item.ProductID,
			VendorId:  item.VendorID,
			Name:      item.Name,
			Qty:       item.Qty,
			UnitPrice: money(item.UnitPrice),
			Subtotal:  money(item.Subtotal),
		})
	}

	out := &fosv1.Order{
		Id:            order.ID,
		CustomerId:    order.CustomerID,
		VendorId:      order.VendorID,
		Status:        string(order.Status),
		Currency:      order.Currency,
		Total:         money(order.TotalPrice),
		PaymentMethod: string(order.PaymentMethod),
		HasCapture:    order.CaptureID != "",
		Items:         items,
		Version:       order.Version,
	}
	if !order.CreatedAt.IsZero() {
		out.CreatedAt = order.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !order.UpdatedAt.IsZero() {
		out.UpdatedAt = order.UpdatedAt.UTC().Format(time.RFC3339)
	}
	if addr := order.ShippingAddress; addr != (domain.Address{}) {
		out.ShippingAddress = &fosv1.Address{
			Line1:    addr.Line1,
			Line2:    addr.Line2,
			City:     addr.City,
			Postcode: addr.Postcode,
			State:    addr.State,
			Country:  addr.Country,
		}
	}
	return out
}

func toAPITimeline(events []domain.TimelineEvent) []*fosv1.TimelineEvent {
	result := make([]*fosv1.TimelineEvent, 0, len(events))
	for _, event := range events {
		result = append(result, &fosv1.TimelineEvent{
			Type:     event.Type,
			Reason:   event.Reason,
			UnixTime: event.Occurred.Unix(),
		})
	}
	return result
}

func toAPISeries(series report.Series) *fosv1.BuildChartSeriesResponse {
	buckets := make([]*fosv1.TimeBucket, 0, len(series.Buckets))
	for _, b := range series.Buckets {
		buckets = append(buckets, &fosv1.TimeBucket{
			Label:  b.Label,
			Start:  b.Start.Format(time.RFC3339),
			End:    b.End.Format(time.RFC3339),
			Value:  money(b.Value),
			Orders: int32(b.Orders), //nolint:gosec // число заказов в корзине ограничено выборкой
		})
	}
	return &fosv1.BuildChartSeriesResponse{
		Granularity: string(series.Granularity),
		WeekFraming: string(series.Framing),
		Buckets:     buckets,
		Total:       money(series.Total),
		Trend:       string(series.Trend),
	}
}
