package ordering

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/fos/internal/domain"
	"github.com/vladislavdragonenkov/fos/internal/report"
	"github.com/vladislavdragonenkov/fos/internal/revenue"
)

// RevenueReport — выручка продавца по одному заказу и её раздел с платформой.
type RevenueReport struct {
	OrderID     string
	Attribution revenue.Attribution
	Split       revenue.Split
}

// ComputeRevenueSplit считает долю продавца vendorID в заказе (при пустом vendorID
// берётся продавец заказа) и делит итог с налогом 10/90 с платформой.
func (s *Service) ComputeRevenueSplit(ctx context.Context, orderID, vendorID string, taxRate decimal.Decimal) (RevenueReport, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return RevenueReport{}, err
	}
	if vendorID == "" {
		vendorID = order.VendorID
	}

	attribution, err := s.attributor.Attribute(ctx, order.Items, vendorID, taxRate)
	if err != nil {
		if integrity, ok := err.(*domain.DataIntegrityError); ok && integrity.OrderID == "" {
			integrity.OrderID = order.ID
		}
		return RevenueReport{OrderID: order.ID, Attribution: attribution}, err
	}
	return RevenueReport{
		OrderID:     order.ID,
		Attribution: attribution,
		Split:       revenue.PlatformCut(attribution.Total),
	}, nil
}

// ChartQuery описывает график выручки.
type ChartQuery struct {
	// При пустом VendorID строится график платформы (10% от суммы заказов).
	VendorID    string
	Granularity report.Granularity
	Framing     report.WeekFraming
	// Ref — момент, окно вокруг которого строится график; нулевой означает «сейчас».
	Ref      time.Time
	TaxRate  decimal.Decimal
	Location *time.Location
}

func (q ChartQuery) scope() string {
	if q.VendorID == "" {
		return "platform"
	}
	return "vendor:" + q.VendorID
}

// nonCancelled — статусы, попадающие в отчёты.
var nonCancelled = []domain.OrderStatus{
	domain.OrderStatusPending,
	domain.OrderStatusConfirmed,
	domain.OrderStatusPreparing,
	domain.OrderStatusReady,
	domain.OrderStatusCompleted,
}

// BuildChartSeries строит график выручки по корзинам окна и тренд. Результат кэшируется
// до прихода новых событий по заказам.
func (s *Service) BuildChartSeries(ctx context.Context, q ChartQuery) (report.Series, error) {
	if q.Framing == "" {
		q.Framing = report.WeekCalendar
	}
	ref := q.Ref
	if ref.IsZero() {
		ref = s.now()
	}
	if q.Location != nil {
		ref = ref.In(q.Location)
	}

	windowStart, windowEnd, err := report.Window(q.Granularity, q.Framing, ref)
	if err != nil {
		return report.Series{}, err
	}

	key := report.CacheKey(q.scope(), q.Granularity, q.Framing, windowStart)
	if q.VendorID != "" {
		key += ":" + q.TaxRate.String()
	}
	if cached, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("report cache read failed")
	} else if ok {
		s.metrics.RecordReportCache("hit")
		return cached, nil
	}
	s.metrics.RecordReportCache("miss")

	orders, err := s.orders.List(ctx, domain.OrderFilter{
		VendorID:    q.VendorID,
		Statuses:    nonCancelled,
		CreatedFrom: windowStart,
		CreatedTo:   windowEnd,
	})
	if err != nil {
		return report.Series{}, fmt.Errorf("list orders for report: %w", err)
	}

	opts := []report.Option{report.WithWeekFraming(q.Framing), report.WithLocation(q.Location)}
	if q.VendorID != "" {
		opts = append(opts, report.WithContributor(report.VendorContributor{
			Attributor: s.attributor,
			VendorID:   q.VendorID,
			TaxRate:    q.TaxRate,
		}))
	}
	buckets, err := report.Aggregate(ctx, orders, q.Granularity, ref, opts...)
	if err != nil {
		return report.Series{}, err
	}

	series := report.Summarize(buckets)
	series.Granularity = q.Granularity
	series.Framing = q.Framing
	if err := s.cache.Set(ctx, key, series); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("report cache write failed")
	}
	return series, nil
}

// InvalidateReports сбрасывает кэш графиков.
func (s *Service) InvalidateReports(ctx context.Context) error {
	return s.cache.Invalidate(ctx)
}
