package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты отмены и возврата для label "result".
const (
	ResultOK      = "ok"
	ResultFailed  = "failed"
	ResultPartial = "partial"
	ResultSkipped = "skipped"
)

// OrderMetrics содержит метрики жизненного цикла заказов.
type OrderMetrics struct {
	ordersPlaced       prometheus.Counter
	statusChanges      *prometheus.CounterVec
	cancellations      *prometheus.CounterVec
	refunds            *prometheus.CounterVec
	transitionRejects  *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	timelineEvents     prometheus.Counter
	outboxEvents       prometheus.Counter
	reportCacheLookups *prometheus.CounterVec
}

// NewOrderMetrics регистрирует метрики в prometheus.DefaultRegisterer.
func NewOrderMetrics() *OrderMetrics {
	return NewOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewOrderMetricsWithRegisterer регистрирует метрики в заданном registerer.
func NewOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	registerer = registererOrDefault(registerer)

	return &OrderMetrics{
		ordersPlaced: register(registerer, "fos_orders_placed_total", prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fos_orders_placed_total",
			Help: "Total number of orders placed",
		})),
		statusChanges: register(registerer, "fos_order_status_changes_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fos_order_status_changes_total",
			Help: "Total number of persisted status changes grouped by target status",
		}, []string{"status"})),
		cancellations: register(registerer, "fos_order_cancellations_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fos_order_cancellations_total",
			Help: "Total number of cancellation attempts grouped by result",
		}, []string{"result"})),
		refunds: register(registerer, "fos_order_refunds_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fos_order_refunds_total",
			Help: "Total number of refund attempts grouped by provider and result",
		}, []string{"provider", "result"})),
		transitionRejects: register(registerer, "fos_order_transition_rejections_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fos_order_transition_rejections_total",
			Help: "Total number of rejected status transitions grouped by reason",
		}, []string{"reason"})),
		operationDuration: register(registerer, "fos_order_operation_duration_seconds", prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fos_order_operation_duration_seconds",
			Help:    "Duration of order service operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"})),
		timelineEvents: register(registerer, "fos_timeline_events_total", prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fos_timeline_events_total",
			Help: "Total number of timeline events recorded",
		})),
		outboxEvents: register(registerer, "fos_outbox_events_total", prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fos_outbox_events_total",
			Help: "Total number of events enqueued to outbox",
		})),
		reportCacheLookups: register(registerer, "fos_report_cache_lookups_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fos_report_cache_lookups_total",
			Help: "Chart series cache lookups grouped by result",
		}, []string{"result"})),
	}
}

// Все методы безопасны для nil-получателя: сервис может работать без метрик.

func (m *OrderMetrics) RecordOrderPlaced() {
	if m == nil {
		return
	}
	m.ordersPlaced.Inc()
}

// RecordStatusChange учитывает сохранённый переход в целевой статус.
func (m *OrderMetrics) RecordStatusChange(status string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(status).Inc()
}

// RecordCancellation учитывает результат отмены (ok/failed/partial).
func (m *OrderMetrics) RecordCancellation(result string) {
	if m == nil {
		return
	}
	m.cancellations.WithLabelValues(result).Inc()
}

// RecordRefund учитывает попытку возврата у провайдера.
func (m *OrderMetrics) RecordRefund(provider, result string) {
	if m == nil {
		return
	}
	m.refunds.WithLabelValues(provider, result).Inc()
}

// RecordTransitionRejected учитывает отклонённый переход.
func (m *OrderMetrics) RecordTransitionRejected(reason string) {
	if m == nil {
		return
	}
	m.transitionRejects.WithLabelValues(reason).Inc()
}

func (m *OrderMetrics) RecordOperationDuration(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *OrderMetrics) RecordTimelineEvent() {
	if m == nil {
		return
	}
	m.timelineEvents.Inc()
}

func (m *OrderMetrics) RecordOutboxEvent() {
	if m == nil {
		return
	}
	m.outboxEvents.Inc()
}

// RecordReportCache учитывает попадание ("hit") или промах ("miss") кэша графиков.
func (m *OrderMetrics) RecordReportCache(result string) {
	if m == nil {
		return
	}
	m.reportCacheLookups.WithLabelValues(result).Inc()
}
