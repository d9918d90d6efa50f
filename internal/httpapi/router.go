// Package httpapi — HTTP-интерфейс сервиса: служебные эндпоинты, отчёты и корзины.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fos/internal/cart"
	"github.com/vladislavdragonenkov/fos/internal/health"
	"github.com/vladislavdragonenkov/fos/internal/report"
	"github.com/vladislavdragonenkov/fos/internal/service/ordering"
)

// Reporter — отчётные операции сервиса заказов.
type Reporter interface {
	ComputeRevenueSplit(ctx context.Context, orderID, vendorID string, taxRate decimal.Decimal) (ordering.RevenueReport, error)
	BuildChartSeries(ctx context.Context, q ordering.ChartQuery) (report.Series, error)
}

// Dependencies — всё, что нужно роутеру. Nil-поля отключают соответствующие маршруты.
type Dependencies struct {
	Reports Reporter
	Carts   cart.Store
	Placer  cart.OrderPlacer
	Health  *health.Handler
	Metrics http.Handler
	Logger  *log.Entry
}

// NewRouter собирает chi-роутер.
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = log.WithField("component", "http")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}
	r.Get("/livez", health.LivenessHandler)
	if deps.Health != nil {
		r.Handle("/healthz", deps.Health)
		r.Get("/readyz", deps.Health.ReadinessHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		if deps.Reports != nil {
			rh := &reportHandler{reports: deps.Reports, logger: logger}
			r.Get("/reports/revenue", rh.Revenue)
			r.Get("/orders/{id}/split", rh.Split)
		}
		if deps.Carts != nil {
			ch := &cartHandler{store: deps.Carts, placer: deps.Placer, logger: logger}
			r.Route("/carts/{user}/{vendor}", ch.RegisterRoutes)
		}
	})

	return r
}

// requestLogger пишет одну строку на запрос в logrus.
func requestLogger(logger *log.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			entry := logger.WithFields(log.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  middleware.GetReqID(r.Context()),
			})
			switch {
			case ww.Status() >= http.StatusInternalServerError:
				entry.Error("http request failed")
			case r.URL.Path == "/metrics" || r.URL.Path == "/livez" || r.URL.Path == "/readyz":
				entry.Debug("http request")
			default:
				entry.Info("http request")
			}
		})
	}
}
