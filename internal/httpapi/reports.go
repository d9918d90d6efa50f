package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fos/internal/report"
	"github.com/vladislavdragonenkov/fos/internal/revenue"
	"github.com/vladislavdragonenkov/fos/internal/service/ordering"
)

type reportHandler struct {
	reports Reporter
	logger  *log.Entry
}

type bucketResponse struct {
	Label  string    `json:"label"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Value  string    `json:"value"`
	Orders int       `json:"orders"`
}

type seriesResponse struct {
	Scope       string           `json:"scope"`
	Granularity string           `json:"granularity"`
	Framing     string           `json:"framing,omitempty"`
	Buckets     []bucketResponse `json:"buckets"`
	Total       string           `json:"total"`
	Trend       string           `json:"trend"`
}

type splitResponse struct {
	OrderID       string `json:"order_id"`
	VendorID      string `json:"vendor_id"`
	Items         int    `json:"items"`
	Subtotal      string `json:"subtotal"`
	TaxRate       string `json:"tax_rate"`
	Tax           string `json:"tax"`
	Total         string `json:"total"`
	PlatformShare string `json:"platform_share"`
	VendorShare   string `json:"vendor_share"`
}

// Revenue — GET /api/v1/reports/revenue?granularity=week&framing=trailing&vendor_id=..&ref=..&tz=..&tax_rate=..
func (h *reportHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	g, err := report.ParseGranularity(q.Get("granularity"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_granularity", err.Error())
		return
	}
	framing, err := report.ParseWeekFraming(q.Get("framing"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_framing", err.Error())
		return
	}
	taxRate, ok := parseTaxRate(w, q.Get("tax_rate"))
	if !ok {
		return
	}

	query := ordering.ChartQuery{
		VendorID:    strings.TrimSpace(q.Get("vendor_id")),
		Granularity: g,
		Framing:     framing,
		TaxRate:     taxRate,
	}
	if raw := q.Get("ref"); raw != "" {
		ref, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_ref", "ref must be RFC3339")
			return
		}
		query.Ref = ref
	}
	if tz := q.Get("tz"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_timezone", err.Error())
			return
		}
		query.Location = loc
	}

	series, err := h.reports.BuildChartSeries(r.Context(), query)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	resp := seriesResponse{
		Scope:       "platform",
		Granularity: string(series.Granularity),
		Framing:     string(series.Framing),
		Buckets:     make([]bucketResponse, 0, len(series.Buckets)),
		Total:       series.Total.StringFixed(2),
		Trend:       string(series.Trend),
	}
	if query.VendorID != "" {
		resp.Scope = "vendor"
	}
	for _, b := range series.Buckets {
		resp.Buckets = append(resp.Buckets, bucketResponse{
			Label:  b.Label,
			Start:  b.Start,
			End:    b.End,
			Value:  b.Value.StringFixed(2),
			Orders: b.Orders,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Split — GET /api/v1/orders/{id}/split?vendor_id=..&tax_rate=..
func (h *reportHandler) Split(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	taxRate, ok := parseTaxRate(w, r.URL.Query().Get("tax_rate"))
	if !ok {
		return
	}

	rep, err := h.reports.ComputeRevenueSplit(r.Context(), orderID, r.URL.Query().Get("vendor_id"), taxRate)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, splitResponse{
		OrderID:       rep.OrderID,
		VendorID:      rep.Attribution.VendorID,
		Items:         rep.Attribution.Items,
		Subtotal:      rep.Attribution.Subtotal.StringFixed(2),
		TaxRate:       rep.Attribution.TaxRate.String(),
		Tax:           rep.Attribution.Tax.StringFixed(2),
		Total:         rep.Attribution.Total.StringFixed(2),
		PlatformShare: rep.Split.Platform.StringFixed(2),
		VendorShare:   rep.Split.Vendor.StringFixed(2),
	})
}

// parseTaxRate разбирает ставку; пустая строка даёт ставку отчётов продавца.
func parseTaxRate(w http.ResponseWriter, raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return revenue.TaxRateVendorReport, true
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil || rate.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid_tax_rate", "tax_rate must be a non-negative decimal")
		return decimal.Zero, false
	}
	return rate, true
}
