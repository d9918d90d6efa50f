package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/fos/internal/domain"
	"github.com/vladislavdragonenkov/fos/internal/revenue"
)

// TimeBucket — одна точка графика. Не сохраняется.
type TimeBucket struct {
	Label  string          `json:"label"`
	Start  time.Time       `json:"start"`
	End    time.Time       `json:"end"`
	Value  decimal.Decimal `json:"value"`
	Orders int             `json:"orders"`
}

// Contributor определяет, сколько заказ добавляет в корзину.
type Contributor interface {
	Contribute(ctx context.Context, order domain.Order) (decimal.Decimal, error)
}

// PlatformContributor учитывает комиссию платформы с суммы заказа.
type PlatformContributor struct{}

// Contribute возвращает долю платформы от TotalPrice.
func (PlatformContributor) Contribute(_ context.Context, order domain.Order) (decimal.Decimal, error) {
	return revenue.PlatformCut(order.TotalPrice).Platform, nil
}

// VendorContributor учитывает subtotal продавца вместе с налогом.
type VendorContributor struct {
	Attributor *revenue.Attributor
	VendorID   string
	TaxRate    decimal.Decimal
}

// Contribute возвращает Total атрибуции заказа на продавца.
func (c VendorContributor) Contribute(ctx context.Context, order domain.Order) (decimal.Decimal, error) {
	attr, err := c.Attributor.Attribute(ctx, order.Items, c.VendorID, c.TaxRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("order %s: %w", order.ID, err)
	}
	return attr.Total, nil
}

type options struct {
	framing     WeekFraming
	contributor Contributor
	location    *time.Location
}

// Option настраивает агрегацию.
type Option func(*options)

// WithWeekFraming выбирает календарную или скользящую неделю.
func WithWeekFraming(f WeekFraming) Option {
	return func(o *options) {
		if f != "" {
			o.framing = f
		}
	}
}

// WithContributor заменяет стратегию подсчёта вклада заказа.
func WithContributor(c Contributor) Option {
	return func(o *options) {
		if c != nil {
			o.contributor = c
		}
	}
}

// WithLocation задаёт часовой пояс, в котором режутся сутки.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		framing:     WeekCalendar,
		contributor: PlatformContributor{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Aggregate раскладывает заказы по корзинам окна, содержащего ref.
// Отменённые заказы и заказы вне окна ничего не добавляют.
func Aggregate(ctx context.Context, orders []domain.Order, g Granularity, ref time.Time, opts ...Option) ([]TimeBucket, error) {
	o := buildOptions(opts)
	if o.location != nil {
		ref = ref.In(o.location)
	}

	buckets, err := frame(g, o.framing, ref)
	if err != nil {
		return nil, err
	}
	for i := range buckets {
		buckets[i].Value = decimal.Zero
	}

	for _, order := range orders {
		if order.Status == domain.OrderStatusCancelled {
			continue
		}
		idx := locate(buckets, order.CreatedAt)
		if idx < 0 {
			continue
		}
		value, err := o.contributor.Contribute(ctx, order)
		if err != nil {
			return nil, err
		}
		buckets[idx].Value = buckets[idx].Value.Add(value)
		buckets[idx].Orders++
	}

	return buckets, nil
}

func locate(buckets []TimeBucket, at time.Time) int {
	for i, b := range buckets {
		if !at.Before(b.Start) && at.Before(b.End) {
			return i
		}
	}
	return -1
}
