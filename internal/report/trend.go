package report

import "github.com/shopspring/decimal"

// TrendDirection — направление изменения выручки за период.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// trendThreshold — относительное изменение, ниже которого период считается стабильным.
var trendThreshold = decimal.RequireFromString("0.1")

// Trend сравнивает среднее первой и второй половины ряда.
// При нечётной длине средний элемент относится ко второй половине.
func Trend(values []decimal.Decimal) TrendDirection {
	if len(values) < 2 {
		return TrendStable
	}

	half := len(values) / 2
	first := average(values[:half])
	second := average(values[half:])

	if first.IsZero() {
		if second.IsPositive() {
			return TrendIncreasing
		}
		return TrendStable
	}

	change := second.Sub(first).Div(first.Abs())
	switch {
	case change.GreaterThan(trendThreshold):
		return TrendIncreasing
	case change.LessThan(trendThreshold.Neg()):
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func average(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(values))))
}

// Series — готовый к отрисовке график.
type Series struct {
	Granularity Granularity     `json:"granularity"`
	Framing     WeekFraming     `json:"framing,omitempty"`
	Buckets     []TimeBucket    `json:"buckets"`
	Total       decimal.Decimal `json:"total"`
	Trend       TrendDirection  `json:"trend"`
}

// Summarize считает итог и тренд по корзинам.
func Summarize(buckets []TimeBucket) Series {
	values := make([]decimal.Decimal, len(buckets))
	total := decimal.Zero
	for i, b := range buckets {
		values[i] = b.Value
		total = total.Add(b.Value)
	}
	return Series{
		Buckets: buckets,
		Total:   total,
		Trend:   Trend(values),
	}
}
