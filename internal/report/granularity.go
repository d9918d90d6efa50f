// Package report раскладывает заказы по временным окнам для графиков выручки.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrUnknownGranularity — масштаб графика не поддерживается.
	ErrUnknownGranularity = errors.New("unknown granularity")
	// ErrUnknownWeekFraming — неизвестный способ построения недели.
	ErrUnknownWeekFraming = errors.New("unknown week framing")
)

// Granularity определяет масштаб графика.
type Granularity string

const (
	GranularityDay     Granularity = "day"
	GranularityWeek    Granularity = "week"
	GranularityMonth   Granularity = "month"
	GranularityQuarter Granularity = "quarter"
	// GranularityYear — синоним quarter: год из четырёх кварталов.
	GranularityYear Granularity = "year"
)

// WeekFraming задаёт, как строится недельное окно.
type WeekFraming string

const (
	// WeekCalendar — календарная неделя Пн–Вс, содержащая опорный момент.
	WeekCalendar WeekFraming = "calendar"
	// WeekTrailing — последние 7 дней, включая день опорного момента.
	WeekTrailing WeekFraming = "trailing"
)

// ParseGranularity разбирает значение из запроса.
func ParseGranularity(raw string) (Granularity, error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(raw)))
	switch g {
	case GranularityDay, GranularityWeek, GranularityMonth, GranularityQuarter, GranularityYear:
		return g, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownGranularity, raw)
	}
}

// ParseWeekFraming разбирает способ построения недели. Пустая строка даёт календарную неделю.
func ParseWeekFraming(raw string) (WeekFraming, error) {
	switch f := WeekFraming(strings.ToLower(strings.TrimSpace(raw))); f {
	case "", WeekCalendar:
		return WeekCalendar, nil
	case WeekTrailing:
		return WeekTrailing, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownWeekFraming, raw)
	}
}

// BucketCount возвращает число корзин для масштаба.
func (g Granularity) BucketCount() int {
	switch g {
	case GranularityDay, GranularityMonth, GranularityQuarter, GranularityYear:
		return 4
	case GranularityWeek:
		return 7
	default:
		return 0
	}
}

var dayLabels = [4]string{"00-06", "06-12", "12-18", "18-24"}

var weekdayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// frame строит пустые корзины окна для опорного момента ref.
func frame(g Granularity, framing WeekFraming, ref time.Time) ([]TimeBucket, error) {
	switch g {
	case GranularityDay:
		day := startOfDay(ref)
		buckets := make([]TimeBucket, 4)
		for i := range buckets {
			buckets[i] = TimeBucket{
				Label: dayLabels[i],
				Start: day.Add(time.Duration(i*6) * time.Hour),
				End:   day.Add(time.Duration((i+1)*6) * time.Hour),
			}
		}
		// Последняя корзина заканчивается в полночь следующего дня даже при переходе на летнее время.
		buckets[3].End = day.AddDate(0, 0, 1)
		return buckets, nil

	case GranularityWeek:
		start := startOfDay(ref)
		if framing == WeekTrailing {
			start = start.AddDate(0, 0, -6)
		} else {
			// time.Weekday: воскресенье = 0, неделя начинается с понедельника.
			offset := (int(start.Weekday()) + 6) % 7
			start = start.AddDate(0, 0, -offset)
		}
		buckets := make([]TimeBucket, 7)
		for i := range buckets {
			dayStart := start.AddDate(0, 0, i)
			label := weekdayLabels[i]
			if framing == WeekTrailing {
				label = dayStart.Format("02 Jan")
			}
			buckets[i] = TimeBucket{Label: label, Start: dayStart, End: dayStart.AddDate(0, 0, 1)}
		}
		return buckets, nil

	case GranularityMonth:
		y, m, _ := ref.Date()
		first := time.Date(y, m, 1, 0, 0, 0, 0, ref.Location())
		buckets := make([]TimeBucket, 4)
		for i := range buckets {
			buckets[i] = TimeBucket{
				Label: fmt.Sprintf("Week %d", i+1),
				Start: first.AddDate(0, 0, 7*i),
				End:   first.AddDate(0, 0, 7*(i+1)),
			}
		}
		// Дни с 29-го попадают в четвёртую неделю.
		buckets[3].End = first.AddDate(0, 1, 0)
		return buckets, nil

	case GranularityQuarter, GranularityYear:
		first := time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, ref.Location())
		buckets := make([]TimeBucket, 4)
		for i := range buckets {
			buckets[i] = TimeBucket{
				Label: fmt.Sprintf("Q%d", i+1),
				Start: first.AddDate(0, 3*i, 0),
				End:   first.AddDate(0, 3*(i+1), 0),
			}
		}
		return buckets, nil
	}

	return nil, fmt.Errorf("%w %q", ErrUnknownGranularity, g)
}

// Window возвращает полуинтервал [start, end), который покрывает график.
func Window(g Granularity, framing WeekFraming, ref time.Time) (time.Time, time.Time, error) {
	buckets, err := frame(g, framing, ref)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return buckets[0].Start, buckets[len(buckets)-1].End, nil
}
