package analytics

import (
	"github.com/shopspring/decimal"

	"ventas/internal/core"
)

// MovingAverage computes a centered moving average over values. The window
// shrinks at the edges down to a single value, so every position gets a mean.
func MovingAverage(values []decimal.Decimal, window int) []decimal.Decimal {
	if window < 1 {
		window = 1
	}
	out := make([]decimal.Decimal, len(values))
	for i := range values {
		lo := i - window/2
		hi := lo + window - 1
		if lo < 0 {
			lo = 0
		}
		if hi > len(values)-1 {
			hi = len(values) - 1
		}
		sum := decimal.Zero
		for j := lo; j <= hi; j++ {
			sum = sum.Add(values[j])
		}
		out[i] = sum.Div(decimal.NewFromInt(int64(hi - lo + 1)))
	}
	return out
}

// AnnotateTrend fills the moving average and the holiday and low-sales flags
// of daily, which must be ordered by date. It returns the holidays that fall
// on a date of the series.
func AnnotateTrend(daily []core.DailyPoint, window int, lowRatio float64, holidays []core.Date) []core.Date {
	if len(daily) == 0 {
		return nil
	}

	values := make([]decimal.Decimal, len(daily))
	sum := decimal.Zero
	for i, p := range daily {
		values[i] = p.Total
		sum = sum.Add(p.Total)
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(daily))))
	threshold := mean.Mul(decimal.NewFromFloat(lowRatio))

	holidaySet := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		holidaySet[h.Key()] = struct{}{}
	}

	var inRange []core.Date
	for i, avg := range MovingAverage(values, window) {
		daily[i].MovingAverage = avg
		daily[i].LowSales = daily[i].Total.LessThan(threshold)
		if _, ok := holidaySet[daily[i].Date.Key()]; ok {
			daily[i].Holiday = true
			inRange = append(inRange, daily[i].Date)
		}
	}
	return inRange
}
