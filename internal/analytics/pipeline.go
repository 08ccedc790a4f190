// Package analytics turns a table of transactions into the derived views
// drawn on the sales dashboard.
//
// Build is the whole pipeline: filter, then aggregate. It keeps no state
// between calls.
package analytics

import (
	"ventas/internal/core"
)

// Options tunes the derived views.
type Options struct {
	TopN          int
	Window        int
	LowSalesRatio float64
	Holidays      []core.Date
}

// DefaultOptions returns the dashboard defaults: top 10, 7-day window,
// low-sales threshold at half the mean, default holidays.
func DefaultOptions() Options {
	return Options{
		TopN:          10,
		Window:        7,
		LowSalesRatio: 0.5,
		Holidays:      core.DefaultHolidays,
	}
}

// Build filters txs with f and computes every derived view of the dashboard.
// It returns core.ErrIncompleteRange or core.ErrNoData (possibly wrapped)
// when there is nothing to draw.
func Build(txs []core.Transaction, f core.Filter, opts Options) (core.Dashboard, error) {
	filtered, err := Apply(txs, f)
	if err != nil {
		return core.Dashboard{}, err
	}

	daily := DailyTotals(filtered)
	holidays := AnnotateTrend(daily, opts.Window, opts.LowSalesRatio, opts.Holidays)

	return core.Dashboard{
		Filter:          f,
		TopByQuantity:   TopByQuantity(filtered, opts.TopN),
		TopByRevenue:    TopByRevenue(filtered, opts.TopN),
		Daily:           daily,
		Heatmap:         WeekdayPeriodHeatmap(daily),
		WeekdayAverages: WeekdayAverages(daily),
		Summary:         Summarize(filtered),
		Holidays:        holidays,
	}, nil
}
