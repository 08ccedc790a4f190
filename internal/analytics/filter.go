package analytics

import (
	"fmt"

	"ventas/internal/core"
)

// Apply narrows txs to the transactions selected by f.
//
// Month mode keeps the transactions dated in the month named by the token.
// Range mode keeps the transactions within [start, end] inclusive and needs
// two dates; with fewer it returns core.ErrIncompleteRange. An empty result
// returns core.ErrNoData.
func Apply(txs []core.Transaction, f core.Filter) ([]core.Transaction, error) {
	var keep func(core.Date) bool

	switch f.Mode {
	case core.MonthMode:
		first, err := core.ParseMonth(f.Month)
		if err != nil {
			return nil, fmt.Errorf("month %q: %w", f.Month, err)
		}
		keep = func(d core.Date) bool {
			return d.Year() == first.Year() && d.Month() == first.Month()
		}
	case core.RangeMode:
		start, end, err := rangeBounds(f.Dates)
		if err != nil {
			return nil, err
		}
		keep = func(d core.Date) bool {
			return !d.Before(start.Time) && !d.After(end.Time)
		}
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidMode, f.Mode)
	}

	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if keep(tx.Date) {
			out = append(out, tx)
		}
	}
	if len(out) == 0 {
		return nil, core.ErrNoData
	}
	return out, nil
}

// rangeBounds returns the first and last picked dates.
func rangeBounds(dates []core.Date) (core.Date, core.Date, error) {
	picked := make([]core.Date, 0, len(dates))
	for _, d := range dates {
		if !d.IsEmpty() {
			picked = append(picked, d)
		}
	}
	if len(picked) < 2 {
		return core.Date{}, core.Date{}, core.ErrIncompleteRange
	}
	return picked[0], picked[len(picked)-1], nil
}
