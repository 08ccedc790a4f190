package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"ventas/internal/core"
)

// TopByQuantity sums quantities per product and returns the n largest,
// ordered ascending so the biggest bar is drawn last (on top).
func TopByQuantity(txs []core.Transaction, n int) []core.ProductQuantity {
	sums := make(map[string]int64)
	order := make([]string, 0)
	for _, tx := range txs {
		if _, seen := sums[tx.Description]; !seen {
			order = append(order, tx.Description)
		}
		sums[tx.Description] += tx.Quantity
	}

	rows := make([]core.ProductQuantity, 0, len(order))
	for _, desc := range order {
		rows = append(rows, core.ProductQuantity{Description: desc, Quantity: sums[desc]})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Quantity != rows[j].Quantity {
			return rows[i].Quantity > rows[j].Quantity
		}
		return rows[i].Description < rows[j].Description
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows
}

// TopByRevenue sums line totals per product and returns the n largest,
// ordered ascending for display.
func TopByRevenue(txs []core.Transaction, n int) []core.ProductRevenue {
	sums := make(map[string]decimal.Decimal)
	order := make([]string, 0)
	for _, tx := range txs {
		cur, seen := sums[tx.Description]
		if !seen {
			order = append(order, tx.Description)
		}
		sums[tx.Description] = cur.Add(tx.Total)
	}

	rows := make([]core.ProductRevenue, 0, len(order))
	for _, desc := range order {
		rows = append(rows, core.ProductRevenue{Description: desc, Total: sums[desc]})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if c := rows[i].Total.Cmp(rows[j].Total); c != 0 {
			return c > 0
		}
		return rows[i].Description < rows[j].Description
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows
}

// DailyTotals returns the revenue of every date present in txs, ordered by date.
func DailyTotals(txs []core.Transaction) []core.DailyPoint {
	byDay := make(map[string]*core.DailyPoint)
	for _, tx := range txs {
		key := tx.Date.Key()
		p, ok := byDay[key]
		if !ok {
			p = &core.DailyPoint{Date: tx.Date, Weekday: tx.Date.Weekday()}
			byDay[key] = p
		}
		p.Total = p.Total.Add(tx.Total)
	}

	points := make([]core.DailyPoint, 0, len(byDay))
	for _, p := range byDay {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date.Time) })
	return points
}

// WeekdayPeriodHeatmap averages daily revenue per weekday and month-third
// band. Sundays are left out.
func WeekdayPeriodHeatmap(daily []core.DailyPoint) core.Heatmap {
	rows := len(core.HeatmapWeekdays)
	cols := len(core.BandLabels)
	sums := make([][]decimal.Decimal, rows)
	counts := make([][]int, rows)
	for r := range sums {
		sums[r] = make([]decimal.Decimal, cols)
		counts[r] = make([]int, cols)
	}

	for _, p := range daily {
		if p.Weekday == time.Sunday {
			continue
		}
		r := int(p.Weekday) - 1
		c := core.BandOf(p.Date.Day())
		sums[r][c] = sums[r][c].Add(p.Total)
		counts[r][c]++
	}

	hm := core.Heatmap{
		Weekdays: make([]string, rows),
		Bands:    append([]string(nil), core.BandLabels...),
		Cells:    make([][]core.HeatCell, rows),
	}
	for r, w := range core.HeatmapWeekdays {
		hm.Weekdays[r] = core.WeekdayShort(w)
		hm.Cells[r] = make([]core.HeatCell, cols)
		for c := 0; c < cols; c++ {
			if counts[r][c] == 0 {
				continue
			}
			hm.Cells[r][c] = core.HeatCell{
				Mean: sums[r][c].Div(decimal.NewFromInt(int64(counts[r][c]))),
				Days: counts[r][c],
			}
		}
	}
	return hm
}

// WeekdayAverages averages daily revenue per weekday, Monday first.
func WeekdayAverages(daily []core.DailyPoint) []core.WeekdayAverage {
	sums := make(map[int]decimal.Decimal)
	counts := make(map[int]int)
	for _, p := range daily {
		w := int(p.Weekday)
		sums[w] = sums[w].Add(p.Total)
		counts[w]++
	}

	out := make([]core.WeekdayAverage, 0, len(core.WeekOrder))
	for _, w := range core.WeekOrder {
		avg := core.WeekdayAverage{Weekday: w, Label: core.WeekdayLong(w), Days: counts[int(w)]}
		if avg.Days > 0 {
			avg.Mean = sums[int(w)].Div(decimal.NewFromInt(int64(avg.Days)))
		}
		out = append(out, avg)
	}
	return out
}

// Summarize computes the whole-period counters.
func Summarize(txs []core.Transaction) core.Summary {
	s := core.Summary{Rows: len(txs)}
	invoices := make(map[string]struct{})
	for i, tx := range txs {
		s.TotalRevenue = s.TotalRevenue.Add(tx.Total)
		invoices[tx.Invoice] = struct{}{}
		if i == 0 || tx.Date.Before(s.From.Time) {
			s.From = tx.Date
		}
		if i == 0 || tx.Date.After(s.To.Time) {
			s.To = tx.Date
		}
	}
	s.Invoices = len(invoices)
	return s
}
