package analytics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ventas/internal/core"
)

func tx(day int, desc string, qty int64, total string, invoice string) core.Transaction {
	return core.Transaction{
		Date:        core.NewDate(2025, 6, day),
		Description: desc,
		Quantity:    qty,
		Total:       decimal.RequireFromString(total),
		Invoice:     invoice,
	}
}

// juneSales is a small June 2025 table. June 1st 2025 is a Sunday.
func juneSales() []core.Transaction {
	return []core.Transaction{
		tx(1, "Granola", 2, "50", "F-1"),
		tx(2, "Granola", 1, "25", "F-2"),
		tx(2, "Miel", 3, "75", "F-2"),
		tx(9, "Almendras", 4, "200", "F-3"),
		tx(9, "Miel", 1, "100", "F-4"),
		tx(20, "Té verde", 5, "60", "F-5"),
		tx(30, "Granola", 2, "50", "F-6"),
	}
}

func sumDaily(points []core.DailyPoint) decimal.Decimal {
	total := decimal.Zero
	for _, p := range points {
		total = total.Add(p.Total)
	}
	return total
}

func TestApplyMonthEqualsRange(t *testing.T) {
	txs := juneSales()

	byMonth, err := Apply(txs, core.MonthFilter("2025-06"))
	require.NoError(t, err)
	byRange, err := Apply(txs, core.RangeFilter(core.NewDate(2025, 6, 1), core.NewDate(2025, 6, 30)))
	require.NoError(t, err)

	assert.Equal(t, byMonth, byRange)
	assert.Len(t, byMonth, len(txs))
}

func TestApplyMonthKeepsOnlyThatMonth(t *testing.T) {
	txs := append(juneSales(), core.Transaction{
		Date: core.NewDate(2025, 7, 1), Description: "Miel", Quantity: 1,
		Total: decimal.NewFromInt(10), Invoice: "F-9",
	})
	got, err := Apply(txs, core.MonthFilter("2025-07"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "F-9", got[0].Invoice)
}

func TestApplyRangeIsInclusive(t *testing.T) {
	got, err := Apply(juneSales(), core.RangeFilter(core.NewDate(2025, 6, 2), core.NewDate(2025, 6, 9)))
	require.NoError(t, err)
	assert.Len(t, got, 4)
	for _, tr := range got {
		assert.False(t, tr.Date.Before(core.NewDate(2025, 6, 2).Time))
		assert.False(t, tr.Date.After(core.NewDate(2025, 6, 9).Time))
	}
}

func TestApplyIncompleteRange(t *testing.T) {
	for _, f := range []core.Filter{
		core.RangeFilter(),
		core.RangeFilter(core.NewDate(2025, 6, 2)),
		core.RangeFilter(core.NewDate(2025, 6, 2), core.Date{}),
	} {
		_, err := Apply(juneSales(), f)
		assert.ErrorIs(t, err, core.ErrIncompleteRange, "filter %s", f.Key())
	}
}

func TestApplyEmptyResult(t *testing.T) {
	_, err := Apply(juneSales(), core.MonthFilter("2024-01"))
	assert.ErrorIs(t, err, core.ErrNoData)

	_, err = Apply(juneSales(), core.RangeFilter(core.NewDate(2025, 6, 30), core.NewDate(2025, 6, 1)))
	assert.ErrorIs(t, err, core.ErrNoData)

	_, err = Apply(nil, core.MonthFilter("2025-06"))
	assert.ErrorIs(t, err, core.ErrNoData)
}

func TestApplyInvalidInput(t *testing.T) {
	_, err := Apply(juneSales(), core.MonthFilter("junio"))
	assert.ErrorIs(t, err, core.ErrInvalidMonth)

	_, err = Apply(juneSales(), core.Filter{Mode: "semana"})
	assert.ErrorIs(t, err, core.ErrInvalidMode)
}

func TestTopByQuantityLimitsAndSortsAscending(t *testing.T) {
	var txs []core.Transaction
	for i := 0; i < 12; i++ {
		txs = append(txs, tx(2, fmt.Sprintf("P%02d", i), int64(i), "1", fmt.Sprintf("F-%d", i)))
	}

	top := TopByQuantity(txs, 10)
	require.Len(t, top, 10)
	for i := 1; i < len(top); i++ {
		assert.LessOrEqual(t, top[i-1].Quantity, top[i].Quantity)
	}
	assert.Equal(t, "P11", top[len(top)-1].Description)

	var topSum, allSum int64
	for _, r := range top {
		topSum += r.Quantity
		assert.NotEqual(t, "P00", r.Description, "zero-quantity product must not rank")
	}
	for _, tr := range txs {
		allSum += tr.Quantity
	}
	assert.LessOrEqual(t, topSum, allSum)
}

func TestTopByQuantityFewProductsKeepsZero(t *testing.T) {
	txs := []core.Transaction{
		tx(2, "Miel", 0, "0", "F-1"),
		tx(2, "Granola", 3, "30", "F-1"),
	}
	top := TopByQuantity(txs, 10)
	require.Len(t, top, 2)
	assert.Equal(t, core.ProductQuantity{Description: "Miel", Quantity: 0}, top[0])
	assert.Equal(t, core.ProductQuantity{Description: "Granola", Quantity: 3}, top[1])
}

func TestTopByRevenue(t *testing.T) {
	top := TopByRevenue(juneSales(), 2)
	require.Len(t, top, 2)
	assert.Equal(t, "Almendras", top[1].Description)
	assert.True(t, top[1].Total.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, "Miel", top[0].Description)
	assert.True(t, top[0].Total.Equal(decimal.NewFromInt(175)))
}

func TestTopTiesAreDeterministic(t *testing.T) {
	txs := []core.Transaction{
		tx(2, "B", 1, "10", "F-1"),
		tx(2, "A", 1, "10", "F-1"),
		tx(2, "C", 1, "10", "F-1"),
	}
	top := TopByRevenue(txs, 2)
	require.Len(t, top, 2)
	assert.Equal(t, []string{"B", "A"}, []string{top[0].Description, top[1].Description})
}

func TestDailyTotals(t *testing.T) {
	daily := DailyTotals(juneSales())
	require.Len(t, daily, 5)
	assert.Equal(t, "2025-06-01", daily[0].Date.Key())
	assert.Equal(t, time.Sunday, daily[0].Weekday)
	assert.True(t, daily[1].Total.Equal(decimal.NewFromInt(100)))
	assert.True(t, daily[2].Total.Equal(decimal.NewFromInt(300)))
	for i := 1; i < len(daily); i++ {
		assert.True(t, daily[i-1].Date.Before(daily[i].Date.Time))
	}
}

func TestSummaryMatchesDailyTotals(t *testing.T) {
	txs := juneSales()
	s := Summarize(txs)
	assert.True(t, s.TotalRevenue.Equal(sumDaily(DailyTotals(txs))))
	assert.True(t, s.TotalRevenue.Equal(decimal.NewFromInt(560)))
	assert.Equal(t, 6, s.Invoices)
	assert.LessOrEqual(t, s.Invoices, s.Rows)
	assert.Equal(t, "2025-06-01", s.From.Key())
	assert.Equal(t, "2025-06-30", s.To.Key())
}

func TestMovingAverageCentered(t *testing.T) {
	values := make([]decimal.Decimal, 10)
	for i := range values {
		values[i] = decimal.NewFromInt(int64(i + 1))
	}
	avg := MovingAverage(values, 7)
	require.Len(t, avg, 10)
	assert.True(t, avg[0].Equal(decimal.RequireFromString("2.5")), "got %s", avg[0])
	assert.True(t, avg[3].Equal(decimal.NewFromInt(4)), "got %s", avg[3])
	assert.True(t, avg[9].Equal(decimal.RequireFromString("8.5")), "got %s", avg[9])

	single := MovingAverage([]decimal.Decimal{decimal.NewFromInt(42)}, 7)
	assert.True(t, single[0].Equal(decimal.NewFromInt(42)))
	assert.Empty(t, MovingAverage(nil, 7))
}

func TestAnnotateTrend(t *testing.T) {
	daily := []core.DailyPoint{
		{Date: core.NewDate(2025, 6, 18), Total: decimal.NewFromInt(100)},
		{Date: core.NewDate(2025, 6, 19), Total: decimal.NewFromInt(100)},
		{Date: core.NewDate(2025, 6, 20), Total: decimal.NewFromInt(100)},
		{Date: core.NewDate(2025, 6, 21), Total: decimal.NewFromInt(10)},
	}
	holidays := []core.Date{core.NewDate(2025, 6, 20), core.NewDate(2025, 7, 9)}

	inRange := AnnotateTrend(daily, 7, 0.5, holidays)

	require.Len(t, inRange, 1)
	assert.Equal(t, "2025-06-20", inRange[0].Key())
	assert.True(t, daily[2].Holiday)
	assert.False(t, daily[0].Holiday)
	assert.True(t, daily[3].LowSales)
	assert.False(t, daily[0].LowSales)
	assert.True(t, daily[0].MovingAverage.Equal(decimal.RequireFromString("77.5")))
}

func TestWeekdayPeriodHeatmap(t *testing.T) {
	hm := WeekdayPeriodHeatmap(DailyTotals(juneSales()))

	assert.Equal(t, []string{"Lun", "Mar", "Mié", "Jue", "Vie", "Sáb"}, hm.Weekdays)
	assert.Equal(t, []string{"1-10", "11-20", "21-fin"}, hm.Bands)
	require.Len(t, hm.Cells, 6)

	// Mondays 2 and 9 June: 100 and 300.
	monday := hm.Cells[0][0]
	assert.Equal(t, 2, monday.Days)
	assert.True(t, monday.Mean.Equal(decimal.NewFromInt(200)))
	// Monday 30 June.
	assert.Equal(t, 1, hm.Cells[0][2].Days)
	// Friday 20 June.
	assert.Equal(t, 1, hm.Cells[4][1].Days)
	assert.True(t, hm.Cells[4][1].Mean.Equal(decimal.NewFromInt(60)))
	// Nothing sold on Tuesdays.
	assert.Equal(t, 0, hm.Cells[1][0].Days)

	days := 0
	for _, row := range hm.Cells {
		for _, c := range row {
			days += c.Days
		}
	}
	assert.Equal(t, 4, days, "sunday 1 June must be left out")
}

func TestWeekdayAverages(t *testing.T) {
	avgs := WeekdayAverages(DailyTotals(juneSales()))
	require.Len(t, avgs, 7)
	assert.Equal(t, "Lunes", avgs[0].Label)
	assert.Equal(t, 3, avgs[0].Days)
	assert.True(t, avgs[0].Mean.Equal(decimal.NewFromInt(150)), "got %s", avgs[0].Mean)
	assert.Equal(t, "Domingo", avgs[6].Label)
	assert.Equal(t, 1, avgs[6].Days)
	assert.Equal(t, 0, avgs[1].Days)
	assert.True(t, avgs[1].Mean.IsZero())
}

func TestBuild(t *testing.T) {
	d, err := Build(juneSales(), core.MonthFilter("2025-06"), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "mes:2025-06", d.Filter.Key())
	assert.LessOrEqual(t, len(d.TopByQuantity), 10)
	assert.LessOrEqual(t, len(d.TopByRevenue), 10)
	assert.True(t, d.Summary.TotalRevenue.Equal(sumDaily(d.Daily)))
	require.Len(t, d.Holidays, 1)
	assert.Equal(t, "2025-06-20", d.Holidays[0].Key())
	assert.Len(t, d.WeekdayAverages, 7)
}

func TestBuildHaltsOnWarnings(t *testing.T) {
	_, err := Build(juneSales(), core.RangeFilter(core.NewDate(2025, 6, 2)), DefaultOptions())
	assert.True(t, errors.Is(err, core.ErrIncompleteRange))
	assert.True(t, core.IsWarning(err))

	_, err = Build(juneSales(), core.MonthFilter("2025-01"), DefaultOptions())
	assert.True(t, errors.Is(err, core.ErrNoData))
}
