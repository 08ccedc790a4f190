package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductQuantity is a product with its summed quantity.
type ProductQuantity struct {
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
}

// ProductRevenue is a product with its summed line totals.
type ProductRevenue struct {
	Description string          `json:"description"`
	Total       decimal.Decimal `json:"total"`
}

// DailyPoint is one date of the daily sales trend.
type DailyPoint struct {
	Date          Date            `json:"date"`
	Weekday       time.Weekday    `json:"weekday"`
	Total         decimal.Decimal `json:"total"`
	MovingAverage decimal.Decimal `json:"moving_average"`
	Holiday       bool            `json:"holiday"`
	LowSales      bool            `json:"low_sales"`
}

// HeatCell is the mean daily revenue of one weekday × band cell.
// Days is zero for cells with no sales, which are rendered blank.
type HeatCell struct {
	Mean decimal.Decimal `json:"mean"`
	Days int             `json:"days"`
}

// Heatmap pivots mean daily revenue by weekday (rows) and month-third band (columns).
type Heatmap struct {
	Weekdays []string     `json:"weekdays"`
	Bands    []string     `json:"bands"`
	Cells    [][]HeatCell `json:"cells"`
}

// WeekdayAverage is the mean daily revenue of one weekday.
type WeekdayAverage struct {
	Weekday time.Weekday    `json:"weekday"`
	Label   string          `json:"label"`
	Mean    decimal.Decimal `json:"mean"`
	Days    int             `json:"days"`
}

// Summary holds the whole-period counters.
type Summary struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	Invoices     int             `json:"invoices"`
	Rows         int             `json:"rows"`
	From         Date            `json:"from"`
	To           Date            `json:"to"`
}

// Dashboard is every derived view computed from one filtered set.
type Dashboard struct {
	Filter          Filter            `json:"filter"`
	TopByQuantity   []ProductQuantity `json:"top_by_quantity"`
	TopByRevenue    []ProductRevenue  `json:"top_by_revenue"`
	Daily           []DailyPoint      `json:"daily"`
	Heatmap         Heatmap           `json:"heatmap"`
	WeekdayAverages []WeekdayAverage  `json:"weekday_averages"`
	Summary         Summary           `json:"summary"`
	Holidays        []Date            `json:"holidays"`
}

// Month-third band labels.
var BandLabels = []string{"1-10", "11-20", "21-fin"}

// BandOf returns the month-third band index (0, 1, 2) of a day of month.
func BandOf(day int) int {
	switch {
	case day <= 10:
		return 0
	case day <= 20:
		return 1
	default:
		return 2
	}
}

// HeatmapWeekdays lists the heatmap rows; Sunday is excluded.
var HeatmapWeekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday,
}

// WeekOrder lists all weekdays starting on Monday.
var WeekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

var weekdayShort = map[time.Weekday]string{
	time.Monday:    "Lun",
	time.Tuesday:   "Mar",
	time.Wednesday: "Mié",
	time.Thursday:  "Jue",
	time.Friday:    "Vie",
	time.Saturday:  "Sáb",
	time.Sunday:    "Dom",
}

var weekdayLong = map[time.Weekday]string{
	time.Monday:    "Lunes",
	time.Tuesday:   "Martes",
	time.Wednesday: "Miércoles",
	time.Thursday:  "Jueves",
	time.Friday:    "Viernes",
	time.Saturday:  "Sábado",
	time.Sunday:    "Domingo",
}

// WeekdayShort returns the Spanish abbreviation of a weekday ("Lun").
func WeekdayShort(w time.Weekday) string {
	return weekdayShort[w]
}

// WeekdayLong returns the Spanish name of a weekday ("Lunes").
func WeekdayLong(w time.Weekday) string {
	return weekdayLong[w]
}
