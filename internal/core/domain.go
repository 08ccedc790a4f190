package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MonthMode FilterMode = "mes"
	RangeMode FilterMode = "rango"

	// MonthLayout is the layout of a year-month token ("2025-06").
	MonthLayout = "2006-01"
	// DateLayout is the canonical layout of a calendar date.
	DateLayout = "2006-01-02"
)

type (
	FilterMode string

	// Date is a calendar date at UTC midnight.
	Date struct {
		time.Time
	}

	// Transaction is one point-of-sale line.
	Transaction struct {
		Date        Date
		Description string
		Quantity    int64
		Total       decimal.Decimal
		Invoice     string
	}

	// Filter selects the subset of transactions a dashboard is built from.
	// In month mode only Month is used; in range mode Dates must hold the
	// start and end of the inclusive range.
	Filter struct {
		Mode  FilterMode
		Month string
		Dates []Date
	}
)

var (
	// ErrNoData is returned when the filter leaves no transactions.
	ErrNoData = errors.New("no hay datos para el mes o rango seleccionado")
	// ErrIncompleteRange is returned when range mode has fewer than two dates.
	ErrIncompleteRange = errors.New("selecciona un rango de dos fechas")

	ErrInvalidMonth    = errors.New("invalid month token")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidMode     = errors.New("invalid filter mode")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrMissingColumn   = errors.New("missing column")
	ErrEmptyInvoice    = errors.New("empty invoice id")
)

// dateLayouts are tried in order when parsing dates coming from files.
var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2/1/2006",
	"2006/01/02",
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a date in any of the accepted layouts. Times of day are dropped.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, ErrInvalidDate
}

// Key returns the date formatted as YYYY-MM-DD.
func (d Date) Key() string {
	return d.Format(DateLayout)
}

// MonthKey returns the year-month token the date belongs to.
func (d Date) MonthKey() string {
	return d.Format(MonthLayout)
}

// IsEmpty returns true if the date is zero
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Invoice) == "" {
		return ErrEmptyInvoice
	}
	return nil
}

// IsValid returns true if the mode is a known filter mode.
func (m FilterMode) IsValid() bool {
	switch m {
	case MonthMode, RangeMode:
		return true
	default:
		return false
	}
}

// MonthFilter builds a month-mode filter.
func MonthFilter(token string) Filter {
	return Filter{Mode: MonthMode, Month: strings.TrimSpace(token)}
}

// RangeFilter builds a range-mode filter from whatever dates the user picked.
func RangeFilter(dates ...Date) Filter {
	return Filter{Mode: RangeMode, Dates: dates}
}

// ParseMonth parses a YYYY-MM token and returns the first day of that month.
func ParseMonth(token string) (Date, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(token))
	if err != nil {
		return Date{}, ErrInvalidMonth
	}
	return DateOf(t), nil
}

// Key identifies the filter, e.g. "mes:2025-06" or "rango:2025-06-01..2025-06-30".
func (f Filter) Key() string {
	if f.Mode == MonthMode {
		return string(f.Mode) + ":" + f.Month
	}
	parts := make([]string, len(f.Dates))
	for i, d := range f.Dates {
		parts[i] = d.Key()
	}
	return string(f.Mode) + ":" + strings.Join(parts, "..")
}

// IsWarning reports whether err is one of the conditions shown to the user
// as a warning rather than a failure.
func IsWarning(err error) bool {
	return errors.Is(err, ErrNoData) || errors.Is(err, ErrIncompleteRange)
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Key() + `"`), nil
}

// UnmarshalJSON accepts any layout ParseDate understands.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
