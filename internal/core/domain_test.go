package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{"2025-06-03", NewDate(2025, 6, 3), false},
		{"2025-06-03 14:22:10", NewDate(2025, 6, 3), false},
		{"03/06/2025", NewDate(2025, 6, 3), false},
		{"06/05/2025", NewDate(2025, 5, 6), false},
		{"6/5/2025", NewDate(2025, 5, 6), false},
		{" 2025/06/03 ", NewDate(2025, 6, 3), false},
		{"", Date{}, true},
		{"junio", Date{}, true},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidDate) {
				t.Errorf("ParseDate(%q) err=%v, want ErrInvalidDate", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseDate(%q) unexpected err: %v", tt.in, err)
		}
		if !got.Equal(tt.want.Time) {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got.Key(), tt.want.Key())
		}
	}
}

func TestParseMonth(t *testing.T) {
	d, err := ParseMonth("2025-06")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if d.Key() != "2025-06-01" {
		t.Fatalf("got %s", d.Key())
	}
	for _, bad := range []string{"", "2025-6-1", "2025/06", "junio", "2025-13"} {
		if _, err := ParseMonth(bad); !errors.Is(err, ErrInvalidMonth) {
			t.Errorf("ParseMonth(%q) err=%v, want ErrInvalidMonth", bad, err)
		}
	}
}

func TestFilterKey(t *testing.T) {
	if got := MonthFilter(" 2025-06 ").Key(); got != "mes:2025-06" {
		t.Errorf("month key = %q", got)
	}
	f := RangeFilter(NewDate(2025, 6, 1), NewDate(2025, 6, 30))
	if got := f.Key(); got != "rango:2025-06-01..2025-06-30" {
		t.Errorf("range key = %q", got)
	}
}

func TestIsWarning(t *testing.T) {
	if !IsWarning(fmt.Errorf("build: %w", ErrNoData)) {
		t.Error("wrapped ErrNoData should be a warning")
	}
	if !IsWarning(ErrIncompleteRange) {
		t.Error("ErrIncompleteRange should be a warning")
	}
	if IsWarning(ErrInvalidMonth) {
		t.Error("ErrInvalidMonth should not be a warning")
	}
}

func TestTransactionValidate(t *testing.T) {
	tx := Transaction{Date: NewDate(2025, 6, 1), Description: "Té", Quantity: 1, Total: decimal.NewFromInt(10), Invoice: "F-1"}
	if err := tx.Validate(); err != nil {
		t.Fatalf("valid transaction: %v", err)
	}
	tx.Invoice = " "
	if err := tx.Validate(); !errors.Is(err, ErrEmptyInvoice) {
		t.Fatalf("err=%v, want ErrEmptyInvoice", err)
	}
	tx.Invoice = "F-1"
	tx.Date = Date{}
	if err := tx.Validate(); err == nil {
		t.Fatal("zero date should fail")
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2025, 6, 20))
	if err != nil || string(b) != `"2025-06-20"` {
		t.Fatalf("marshal = %s, %v", b, err)
	}
	var d Date
	if err := json.Unmarshal([]byte(`"20/06/2025"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Key() != "2025-06-20" {
		t.Fatalf("unmarshal got %s", d.Key())
	}
}

func TestBandOf(t *testing.T) {
	cases := map[int]int{1: 0, 10: 0, 11: 1, 20: 1, 21: 2, 31: 2}
	for day, want := range cases {
		if got := BandOf(day); got != want {
			t.Errorf("BandOf(%d) = %d, want %d", day, got, want)
		}
	}
}

func TestWeekdayLabels(t *testing.T) {
	if WeekdayShort(time.Wednesday) != "Mié" || WeekdayLong(time.Saturday) != "Sábado" {
		t.Fatal("unexpected weekday labels")
	}
	if len(HeatmapWeekdays) != 6 {
		t.Fatalf("heatmap rows = %d, want 6", len(HeatmapWeekdays))
	}
	for _, w := range HeatmapWeekdays {
		if w == time.Sunday {
			t.Fatal("Sunday must not be a heatmap row")
		}
	}
}

func TestParseHolidays(t *testing.T) {
	def, err := ParseHolidays("")
	if err != nil || len(def) != len(DefaultHolidays) {
		t.Fatalf("defaults: %v %v", def, err)
	}
	got, err := ParseHolidays("2025-12-25, 2026-01-01,")
	if err != nil || len(got) != 2 || got[1].Key() != "2026-01-01" {
		t.Fatalf("got %v err %v", got, err)
	}
	if _, err := ParseHolidays("2025-12-25,navidad"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("err=%v, want ErrInvalidDate", err)
	}
}
