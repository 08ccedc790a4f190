package core

import (
	"fmt"
	"strings"
)

// DefaultHolidays are the public holidays annotated on the daily trend when
// no HOLIDAYS list is configured.
var DefaultHolidays = []Date{
	NewDate(2025, 3, 3),
	NewDate(2025, 3, 4),
	NewDate(2025, 3, 24),
	NewDate(2025, 4, 2),
	NewDate(2025, 4, 18),
	NewDate(2025, 5, 1),
	NewDate(2025, 5, 25),
	NewDate(2025, 6, 20),
	NewDate(2025, 7, 9),
}

// ParseHolidays parses a comma-separated list of dates. An empty list
// yields the default holidays.
func ParseHolidays(list string) ([]Date, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return append([]Date(nil), DefaultHolidays...), nil
	}
	var out []Date
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := ParseDate(part)
		if err != nil {
			return nil, fmt.Errorf("holiday %q: %w", part, err)
		}
		out = append(out, d)
	}
	return out, nil
}
