// Package http provides HTTP server and handler implementations.
//
// This file turns dashboard query strings into core.Filter values and back.

package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"ventas/internal/core"
)

// Query parameter names shared by the form, the partial and the image URL.
const (
	paramMode  = "mode"
	paramMonth = "month"
	paramStart = "start"
	paramEnd   = "end"
	paramDate  = "date"
)

// ParseFilter reads the dashboard filter from query values.
//
// mode defaults to "mes" and month to defaultMonth. In range mode the dates
// come from start and end, or from repeated date values as sent by a range
// picker. Missing dates are not an error here: the pipeline reports
// core.ErrIncompleteRange for them. Malformed tokens are.
func ParseFilter(q url.Values, defaultMonth string) (core.Filter, error) {
	mode := core.FilterMode(strings.ToLower(sanitizeInput(q.Get(paramMode))))
	if mode == "" {
		mode = core.MonthMode
	}

	switch mode {
	case core.MonthMode:
		month := sanitizeInput(q.Get(paramMonth))
		if month == "" {
			month = defaultMonth
		}
		if _, err := core.ParseMonth(month); err != nil {
			return core.Filter{}, fmt.Errorf("month %q: %w", month, err)
		}
		return core.MonthFilter(month), nil

	case core.RangeMode:
		raw := append([]string{q.Get(paramStart), q.Get(paramEnd)}, q[paramDate]...)
		var dates []core.Date
		for _, v := range raw {
			v = sanitizeInput(v)
			if v == "" {
				continue
			}
			d, err := core.ParseDate(v)
			if err != nil {
				return core.Filter{}, fmt.Errorf("date %q: %w", v, err)
			}
			dates = append(dates, d)
		}
		return core.RangeFilter(dates...), nil

	default:
		return core.Filter{}, fmt.Errorf("%w: %q", core.ErrInvalidMode, mode)
	}
}

// FilterQuery is the inverse of ParseFilter.
func FilterQuery(f core.Filter) url.Values {
	q := url.Values{}
	q.Set(paramMode, string(f.Mode))
	switch f.Mode {
	case core.MonthMode:
		q.Set(paramMonth, f.Month)
	case core.RangeMode:
		if len(f.Dates) > 0 {
			q.Set(paramStart, f.Dates[0].Key())
		}
		if len(f.Dates) > 1 {
			q.Set(paramEnd, f.Dates[len(f.Dates)-1].Key())
		}
	}
	return q
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequireGET is a convenience function for read-only handlers.
func RequireGET(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}
