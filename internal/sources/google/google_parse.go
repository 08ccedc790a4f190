package google

import (
	"fmt"
	"strings"

	"ventas/internal/core"
	"ventas/internal/sources"
)

// parseValues converts a values matrix as returned by the Sheets API.
// The first row is the header; blank rows are skipped.
func parseValues(values [][]interface{}) ([]core.Transaction, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: empty sheet", core.ErrMissingColumn)
	}
	dec, err := sources.NewRowDecoder(toStrings(values[0]))
	if err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if sources.IsBlank(row) {
			continue
		}
		tx, err := dec.Decode(row)
		if err != nil {
			// sheet rows are 1-based
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, tx)
	}
	return out, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
