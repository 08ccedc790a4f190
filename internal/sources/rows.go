// Package sources defines where transactions come from and decodes the
// tabular layout shared by every source.
//
// A table has a header row naming at least the Fecha, Descripcion,
// Cantidad, Total and Factura columns, in any order. Header matching ignores
// case, surrounding blanks and Spanish accents.
package sources

import (
	"fmt"
	"strings"

	"ventas/internal/core"
)

// Column names of the transaction table.
const (
	ColDate        = "Fecha"
	ColDescription = "Descripcion"
	ColQuantity    = "Cantidad"
	ColTotal       = "Total"
	ColInvoice     = "Factura"
)

// RequiredColumns lists the columns every source must provide.
var RequiredColumns = []string{ColDate, ColDescription, ColQuantity, ColTotal, ColInvoice}

var accentFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
	"\ufeff", "",
)

// normalizeHeader folds a header cell for lookup.
func normalizeHeader(h string) string {
	return accentFolder.Replace(strings.ToLower(strings.TrimSpace(h)))
}

// RowDecoder maps data rows onto transactions using a header row.
type RowDecoder struct {
	index map[string]int
}

// NewRowDecoder builds a decoder from a header row. It fails with
// core.ErrMissingColumn when a required column is absent.
func NewRowDecoder(header []string) (*RowDecoder, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, dup := byName[key]; !dup {
			byName[key] = i
		}
	}

	d := &RowDecoder{index: make(map[string]int, len(RequiredColumns))}
	var missing []string
	for _, col := range RequiredColumns {
		i, ok := byName[normalizeHeader(col)]
		if !ok {
			missing = append(missing, col)
			continue
		}
		d.index[col] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrMissingColumn, strings.Join(missing, ", "))
	}
	return d, nil
}

// Decode converts one data row. A row without an invoice id fails with
// core.ErrEmptyInvoice.
func (d *RowDecoder) Decode(row []string) (core.Transaction, error) {
	date, err := core.ParseDate(d.cell(row, ColDate))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%s %q: %w", ColDate, d.cell(row, ColDate), err)
	}
	qty, err := core.ParseQuantity(d.cell(row, ColQuantity))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%s %q: %w", ColQuantity, d.cell(row, ColQuantity), err)
	}
	total, err := core.ParseAmount(d.cell(row, ColTotal))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%s %q: %w", ColTotal, d.cell(row, ColTotal), err)
	}
	tx := core.Transaction{
		Date:        date,
		Description: d.cell(row, ColDescription),
		Quantity:    qty,
		Total:       total,
		Invoice:     d.cell(row, ColInvoice),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("%s: %w", ColInvoice, err)
	}
	return tx, nil
}

func (d *RowDecoder) cell(row []string, col string) string {
	i := d.index[col]
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// IsBlank reports whether every cell of row is empty.
func IsBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
