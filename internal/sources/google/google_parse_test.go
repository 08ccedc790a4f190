package google

import (
	"errors"
	"testing"

	"ventas/internal/core"
)

func TestParseValues(t *testing.T) {
	vals := [][]interface{}{
		{"Fecha", "Descripción", "Cantidad", "Total", "Factura"},
		{"2025-06-02", "Miel", 2, "$1,500.00", "F-1"},
		{"", "", "", "", ""},
		{"03/06/2025", "Granola", "1", 850.5, "F-2"},
		{"2025-06-04", "Café", "3", "$12,345", "F-3"},
	}
	txs, err := parseValues(vals)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(txs))
	}
	if txs[0].Quantity != 2 || txs[0].Total.String() != "1500" {
		t.Fatalf("unexpected first row: %+v", txs[0])
	}
	if txs[1].Date.Key() != "2025-06-03" {
		t.Fatalf("unexpected date: %s", txs[1].Date.Key())
	}
	if txs[2].Total.String() != "12345" {
		t.Fatalf("grouped total read as %s, want 12345", txs[2].Total)
	}
}

func TestParseValuesErrors(t *testing.T) {
	cases := []struct {
		name string
		in   [][]interface{}
		want error
	}{
		{"empty", nil, core.ErrMissingColumn},
		{"missing column", [][]interface{}{{"Fecha", "Total"}}, core.ErrMissingColumn},
		{"bad amount", [][]interface{}{
			{"Fecha", "Descripcion", "Cantidad", "Total", "Factura"},
			{"2025-06-02", "Miel", 1, "mucho", "F-1"},
		}, core.ErrInvalidAmount},
		{"blank invoice", [][]interface{}{
			{"Fecha", "Descripcion", "Cantidad", "Total", "Factura"},
			{"2025-06-02", "Miel", 1, "10"},
		}, core.ErrEmptyInvoice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseValues(tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
