// Package csvfile loads transactions from a POS export in CSV format.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"ventas/internal/core"
	"ventas/internal/sources"
)

// Loader reads a CSV file on every call so the dashboard sees edits to the
// file without a restart.
type Loader struct {
	path  string
	comma rune
}

var _ sources.TransactionReader = (*Loader)(nil)

type Option func(*Loader)

// WithComma sets the field delimiter. The default is ','.
func WithComma(r rune) Option {
	return func(l *Loader) { l.comma = r }
}

func New(path string, opts ...Option) *Loader {
	l := &Loader{path: path, comma: ','}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *Loader) Path() string { return l.path }

func (l *Loader) ReadTransactions(ctx context.Context) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open sales file: %w", err)
	}
	defer f.Close()

	txs, err := Parse(ctx, f, l.comma)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}
	return txs, nil
}

// Parse decodes a CSV stream whose first record is the header.
func Parse(ctx context.Context, r io.Reader, comma rune) ([]core.Transaction, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", core.ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	dec, err := sources.NewRowDecoder(header)
	if err != nil {
		return nil, err
	}

	var out []core.Transaction
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if sources.IsBlank(rec) {
			continue
		}
		tx, err := dec.Decode(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, tx)
	}
	return out, nil
}
