package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ventas/internal/core"
	"ventas/internal/sources"

	_ "modernc.org/sqlite"
)

// ErrBatchNotFound is returned when deleting an unknown import batch.
var ErrBatchNotFound = errors.New("import batch not found")

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var (
	_ sources.TransactionReader   = (*SQLiteRepository)(nil)
	_ sources.TransactionImporter = (*SQLiteRepository)(nil)
)

// ImportBatch describes one stored import.
type ImportBatch struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Rows       int64     `json:"rows"`
	ImportedAt time.Time `json:"imported_at"`
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ImportTransactions implements sources.TransactionImporter.
func (r *SQLiteRepository) ImportTransactions(ctx context.Context, batchID string, txs []core.Transaction) (int, error) {
	return r.ImportBatch(ctx, batchID, "", txs)
}

// ImportBatch stores txs under batchID in a single database transaction.
// Either the whole batch is stored or nothing is.
func (r *SQLiteRepository) ImportBatch(ctx context.Context, batchID, source string, txs []core.Transaction) (int, error) {
	if _, err := uuid.Parse(batchID); err != nil {
		return 0, fmt.Errorf("invalid batch id %q: %w", batchID, err)
	}
	for i, t := range txs {
		if err := t.Validate(); err != nil {
			return 0, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer dbtx.Rollback()

	q := r.queries.WithTx(dbtx)
	if err := q.CreateImportBatch(ctx, batchID, source, int64(len(txs))); err != nil {
		return 0, fmt.Errorf("create import batch: %w", err)
	}
	for i, t := range txs {
		err := q.InsertTransaction(ctx, InsertTransactionParams{
			BatchID:     batchID,
			SaleDate:    t.Date.Key(),
			Description: t.Description,
			Quantity:    t.Quantity,
			Total:       t.Total.String(),
			Invoice:     t.Invoice,
		})
		if err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}
	if err := dbtx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}

	slog.InfoContext(ctx, "Import batch stored",
		"batch_id", batchID,
		"source", source,
		"rows", len(txs))
	return len(txs), nil
}

// ReadTransactions implements sources.TransactionReader.
func (r *SQLiteRepository) ReadTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := toCoreTransaction(row)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", row.ID, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// ListBatches returns stored imports, newest first.
func (r *SQLiteRepository) ListBatches(ctx context.Context) ([]ImportBatch, error) {
	rows, err := r.queries.ListImportBatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list import batches: %w", err)
	}
	out := make([]ImportBatch, 0, len(rows))
	for _, b := range rows {
		out = append(out, ImportBatch{ID: b.ID, Source: b.Source, Rows: b.RowCount, ImportedAt: b.ImportedAt})
	}
	return out, nil
}

// DeleteBatch removes an import and its rows.
func (r *SQLiteRepository) DeleteBatch(ctx context.Context, batchID string) error {
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer dbtx.Rollback()

	q := r.queries.WithTx(dbtx)
	if err := q.DeleteBatchTransactions(ctx, batchID); err != nil {
		return fmt.Errorf("delete batch rows: %w", err)
	}
	n, err := q.DeleteImportBatch(ctx, batchID)
	if err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrBatchNotFound, batchID)
	}
	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	slog.InfoContext(ctx, "Import batch deleted", "batch_id", batchID)
	return nil
}

func toCoreTransaction(row TransactionRow) (core.Transaction, error) {
	d, err := core.ParseDate(row.SaleDate)
	if err != nil {
		return core.Transaction{}, err
	}
	total, err := decimal.NewFromString(row.Total)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %s", core.ErrInvalidAmount, row.Total)
	}
	return core.Transaction{
		Date:        d,
		Description: row.Description,
		Quantity:    row.Quantity,
		Total:       total,
		Invoice:     row.Invoice,
	}, nil
}
