package storage

import (
	"context"
	"database/sql"
	"time"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type TransactionRow struct {
	ID          int64
	BatchID     string
	SaleDate    string
	Description string
	Quantity    int64
	Total       string
	Invoice     string
}

type ImportBatchRow struct {
	ID         string
	Source     string
	RowCount   int64
	ImportedAt time.Time
}

const createImportBatch = `-- name: CreateImportBatch :exec
INSERT INTO import_batches (id, source, row_count) VALUES (?, ?, ?)
`

func (q *Queries) CreateImportBatch(ctx context.Context, id, source string, rowCount int64) error {
	_, err := q.db.ExecContext(ctx, createImportBatch, id, source, rowCount)
	return err
}

const insertTransaction = `-- name: InsertTransaction :exec
INSERT INTO transactions (batch_id, sale_date, description, quantity, total, invoice)
VALUES (?, ?, ?, ?, ?, ?)
`

type InsertTransactionParams struct {
	BatchID     string
	SaleDate    string
	Description string
	Quantity    int64
	Total       string
	Invoice     string
}

func (q *Queries) InsertTransaction(ctx context.Context, arg InsertTransactionParams) error {
	_, err := q.db.ExecContext(ctx, insertTransaction,
		arg.BatchID, arg.SaleDate, arg.Description, arg.Quantity, arg.Total, arg.Invoice)
	return err
}

const listTransactions = `-- name: ListTransactions :many
SELECT id, batch_id, sale_date, description, quantity, total, invoice
FROM transactions
ORDER BY sale_date, id
`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(&i.ID, &i.BatchID, &i.SaleDate, &i.Description, &i.Quantity, &i.Total, &i.Invoice); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listImportBatches = `-- name: ListImportBatches :many
SELECT id, source, row_count, CAST(strftime('%s', imported_at) AS INTEGER) FROM import_batches ORDER BY imported_at DESC, id
`

func (q *Queries) ListImportBatches(ctx context.Context) ([]ImportBatchRow, error) {
	rows, err := q.db.QueryContext(ctx, listImportBatches)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ImportBatchRow
	for rows.Next() {
		var i ImportBatchRow
		var unix int64
		if err := rows.Scan(&i.ID, &i.Source, &i.RowCount, &unix); err != nil {
			return nil, err
		}
		i.ImportedAt = time.Unix(unix, 0).UTC()
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteBatchTransactions = `-- name: DeleteBatchTransactions :exec
DELETE FROM transactions WHERE batch_id = ?
`

func (q *Queries) DeleteBatchTransactions(ctx context.Context, batchID string) error {
	_, err := q.db.ExecContext(ctx, deleteBatchTransactions, batchID)
	return err
}

const deleteImportBatch = `-- name: DeleteImportBatch :execrows
DELETE FROM import_batches WHERE id = ?
`

func (q *Queries) DeleteImportBatch(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteImportBatch, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
