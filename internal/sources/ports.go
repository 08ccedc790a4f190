package sources

import (
	"context"

	"ventas/internal/core"
)

// Ports for transaction sources.
type (
	// TransactionReader loads the whole transaction table.
	TransactionReader interface {
		ReadTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	// TransactionImporter stores a batch of transactions and returns how many were written.
	TransactionImporter interface {
		ImportTransactions(ctx context.Context, batchID string, txs []core.Transaction) (int, error)
	}
)
