package cache

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"ventas/internal/core"
	"ventas/internal/sources"
)

// DatasetReader serves the transaction table from memory for up to ttl.
// A zero ttl disables caching so every call reaches the source.
// Concurrent misses for the same key share one load.
type DatasetReader struct {
	source sources.TransactionReader
	key    string
	cache  *LRUCache[[]core.Transaction]
	group  singleflight.Group
}

var _ sources.TransactionReader = (*DatasetReader)(nil)

func NewDatasetReader(source sources.TransactionReader, key string, ttl time.Duration) *DatasetReader {
	r := &DatasetReader{source: source, key: key}
	if ttl > 0 {
		r.cache = NewLRUCache[[]core.Transaction](1, ttl)
	}
	return r
}

// Cleaner exposes the underlying cache for a Manager, or nil when caching is off.
func (r *DatasetReader) Cleaner() Cleaner {
	if r.cache == nil {
		return nil
	}
	return r.cache
}

func (r *DatasetReader) ReadTransactions(ctx context.Context) ([]core.Transaction, error) {
	if r.cache == nil {
		return r.source.ReadTransactions(ctx)
	}
	if txs, ok := r.cache.Get(r.key); ok {
		return txs, nil
	}

	v, err, shared := r.group.Do(r.key, func() (interface{}, error) {
		txs, err := r.source.ReadTransactions(ctx)
		if err != nil {
			return nil, err
		}
		r.cache.Set(r.key, txs)
		return txs, nil
	})
	if err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "Dataset loaded", "key", r.key, "shared", shared)
	return v.([]core.Transaction), nil
}

// Invalidate drops the cached dataset so the next read reloads it.
func (r *DatasetReader) Invalidate() {
	if r.cache != nil {
		r.cache.Purge()
	}
	r.group.Forget(r.key)
}
