package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"ventas/internal/amqp"
	"ventas/internal/core"
	"ventas/internal/storage"
)

// EventPublisher publishes dataset change notifications.
type EventPublisher interface {
	PublishDatasetEvent(ctx context.Context, msg *amqp.DatasetEvent) error
	Close() error
}

// BatchStore persists import batches.
type BatchStore interface {
	ImportBatch(ctx context.Context, batchID, source string, txs []core.Transaction) (int, error)
	ListBatches(ctx context.Context) ([]storage.ImportBatch, error)
	DeleteBatch(ctx context.Context, batchID string) error
	Close() error
}

// ImportResult describes a stored batch.
type ImportResult struct {
	BatchID uuid.UUID
	Rows    int
}

// ImportService stores transaction batches in SQLite and announces them over AMQP.
type ImportService struct {
	store     BatchStore
	publisher EventPublisher
}

// NewImportService creates the service. publisher may be nil when AMQP is not configured.
func NewImportService(store BatchStore, publisher EventPublisher) *ImportService {
	return &ImportService{
		store:     store,
		publisher: publisher,
	}
}

// Import stores txs under a new batch id and publishes dataset.imported.
func (s *ImportService) Import(ctx context.Context, source string, txs []core.Transaction) (ImportResult, error) {
	id := uuid.New()

	// Save to SQLite first; the event is only a cache hint
	n, err := s.store.ImportBatch(ctx, id.String(), source, txs)
	if err != nil {
		return ImportResult{}, fmt.Errorf("store batch: %w", err)
	}

	if err := s.publish(ctx, amqp.NewDatasetImported(id, source, n)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish dataset event",
			"batch_id", id, "error", err)
	}

	return ImportResult{BatchID: id, Rows: n}, nil
}

// Batches lists stored import batches, newest first.
func (s *ImportService) Batches(ctx context.Context) ([]storage.ImportBatch, error) {
	return s.store.ListBatches(ctx)
}

// Delete removes a batch and its transactions and publishes dataset.deleted.
func (s *ImportService) Delete(ctx context.Context, batchID string) error {
	id, err := uuid.Parse(batchID)
	if err != nil {
		return fmt.Errorf("invalid batch id %q: %w", batchID, err)
	}
	if err := s.store.DeleteBatch(ctx, id.String()); err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}

	if err := s.publish(ctx, amqp.NewDatasetDeleted(id)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish dataset event",
			"batch_id", id, "error", err)
	}
	return nil
}

func (s *ImportService) publish(ctx context.Context, msg *amqp.DatasetEvent) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP not configured, skipping dataset event", "kind", msg.Kind)
		return nil
	}
	return s.publisher.PublishDatasetEvent(ctx, msg)
}

// Close closes both storage and AMQP connections
func (s *ImportService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close import service: %v", errs)
	}

	return nil
}
