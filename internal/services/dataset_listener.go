package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"ventas/internal/amqp"
)

// EventConsumer delivers dataset events until ctx is done.
type EventConsumer interface {
	ConsumeDatasetEvents(ctx context.Context, handler func(context.Context, *amqp.DatasetEvent) error) error
}

// Invalidator drops cached data.
type Invalidator interface {
	Invalidate()
}

// DatasetListener invalidates dataset caches when an import or deletion is
// announced, so dashboards pick up new data before the TTL runs out.
type DatasetListener struct {
	consumer EventConsumer
	targets  []Invalidator

	// Lifecycle management
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	doneCh  chan struct{}
}

func NewDatasetListener(consumer EventConsumer, targets ...Invalidator) *DatasetListener {
	return &DatasetListener{
		consumer: consumer,
		targets:  targets,
	}
}

// Start begins consuming in the background. Returns an error if already running.
func (l *DatasetListener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return fmt.Errorf("dataset listener is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	l.running = true
	l.cancel = cancel
	l.doneCh = make(chan struct{})

	go l.run(runCtx, l.doneCh)

	slog.InfoContext(ctx, "Dataset listener started", "targets", len(l.targets))
	return nil
}

func (l *DatasetListener) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	err := l.consumer.ConsumeDatasetEvents(ctx, l.Handle)
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.ErrorContext(ctx, "Dataset listener stopped", "error", err)
	}
	l.mu.Lock()
	l.running = false
	l.mu.Unlock()
}

// Handle invalidates every target. It is the consumer callback.
func (l *DatasetListener) Handle(ctx context.Context, msg *amqp.DatasetEvent) error {
	for _, t := range l.targets {
		t.Invalidate()
	}
	slog.InfoContext(ctx, "Dataset cache invalidated",
		"kind", msg.Kind,
		"batch_id", msg.BatchID,
		"rows", msg.Rows)
	return nil
}

// Stop cancels consumption and waits for the loop to exit.
func (l *DatasetListener) Stop(ctx context.Context) error {
	l.mu.Lock()
	if l.cancel == nil {
		l.mu.Unlock()
		return nil
	}
	cancel, done := l.cancel, l.doneCh
	l.cancel = nil
	l.mu.Unlock()

	cancel()

	select {
	case <-done:
		slog.InfoContext(ctx, "Dataset listener stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Dataset listener stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the listener is currently consuming
func (l *DatasetListener) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}
