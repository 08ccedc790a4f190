package backend

import (
	"context"
	"fmt"
	"log/slog"

	"ventas/internal/sources/csvfile"
	gsheet "ventas/internal/sources/google"
	"ventas/internal/sources/memory"
	"ventas/internal/storage"
)

type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	switch config.Type {
	case CSVBackend:
		return f.createCSVBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx, config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func csvOptions(config Config) []csvfile.Option {
	if config.CSVComma == 0 {
		return nil
	}
	return []csvfile.Option{csvfile.WithComma(config.CSVComma)}
}

func (f *DefaultFactory) createCSVBackend(config Config) (*BackendResult, error) {
	loader := csvfile.New(config.SalesCSVPath, csvOptions(config)...)
	f.logger.Info("Initialized CSV backend", "path", config.SalesCSVPath)
	return &BackendResult{Reader: loader, Cleanup: func() error { return nil }}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*BackendResult, error) {
	txs, err := csvfile.New(config.SalesCSVPath, csvOptions(config)...).ReadTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to preload sales file: %w", err)
	}
	f.logger.Info("Initialized memory backend", "path", config.SalesCSVPath, "rows", len(txs))
	return &BackendResult{Reader: memory.New(txs...), Cleanup: func() error { return nil }}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{Reader: repo, Pinger: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	client, err := gsheet.New(ctx, config.GoogleSpreadsheetID, config.GoogleSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.Info("Initialized Google Sheets backend",
		"spreadsheet_id", config.GoogleSpreadsheetID,
		"sheet", config.GoogleSheetName)
	return &BackendResult{Reader: client, Cleanup: func() error { return nil }}, nil
}
