package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ventas/internal/config"
)

const sampleCSV = "Fecha;Descripcion;Cantidad;Total;Factura\n2025-06-02;Miel;2;3000;F-1\n"

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ventas.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o600); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	return path
}

func TestCreateBackend(t *testing.T) {
	csvPath := writeSample(t)
	tests := []struct {
		name     string
		config   Config
		wantRows int
		wantPing bool
	}{
		{"csv", Config{Type: CSVBackend, SalesCSVPath: csvPath, CSVComma: ';'}, 1, false},
		{"memory", Config{Type: MemoryBackend, SalesCSVPath: csvPath, CSVComma: ';'}, 1, false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "ventas.db")}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			res, err := NewFactory(nil).CreateBackend(ctx, tt.config)
			if err != nil {
				t.Fatalf("CreateBackend() error = %v", err)
			}
			defer res.Cleanup()

			txs, err := res.Reader.ReadTransactions(ctx)
			if err != nil {
				t.Fatalf("ReadTransactions() error = %v", err)
			}
			if len(txs) != tt.wantRows {
				t.Errorf("got %d rows, want %d", len(txs), tt.wantRows)
			}
			if (res.Pinger != nil) != tt.wantPing {
				t.Errorf("Pinger present = %v, want %v", res.Pinger != nil, tt.wantPing)
			}
		})
	}
}

func TestMemoryBackendSnapshotsFile(t *testing.T) {
	csvPath := writeSample(t)
	ctx := context.Background()
	res, err := NewFactory(nil).CreateBackend(ctx, Config{Type: MemoryBackend, SalesCSVPath: csvPath, CSVComma: ';'})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	if err := os.Remove(csvPath); err != nil {
		t.Fatalf("remove: %v", err)
	}
	txs, err := res.Reader.ReadTransactions(ctx)
	if err != nil || len(txs) != 1 {
		t.Fatalf("memory backend should serve the preloaded rows: %d, %v", len(txs), err)
	}
}

func TestCreateBackendErrors(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"invalid type", Config{Type: "postgres"}},
		{"csv without path", Config{Type: CSVBackend}},
		{"memory with missing file", Config{Type: MemoryBackend, SalesCSVPath: "/non/existent.csv"}},
		{"sheets without id", Config{Type: SheetsBackend}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFactory(nil).CreateBackend(context.Background(), tt.config); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	cfg := &config.Config{DataBackend: "csv", SalesCSVPath: "v.csv", CSVDelimiter: ";"}
	bc, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if bc.Type != CSVBackend || bc.CSVComma != ';' || bc.SalesCSVPath != "v.csv" {
		t.Errorf("unexpected backend config: %+v", bc)
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "excel"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
