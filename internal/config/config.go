package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ventas/internal/core"
)

// Supported data backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
	BackendSheets = "sheets"
	BackendMemory = "memory"
)

type Config struct {
	// HTTP Server
	Port string

	// Data source
	DataBackend  string
	SalesCSVPath string
	CSVDelimiter string
	SQLiteDBPath string

	// Google Sheets
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Dashboard
	LogoPath            string
	DefaultMonth        string
	Holidays            string
	LowSalesRatio       float64
	MovingAverageWindow int
	TopN                int

	// Dataset cache; zero TTL disables it
	DatasetCacheTTL time.Duration

	// AMQP; empty URL disables dataset events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	LogLevel string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend:  strings.ToLower(getEnv("DATA_BACKEND", BackendCSV)),
		SalesCSVPath: getEnv("SALES_CSV_PATH", "megasaludableventas.csv"),
		CSVDelimiter: getEnv("CSV_DELIMITER", ","),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/ventas.db"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Ventas"),

		LogoPath:            getEnv("LOGO_PATH", ""),
		DefaultMonth:        getEnv("DEFAULT_MONTH", "2025-06"),
		Holidays:            getEnv("HOLIDAYS", ""),
		LowSalesRatio:       getEnvFloat("LOW_SALES_RATIO", 0.5),
		MovingAverageWindow: getEnvInt("MOVING_AVERAGE_WINDOW", 7),
		TopN:                getEnvInt("TOP_N", 10),

		DatasetCacheTTL: getEnvDuration("DATASET_CACHE_TTL", 0),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "ventas"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "dataset_events"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{BackendCSV, BackendSQLite, BackendSheets, BackendMemory}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendCSV:
		if c.SalesCSVPath == "" {
			errors = append(errors, "sales CSV path cannot be empty when using csv backend")
		}
		if len([]rune(c.CSVDelimiter)) != 1 {
			errors = append(errors, fmt.Sprintf("invalid CSV delimiter '%s': must be a single character", c.CSVDelimiter))
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case BackendSheets:
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when using sheets backend")
		}
	}

	if c.LogoPath != "" {
		if _, err := os.Stat(c.LogoPath); err != nil {
			errors = append(errors, fmt.Sprintf("logo file not readable '%s': %v", c.LogoPath, err))
		}
	}

	if _, err := core.ParseMonth(c.DefaultMonth); err != nil {
		errors = append(errors, fmt.Sprintf("invalid default month '%s': must be YYYY-MM", c.DefaultMonth))
	}
	if _, err := core.ParseHolidays(c.Holidays); err != nil {
		errors = append(errors, fmt.Sprintf("invalid holidays list: %v", err))
	}
	if c.LowSalesRatio <= 0 || c.LowSalesRatio > 1 {
		errors = append(errors, fmt.Sprintf("invalid low sales ratio %v: must be in (0, 1]", c.LowSalesRatio))
	}
	if c.MovingAverageWindow < 1 || c.MovingAverageWindow > 31 {
		errors = append(errors, fmt.Sprintf("invalid moving average window %d: must be between 1 and 31", c.MovingAverageWindow))
	}
	if c.TopN < 1 || c.TopN > 50 {
		errors = append(errors, fmt.Sprintf("invalid top N %d: must be between 1 and 50", c.TopN))
	}
	if c.DatasetCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid dataset cache TTL %v: must not be negative", c.DatasetCacheTTL))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// HolidayDates returns the configured holidays, or the built-in list when unset.
func (c *Config) HolidayDates() []core.Date {
	days, err := core.ParseHolidays(c.Holidays)
	if err != nil {
		return core.DefaultHolidays
	}
	return days
}

// CSVComma returns the configured delimiter rune.
func (c *Config) CSVComma() rune {
	r := []rune(c.CSVDelimiter)
	if len(r) != 1 {
		return ','
	}
	return r[0]
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
