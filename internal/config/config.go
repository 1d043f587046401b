package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Dataset source
	DataSource    string // "file" or "sheets"
	CSVPath       string
	SpreadsheetID string
	SheetRange    string

	// LLM
	GeminiModel string
	LLMTimeout  time.Duration

	// Dataset loading
	LoadTimeout time.Duration
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8082"),

		DataSource:    getEnv("DATA_SOURCE", "file"),
		CSVPath:       getEnv("CSV_PATH", "./data/data.csv"),
		SpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		SheetRange:    getEnv("GOOGLE_SHEET_RANGE", "Expenses"),

		GeminiModel: getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		LLMTimeout:  getEnvDuration("LLM_TIMEOUT", 60*time.Second),

		LoadTimeout: getEnvDuration("LOAD_TIMEOUT", 30*time.Second),
	}
}

// Validate checks the configuration and returns a combined error listing
// every problem found.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataSource {
	case "file":
		if c.CSVPath == "" {
			errs = append(errs, "CSV path cannot be empty when using the file source")
		}
	case "sheets":
		if c.SpreadsheetID == "" {
			errs = append(errs, "Google Spreadsheet ID is required when using the sheets source")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid data source '%s': must be one of [file sheets]", c.DataSource))
	}

	if c.GeminiModel == "" {
		errs = append(errs, "Gemini model name cannot be empty")
	}

	for _, d := range []struct {
		name string
		val  time.Duration
	}{
		{"LLM timeout", c.LLMTimeout},
		{"load timeout", c.LoadTimeout},
	} {
		if d.val < time.Second {
			errs = append(errs, fmt.Sprintf("invalid %s %v: must be at least 1 second", d.name, d.val))
		} else if d.val > 5*time.Minute {
			errs = append(errs, fmt.Sprintf("invalid %s %v: must be at most 5 minutes", d.name, d.val))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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
