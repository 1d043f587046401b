package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:        "8082",
		DataSource:  "file",
		CSVPath:     "./data/data.csv",
		GeminiModel: "gemini-2.5-flash",
		LLMTimeout:  60 * time.Second,
		LoadTimeout: 30 * time.Second,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:   "valid file source config",
			mutate: func(c *Config) {},
		},
		{
			name: "valid sheets source config",
			mutate: func(c *Config) {
				c.DataSource = "sheets"
				c.SpreadsheetID = "abc123"
			},
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "unknown data source",
			mutate:      func(c *Config) { c.DataSource = "ftp" },
			wantErr:     true,
			errorString: "invalid data source 'ftp'",
		},
		{
			name:        "file source without path",
			mutate:      func(c *Config) { c.CSVPath = "" },
			wantErr:     true,
			errorString: "CSV path cannot be empty",
		},
		{
			name:        "sheets source without spreadsheet id",
			mutate:      func(c *Config) { c.DataSource = "sheets" },
			wantErr:     true,
			errorString: "Google Spreadsheet ID is required",
		},
		{
			name:        "empty model name",
			mutate:      func(c *Config) { c.GeminiModel = "" },
			wantErr:     true,
			errorString: "Gemini model name cannot be empty",
		},
		{
			name:        "llm timeout too small",
			mutate:      func(c *Config) { c.LLMTimeout = 100 * time.Millisecond },
			wantErr:     true,
			errorString: "must be at least 1 second",
		},
		{
			name:        "load timeout too large",
			mutate:      func(c *Config) { c.LoadTimeout = time.Hour },
			wantErr:     true,
			errorString: "must be at most 5 minutes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errorString) {
					t.Fatalf("error %q does not contain %q", err.Error(), tt.errorString)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8082" {
		t.Fatalf("port default: got %q", cfg.Port)
	}
	if cfg.DataSource != "file" {
		t.Fatalf("data source default: got %q", cfg.DataSource)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Fatalf("model default: got %q", cfg.GeminiModel)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}
