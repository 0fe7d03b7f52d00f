package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape. Durations are written as strings so the
// file stays readable ("30s" rather than nanoseconds).
type fileConfig struct {
	Version        int               `yaml:"version"`
	BaseURL        string            `yaml:"base_url"`
	SyncInterval   string            `yaml:"sync_interval"`
	RequestTimeout string            `yaml:"request_timeout"`
	CurrencySymbol string            `yaml:"currency_symbol,omitempty"`
	LogFile        string            `yaml:"log_file,omitempty"`
	Headers        map[string]string `yaml:"headers,omitempty"`
}

// Marshal renders cfg as YAML with a leading comment.
func Marshal(cfg *Config) ([]byte, error) {
	fc := fileConfig{
		Version:        cfg.Version,
		BaseURL:        cfg.BaseURL,
		SyncInterval:   formatDuration(cfg.SyncInterval),
		RequestTimeout: formatDuration(cfg.RequestTimeout),
		CurrencySymbol: cfg.CurrencySymbol,
		Headers:        cfg.Headers,
	}
	if cfg.LogFile != DefaultLogFile() {
		fc.LogFile = cfg.LogFile
	}

	body, err := yaml.Marshal(&fc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}

	header := "# opsdash configuration\n# Environment variables prefixed with OPSDASH_ override these values.\n"
	return append([]byte(header), body...), nil
}

// Write saves cfg to path, creating parent directories.
func Write(path string, cfg *Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	return d.String()
}
