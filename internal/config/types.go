package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Defaults applied when a key is absent from every config source.
const (
	DefaultBaseURL        = "http://localhost:8000"
	DefaultSyncInterval   = 30 * time.Second
	DefaultRequestTimeout = 10 * time.Second
	DefaultCurrencySymbol = "£"

	// MinSyncInterval keeps a misconfigured interval from hammering the backend.
	MinSyncInterval = time.Second
)

// Config represents the complete .opsdash.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// BaseURL is the root of the integration backend. The client appends
	// /api/analytics/dashboard and /api/sync/status.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// SyncInterval is how often platform sync status is re-polled.
	SyncInterval time.Duration `yaml:"sync_interval" mapstructure:"sync_interval"`

	// RequestTimeout bounds each feed request. Zero leaves it to the transport.
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`

	// CurrencySymbol prefixes the revenue figure.
	CurrencySymbol string `yaml:"currency_symbol" mapstructure:"currency_symbol"`

	// LogFile receives log output while the dashboard owns the terminal.
	LogFile string `yaml:"log_file" mapstructure:"log_file"`

	// Headers are sent with every feed request (e.g. an auth token supplied
	// by the shared transport layer).
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:        CurrentConfigVersion,
		BaseURL:        DefaultBaseURL,
		SyncInterval:   DefaultSyncInterval,
		RequestTimeout: DefaultRequestTimeout,
		CurrencySymbol: DefaultCurrencySymbol,
		LogFile:        DefaultLogFile(),
		Headers:        make(map[string]string),
	}
}
