package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rileyhilliard/opsdash/internal/errors"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but opsdash only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade opsdash to read this config")
	}

	if err := ValidateBaseURL(cfg.BaseURL); err != nil {
		return err
	}

	if cfg.SyncInterval < MinSyncInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("sync_interval %s is too short", cfg.SyncInterval),
			fmt.Sprintf("Use at least %s; the default is %s", MinSyncInterval, DefaultSyncInterval))
	}

	if cfg.RequestTimeout < 0 {
		return errors.New(errors.ErrConfig,
			"request_timeout can't be negative",
			"Use 0 to leave timeouts to the transport, or a duration like 10s")
	}

	for name := range cfg.Headers {
		if strings.TrimSpace(name) == "" || strings.ContainsAny(name, " \t\r\n:") {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Invalid header name %q", name),
				"Header names can't contain whitespace or colons")
		}
	}

	return nil
}

// ValidateBaseURL checks that s is an absolute http(s) URL.
func ValidateBaseURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New(errors.ErrConfig,
			"base_url is not set",
			"Set base_url in .opsdash.yaml or export OPSDASH_BASE_URL")
	}

	u, err := url.Parse(s)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("base_url %q is not a valid URL", s),
			"Use a URL like http://localhost:8000")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("base_url %q must use http or https", s),
			"Use a URL like https://integrations.example.com")
	}
	if u.Host == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("base_url %q has no host", s),
			"Use a URL like http://localhost:8000")
	}
	return nil
}
