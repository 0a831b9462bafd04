package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// DefaultBaseURL is the Autotask REST endpoint for the zone this integration
// is registered in. Override with AUTOTASK_BASE_URL for other zones.
const DefaultBaseURL = "https://webservices15.autotask.net/ATServicesRest/V1.0"

// defaultCutoff is the reference date applied to ticket queries when the
// caller gives no time period. It is configurable because its usefulness
// degrades as it recedes into the past.
const defaultCutoff = "2023-01-01"

// Config holds the Autotask API credentials and endpoint settings.
//
// The four credential values are required by the upstream API but are not
// validated locally: missing values become empty headers, which Autotask
// rejects with 401. That keeps credential policy in one place (upstream).
type Config struct {
	APIIntegrationCode      string
	UserName                string
	Secret                  string
	ImpersonationResourceID string

	BaseURL       string
	DefaultCutoff time.Time
}

// Load builds configuration from AUTOTASK_* environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		APIIntegrationCode:      os.Getenv("AUTOTASK_API_INTEGRATION_CODE"),
		UserName:                os.Getenv("AUTOTASK_USER_NAME"),
		Secret:                  os.Getenv("AUTOTASK_SECRET"),
		ImpersonationResourceID: os.Getenv("AUTOTASK_IMPERSONATION_RESOURCE_ID"),
		BaseURL:                 getenv("AUTOTASK_BASE_URL", DefaultBaseURL),
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	raw := getenv("AUTOTASK_DEFAULT_CUTOFF", defaultCutoff)
	cutoff, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("config: AUTOTASK_DEFAULT_CUTOFF: %w", err)
	}
	cfg.DefaultCutoff = cutoff

	return cfg, nil
}

// Headers returns the credential headers required on every Autotask call.
func (c *Config) Headers() map[string]string {
	return map[string]string{
		"ApiIntegrationCode":      c.APIIntegrationCode,
		"UserName":                c.UserName,
		"Secret":                  c.Secret,
		"ImpersonationResourceId": c.ImpersonationResourceID,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
