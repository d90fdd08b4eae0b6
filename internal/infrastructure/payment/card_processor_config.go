package payment

import (
	"errors"
	"time"
)

// CardProcessorConfig contains configuration for the card processor API
type CardProcessorConfig struct {
	// BaseURL is the processor API endpoint
	BaseURL string
	// APIKey authenticates this platform with the processor
	APIKey string
	// SigningSecret signs outbound request bodies
	SigningSecret string
	// Timeout is the per-request HTTP timeout
	Timeout time.Duration
	// IsSandbox routes requests to the processor's sandbox environment
	IsSandbox bool
}

// Errors for configuration validation
var (
	ErrProcessorMissingBaseURL = errors.New("card processor: missing base URL")
	ErrProcessorMissingAPIKey  = errors.New("card processor: missing API key")
	ErrProcessorMissingSecret  = errors.New("card processor: missing signing secret")
)

// Validate validates the configuration
func (c *CardProcessorConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrProcessorMissingBaseURL
	}
	if c.APIKey == "" {
		return ErrProcessorMissingAPIKey
	}
	if c.SigningSecret == "" {
		return ErrProcessorMissingSecret
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}
