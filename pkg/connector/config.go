package connector

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	DefaultBaseURL       = "https://api.notion.com"
	DefaultNotionVersion = "2022-06-28"
)

// Config contains configuration for the Notion API connector.
//
// Example configuration (HCL):
//
//	notion {
//	  api_key     = env("NOTION_API_KEY")
//	  timeout     = "30s"
//	  max_retries = 5
//	}
type Config struct {
	// APIKey is the internal integration token.
	APIKey string

	// BaseURL of the Notion API. Overridden in tests.
	BaseURL string

	// NotionVersion is sent as the Notion-Version header.
	NotionVersion string

	// Timeout for a single API request.
	Timeout time.Duration

	// MaxRetries bounds the number of retries of a rate limited or failed
	// request.
	MaxRetries int

	// RetryInitialInterval is the first backoff interval. Subsequent intervals
	// grow exponentially up to RetryMaxInterval.
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:              DefaultBaseURL,
		NotionVersion:        DefaultNotionVersion,
		Timeout:              30 * time.Second,
		MaxRetries:           5,
		RetryInitialInterval: 500 * time.Millisecond,
		RetryMaxInterval:     30 * time.Second,
	}
}

// SetDefaults fills in zero values from DefaultConfig.
func (c *Config) SetDefaults() {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.NotionVersion == "" {
		c.NotionVersion = d.NotionVersion
	}
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.RetryInitialInterval == 0 {
		c.RetryInitialInterval = d.RetryInitialInterval
	}
	if c.RetryMaxInterval == 0 {
		c.RetryMaxInterval = d.RetryMaxInterval
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api_key is required")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("base_url must use http or https scheme, got: %s", parsedURL.Scheme)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %v", c.Timeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative, got: %d", c.MaxRetries)
	}
	if c.RetryInitialInterval < 0 || c.RetryMaxInterval < c.RetryInitialInterval {
		return fmt.Errorf("invalid retry intervals: initial %v, max %v",
			c.RetryInitialInterval, c.RetryMaxInterval)
	}

	return nil
}

// NewHTTPClient creates a configured HTTP client for the connector.
func (c *Config) NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: c.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
