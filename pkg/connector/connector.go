// Package connector fetches databases, documents, content and users from the
// Notion API and maps them onto the normalized model in pkg/notion.
package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"
)

// FileCacheHandler receives the URL of every file referenced by fetched
// objects and returns the URL that should be stored in its place.
type FileCacheHandler func(ctx context.Context, remoteURL string) (string, error)

// Connector is a Notion API client.
type Connector struct {
	cfg              *Config
	client           *http.Client
	logger           hclog.Logger
	fileCacheHandler FileCacheHandler
}

// New creates a new Connector.
func New(cfg *Config, logger hclog.Logger) (*Connector, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid notion connector config: %w", err)
	}

	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Connector{
		cfg:    cfg,
		client: cfg.NewHTTPClient(),
		logger: logger.Named("connector"),
	}, nil
}

// SetFileCacheHandler sets the handler used to rewrite file URLs. It must be
// called before any fetch.
func (c *Connector) SetFileCacheHandler(h FileCacheHandler) {
	c.fileCacheHandler = h
}

func (c *Connector) requireFileCacheHandler() {
	if c.fileCacheHandler == nil {
		panic("connector: file cache handler must be set before fetching")
	}
}

// doRequest performs a request against the Notion API and decodes the
// response into result. Rate limited and transient failures are retried with
// exponential backoff; the request, including any pagination cursor, is
// replayed unchanged.
func (c *Connector) doRequest(
	ctx context.Context,
	method, path string,
	query url.Values,
	body, result any,
) error {
	endpoint := c.cfg.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	b := &retryAfterBackOff{
		BackOff: c.newBackOff(),
		max:     c.cfg.RetryMaxInterval,
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(b, uint64(c.cfg.MaxRetries)), ctx)

	attempt := 0
	op := func() error {
		attempt++

		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		req.Header.Set("Notion-Version", c.cfg.NotionVersion)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := parseAPIError(resp.StatusCode, respBody)
			if !apiErr.retryable() {
				return backoff.Permanent(apiErr)
			}
			b.retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
			return apiErr
		}

		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
			}
		}

		return nil
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("retrying notion API request",
			"method", method,
			"path", path,
			"attempt", attempt,
			"wait", wait,
			"error", err,
		)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	return nil
}

func (c *Connector) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.RetryInitialInterval
	b.MaxInterval = c.cfg.RetryMaxInterval
	// Retries are bounded by count, not elapsed time.
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Message = string(body)
	}
	apiErr.Status = status
	return apiErr
}

// parseRetryAfter parses a Retry-After header given in seconds.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// retryAfterBackOff waits at least as long as the server asked for, capped at
// max.
type retryAfterBackOff struct {
	backoff.BackOff
	retryAfter time.Duration
	max        time.Duration
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop {
		return next
	}
	if wait := min(b.retryAfter, b.max); wait > next {
		next = wait
	}
	b.retryAfter = 0
	return next
}
