package adapter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/feral-file/ff-ingestion/internal/logger"
)

// maxResponseBody bounds how much of a response body is kept for error reporting
const maxResponseBody = 4096

// HTTPStatusError is returned when the remote end answers with a non-2xx status
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Body)
}

// HTTPClient defines an interface for HTTP client operations to enable mocking
//
//go:generate mockgen -source=http.go -destination=../mocks/http.go -package=mocks -mock_names=HTTPClient=MockHTTPClient
type HTTPClient interface {
	// Post performs a POST request and returns the response status code and body
	Post(ctx context.Context, url string, headers map[string]string, body []byte) (int, []byte, error)
}

// RetryPolicy configures retries of rate limited and server error responses
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// RealHTTPClient implements HTTPClient using the standard http package
type RealHTTPClient struct {
	client *http.Client
	retry  RetryPolicy
}

// NewHTTPClient creates a new real HTTP client
func NewHTTPClient(timeout time.Duration, retry RetryPolicy) HTTPClient {
	if retry.InitialInterval == 0 {
		retry.InitialInterval = 500 * time.Millisecond
	}
	if retry.MaxInterval == 0 {
		retry.MaxInterval = 5 * time.Second
	}
	if retry.MaxElapsedTime == 0 {
		retry.MaxElapsedTime = 30 * time.Second
	}

	return &RealHTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		retry: retry,
	}
}

// Post performs a POST request.
// 429 and 5xx responses and network errors are retried with exponential backoff; other non-2xx responses are permanent.
func (c *RealHTTPClient) Post(ctx context.Context, url string, headers map[string]string, body []byte) (int, []byte, error) {
	var (
		statusCode int
		respBody   []byte
	)

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			// Network errors are retryable
			return fmt.Errorf("failed to perform request: %w", err)
		}
		defer func() {
			if err := resp.Body.Close(); err != nil {
				logger.Warn("failed to close response body", zap.Error(err), zap.String("url", url))
			}
		}()

		statusCode = resp.StatusCode
		respBody, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to read response body: %w", err))
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		statusErr := &HTTPStatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			logger.Warn("retryable response, retrying with backoff",
				zap.String("url", url),
				zap.Int("statusCode", resp.StatusCode))
			return statusErr
		}

		return backoff.Permanent(statusErr)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retry.InitialInterval
	b.MaxInterval = c.retry.MaxInterval
	b.MaxElapsedTime = c.retry.MaxElapsedTime
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.5 // Add jitter to prevent thundering herd

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return statusCode, respBody, fmt.Errorf("request failed after retries: %w", err)
	}

	return statusCode, respBody, nil
}
