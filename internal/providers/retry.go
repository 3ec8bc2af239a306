package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
)

type rateLimitError struct {
	retryable bool
}

func (e *rateLimitError) Error() string { return "rate limited" }

type authError struct {
	message string
}

func (e *authError) Error() string {
	return "authentication error: " + e.message
}

type serverError struct {
	statusCode int
	body       string
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.statusCode, e.body)
}

// IsAuthError checks if an error is an authentication error.
func IsAuthError(err error) bool {
	var ae *authError
	return errors.As(err, &ae)
}

// IsRateLimited checks if an error is a rate-limit error.
func IsRateLimited(err error) bool {
	var re *rateLimitError
	return errors.As(err, &re)
}

// backoffUnit is the base delay between retries. Tests shorten it.
var backoffUnit = time.Second

func retryWithBackoff(ctx context.Context, maxRetries int, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		// Don't retry auth errors
		var ae *authError
		if errors.As(lastErr, &ae) {
			return lastErr
		}

		// Only retry rate limit and server errors
		var re *rateLimitError
		var se *serverError
		if !errors.As(lastErr, &re) && !errors.As(lastErr, &se) {
			return lastErr
		}

		if attempt < maxRetries {
			backoff := time.Duration(1<<uint(attempt)) * backoffUnit
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return lastErr
}

// classifyStatus maps non-200 HTTP statuses to typed errors.
func classifyStatus(status int, body []byte) error {
	switch {
	case status == 200:
		return nil
	case status == 429:
		return &rateLimitError{retryable: true}
	case status == 401 || status == 403:
		return errors.WithHint(&authError{message: string(body)}, "check that your API key is valid")
	case status >= 500:
		return &serverError{statusCode: status, body: string(body)}
	default:
		return errors.Newf("API error (status %d): %s", status, string(body))
	}
}
