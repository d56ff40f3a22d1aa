package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/amishk599/screener/internal/model"
)

// RetrySource is a decorator that retries transient catalog failures with
// exponential backoff and jitter before delegating to the wrapped JobSource.
type RetrySource struct {
	inner      model.JobSource
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewRetrySource wraps a JobSource with retry logic.
// maxRetries is the number of additional attempts after the first failure (default: 2).
// baseDelay is the delay before the first retry (default: 5s), doubled on each subsequent retry.
func NewRetrySource(inner model.JobSource, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *RetrySource {
	return &RetrySource{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// Jobs fetches the catalog, retrying on transient errors.
func (s *RetrySource) Jobs(ctx context.Context) ([]model.JobDescription, error) {
	return Do(ctx, s.maxRetries, s.baseDelay, s.logger, s.inner.Jobs)
}

// Do calls fn, retrying transient failures up to maxRetries extra times.
func Do[T any](ctx context.Context, maxRetries int, baseDelay time.Duration, logger *slog.Logger, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	result, err := fn(ctx)
	if err == nil {
		return result, nil
	}
	if !isRetryable(err) {
		return zero, err
	}

	lastErr := err
	for attempt := 1; attempt <= maxRetries; attempt++ {
		delay := backoffDelay(baseDelay, attempt, lastErr)

		logger.Warn("retrying after transient error",
			"attempt", attempt,
			"max_retries", maxRetries,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		result, err = fn(ctx)
		if err == nil {
			return result, nil
		}
		if !isRetryable(err) {
			return zero, err
		}
		lastErr = err
	}

	return zero, lastErr
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// If the error includes a Retry-After duration (HTTP 429), that takes precedence.
func backoffDelay(baseDelay time.Duration, attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	// Exponential: baseDelay * 2^(attempt-1)
	delay := baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}

// isRetryable returns true if the error represents a transient failure worth retrying.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context cancellation is never retried.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == 429 {
			return true
		}
		return httpErr.StatusCode >= 500
	}

	// Non-HTTP errors (network, DNS) are retryable.
	return true
}
