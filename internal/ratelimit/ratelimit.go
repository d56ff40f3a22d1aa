package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amishk599/screener/internal/ai"
)

// BackendRateLimiter enforces a minimum delay between requests to the same LLM backend.
type BackendRateLimiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time // key: backend name
	minDelay time.Duration
}

// NewBackendRateLimiter creates a rate limiter that enforces minDelay between
// consecutive requests to the same backend.
func NewBackendRateLimiter(minDelay time.Duration) *BackendRateLimiter {
	return &BackendRateLimiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until enough time has passed since the last request to the given backend.
// Returns an error if the context is cancelled while waiting.
func (r *BackendRateLimiter) Wait(ctx context.Context, backend string) error {
	r.mu.Lock()
	last, ok := r.lastCall[backend]
	now := time.Now()

	if !ok || now.Sub(last) >= r.minDelay {
		r.lastCall[backend] = now
		r.mu.Unlock()
		return nil
	}

	// Reserve the next slot before releasing the lock so concurrent callers
	// queue up behind each other instead of all firing at once.
	next := last.Add(r.minDelay)
	r.lastCall[backend] = next
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", backend, ctx.Err())
	case <-time.After(time.Until(next)):
	}
	return nil
}

// RateLimitedProvider is a decorator that enforces backend-level rate limiting
// before delegating to the wrapped LLMProvider.
type RateLimitedProvider struct {
	inner   ai.LLMProvider
	limiter *BackendRateLimiter
}

// NewRateLimitedProvider wraps a provider with rate limiting. Analyzer and
// assistant should share one limiter so they queue on the same backend.
func NewRateLimitedProvider(inner ai.LLMProvider, limiter *BackendRateLimiter) *RateLimitedProvider {
	return &RateLimitedProvider{inner: inner, limiter: limiter}
}

// Name returns the wrapped provider's name.
func (p *RateLimitedProvider) Name() string {
	return p.inner.Name()
}

// Complete waits for the limiter, then delegates to the wrapped provider.
func (p *RateLimitedProvider) Complete(ctx context.Context, req ai.Completion) (string, error) {
	if err := p.limiter.Wait(ctx, p.inner.Name()); err != nil {
		return "", err
	}
	return p.inner.Complete(ctx, req)
}
