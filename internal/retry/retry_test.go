package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amishk599/screener/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockSource calls a function on each invocation, tracking call count.
type mockSource struct {
	calls int
	fn    func(attempt int) ([]model.JobDescription, error)
}

func (m *mockSource) Jobs(_ context.Context) ([]model.JobDescription, error) {
	m.calls++
	return m.fn(m.calls)
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	jobs := []model.JobDescription{{ID: "1", Title: "Engineer"}}
	mock := &mockSource{fn: func(_ int) ([]model.JobDescription, error) {
		return jobs, nil
	}}

	rs := NewRetrySource(mock, 2, 10*time.Millisecond, discardLogger())
	got, err := rs.Jobs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("unexpected jobs: %v", got)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call, got %d", mock.calls)
	}
}

func TestRetry_RetriesOn5xx_SucceedsOnSecondAttempt(t *testing.T) {
	mock := &mockSource{fn: func(attempt int) ([]model.JobDescription, error) {
		if attempt == 1 {
			return nil, &model.HTTPError{StatusCode: 503, Err: errors.New("service unavailable")}
		}
		return []model.JobDescription{{ID: "1"}}, nil
	}}

	rs := NewRetrySource(mock, 2, 10*time.Millisecond, discardLogger())
	got, err := rs.Jobs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 job, got %d", len(got))
	}
	if mock.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.calls)
	}
}

func TestRetry_DoesNotRetryOn4xx(t *testing.T) {
	mock := &mockSource{fn: func(_ int) ([]model.JobDescription, error) {
		return nil, &model.HTTPError{StatusCode: 404, Err: errors.New("not found")}
	}}

	rs := NewRetrySource(mock, 2, 10*time.Millisecond, discardLogger())
	_, err := rs.Jobs(context.Background())
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 404 {
		t.Fatalf("expected HTTPError with status 404, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call (no retry), got %d", mock.calls)
	}
}

func TestRetry_GivesUpAfterMaxRetries(t *testing.T) {
	mock := &mockSource{fn: func(_ int) ([]model.JobDescription, error) {
		return nil, &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	rs := NewRetrySource(mock, 2, 10*time.Millisecond, discardLogger())
	if _, err := rs.Jobs(context.Background()); err == nil {
		t.Fatal("expected error after max retries, got nil")
	}
	// 1 initial + 2 retries = 3
	if mock.calls != 3 {
		t.Fatalf("expected 3 calls (1 + 2 retries), got %d", mock.calls)
	}
}

func TestRetry_UsesRetryAfter(t *testing.T) {
	err := &model.HTTPError{StatusCode: 429, RetryAfter: 42 * time.Second}
	if got := backoffDelay(time.Second, 1, err); got != 42*time.Second {
		t.Errorf("backoffDelay = %v, want 42s", got)
	}
}

func TestRetry_RespectsContextCancellation(t *testing.T) {
	mock := &mockSource{fn: func(_ int) ([]model.JobDescription, error) {
		return nil, &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	ctx, cancel := context.WithCancel(context.Background())
	// Cancel immediately so the backoff sleep is interrupted.
	cancel()

	rs := NewRetrySource(mock, 2, time.Second, discardLogger())
	_, err := rs.Jobs(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", mock.calls)
	}
}
