package model

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	// ErrAnalysisUnavailable means the analysis service could not be reached or timed out.
	ErrAnalysisUnavailable = errors.New("analysis unavailable")
	// ErrUnsupportedFile means a resume is in an unknown format or is corrupt.
	ErrUnsupportedFile = errors.New("unsupported file")
	// ErrChatService means the assistant failed to answer.
	ErrChatService = errors.New("chat service error")
	// ErrEmptyMessage is returned for chat text without a non-whitespace character.
	ErrEmptyMessage = errors.New("empty chat message")
	// ErrUnknownFile is returned when selecting a file that is not in the upload list.
	ErrUnknownFile = errors.New("file not in upload list")
	// ErrNothingToRetry is returned when no failed analysis is selected.
	ErrNothingToRetry = errors.New("no failed analysis to retry")
	// ErrClosed is returned by a controller after Close.
	ErrClosed = errors.New("session closed")
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// ParseRetryAfter reads a Retry-After header given in seconds.
// HTTP-date values and garbage yield zero.
func ParseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
