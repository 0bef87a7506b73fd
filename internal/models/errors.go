package models

import (
	"errors"
	"fmt"
)

// Error kinds for the research pipeline. Handlers map these to HTTP status
// codes; the orchestrator maps stage failures to job state.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrRateLimited   = errors.New("rate limited")
	ErrNotFound      = errors.New("not found")
	ErrUnreachable   = errors.New("website unreachable")
	ErrNoSeeds       = errors.New("no seed keywords generated")
	ErrNoMetrics     = errors.New("no keyword metrics returned")
	ErrClusterEmpty  = errors.New("clustering produced no clusters")
	ErrAIUnavailable = errors.New("ai service unavailable")
	ErrInternal      = errors.New("internal error")
)

// RateLimitError carries the seconds a client must wait before the next
// job creation is allowed.
type RateLimitError struct {
	RetryAfter int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: retry after %ds", e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// NewRateLimitError creates a RateLimitError with the given wait.
func NewRateLimitError(retryAfter int) *RateLimitError {
	return &RateLimitError{RetryAfter: retryAfter}
}

// StageError wraps a pipeline failure with the stage that produced it.
// The stage label is stable and surfaces in the job record.
type StageError struct {
	Stage string
	Kind  error
	Msg   string
}

func (e *StageError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Msg)
}

func (e *StageError) Unwrap() error {
	return e.Kind
}

// NewStageError creates a StageError for the given stage and error kind.
func NewStageError(stage string, kind error, format string, args ...interface{}) *StageError {
	return &StageError{
		Stage: stage,
		Kind:  kind,
		Msg:   fmt.Sprintf(format, args...),
	}
}

// StageOf returns the stage label if err carries one.
func StageOf(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
