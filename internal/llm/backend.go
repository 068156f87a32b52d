// Package llm abstracts the language-completion backend used for text
// transformation and summary regeneration.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable indicates the backend could not be reached.
	ErrUnavailable = errors.New("completion backend unavailable")
	// ErrTimeout indicates the backend did not answer within the deadline.
	ErrTimeout = errors.New("completion backend timed out")
)

// Backend issues one text completion per call.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleteFunc adapts a function to the Backend interface.
type CompleteFunc func(context.Context, string) (string, error)

func (f CompleteFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// IsDegraded reports whether an error represents a recoverable backend outage.
func IsDegraded(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrTimeout)
}
