// Package capture coordinates the push-to-talk lifecycle: press, record,
// finalize, transform, and append to the session ledger.
package capture

import (
	"context"
	"errors"

	"github.com/benedict-dev/benedict/internal/ledger"
	"github.com/benedict-dev/benedict/internal/summary"
	"github.com/benedict-dev/benedict/internal/textproc"
)

var (
	// ErrFatal indicates the session halted after a ledger write failure.
	ErrFatal = errors.New("session halted: transcript could not be persisted")
	// ErrEmptyUtterance indicates stop completed but no usable speech was
	// recognized.
	ErrEmptyUtterance = errors.New("no speech recognized; check microphone input or mute state")
)

// Stream is one in-flight utterance capture.
type Stream interface {
	Partials() <-chan string
	Stop(ctx context.Context) (string, error)
	Cancel()
}

// Source starts one Stream per press.
type Source interface {
	Start(ctx context.Context) (Stream, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (Stream, error)

func (f SourceFunc) Start(ctx context.Context) (Stream, error) {
	return f(ctx)
}

// Transformer cleans raw utterance text per the active mode.
type Transformer interface {
	Process(ctx context.Context, text string, mode textproc.Mode) (string, error)
}

// Committer mirrors committed utterance text to an output side effect.
type Committer interface {
	Commit(ctx context.Context, text string) error
}

// CommitFunc adapts a function to the Committer interface.
type CommitFunc func(ctx context.Context, text string) error

func (f CommitFunc) Commit(ctx context.Context, text string) error {
	return f(ctx, text)
}

// Summarizer regenerates the organized document body and titles sessions.
type Summarizer interface {
	Regenerate(ctx context.Context, utterances []ledger.Utterance, style summary.Style) (string, error)
	Title(ctx context.Context, firstText string) (string, error)
}

// passthroughTransformer preserves controller flow when no transformer is
// wired.
type passthroughTransformer struct{}

func (passthroughTransformer) Process(_ context.Context, text string, _ textproc.Mode) (string, error) {
	return text, nil
}
