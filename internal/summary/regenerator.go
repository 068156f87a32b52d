package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/benedict-dev/benedict/internal/ledger"
	"github.com/benedict-dev/benedict/internal/llm"
)

// Regenerator produces the organized-summary document body for a session.
type Regenerator struct {
	backend llm.Backend
	logger  *slog.Logger
}

// NewRegenerator constructs a regenerator over a completion backend.
func NewRegenerator(backend llm.Backend, logger *slog.Logger) *Regenerator {
	return &Regenerator{backend: backend, logger: logger}
}

// Concatenate joins the ordered utterance texts (cleaned with raw fallback)
// into the regeneration source document.
func Concatenate(utterances []ledger.Utterance) string {
	lines := make([]string, 0, len(utterances))
	for _, u := range utterances {
		text := strings.TrimSpace(u.Text())
		if text == "" {
			continue
		}
		lines = append(lines, text)
	}
	return strings.Join(lines, "\n")
}

// Regenerate returns a restructured document for the full utterance sequence.
//
// The summary is a cache over the ledger: identical input must yield a body
// carrying the same content, and a backend failure returns the plain
// concatenation with the error so the session document is never left empty.
func (r *Regenerator) Regenerate(ctx context.Context, utterances []ledger.Utterance, style Style) (string, error) {
	content := Concatenate(utterances)
	if content == "" {
		return "", nil
	}

	prompt, err := buildPrompt(style, content)
	if err != nil {
		return content, err
	}

	body, err := r.backend.Complete(ctx, prompt)
	if err != nil {
		r.logWarn("summary regeneration degraded; using raw concatenation", "style", string(style), "error", err.Error())
		return content, err
	}

	body = strings.TrimSpace(body)
	if body == "" {
		r.logWarn("summary regeneration returned empty output; using raw concatenation", "style", string(style))
		return content, nil
	}
	return body, nil
}

// Title asks the backend for a short session title seeded by the first
// utterance. Only the leading 200 characters are offered, matching the
// document-creation behavior the transcript header expects.
func (r *Regenerator) Title(ctx context.Context, firstText string) (string, error) {
	seed := strings.TrimSpace(firstText)
	if seed == "" {
		return "", nil
	}
	if len(seed) > 200 {
		seed = seed[:200]
	}

	title, err := r.backend.Complete(ctx, fmt.Sprintf(titlePrompt, seed))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(title), nil
}

func (r *Regenerator) logWarn(message string, args ...any) {
	if r.logger == nil {
		return
	}
	r.logger.Warn(message, args...)
}
