package textproc

import (
	"context"
	"log/slog"
	"strings"

	"github.com/benedict-dev/benedict/internal/llm"
)

// Processor transforms one utterance per call through the completion backend.
type Processor struct {
	backend llm.Backend
	logger  *slog.Logger
}

// NewProcessor constructs a processor over a completion backend.
func NewProcessor(backend llm.Backend, logger *slog.Logger) *Processor {
	return &Processor{backend: backend, logger: logger}
}

// Process returns the mode-transformed text for one finished utterance.
//
// ModeRaw never touches the backend. On any backend failure the original
// text is returned unchanged together with the error, so callers always
// have the raw transcription as the durable fallback.
func (p *Processor) Process(ctx context.Context, text string, mode Mode) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", nil
	}
	if mode == ModeRaw {
		return trimmed, nil
	}

	prompt, err := buildPrompt(mode, trimmed)
	if err != nil {
		return trimmed, err
	}

	result, err := p.backend.Complete(ctx, prompt)
	if err != nil {
		p.logWarn("transformation degraded; keeping raw text", "mode", string(mode), "error", err.Error())
		return trimmed, err
	}

	result = strings.TrimSpace(result)
	if result == "" {
		p.logWarn("transformation returned empty output; keeping raw text", "mode", string(mode))
		return trimmed, nil
	}
	return result, nil
}

func (p *Processor) logWarn(message string, args ...any) {
	if p.logger == nil {
		return
	}
	p.logger.Warn(message, args...)
}
