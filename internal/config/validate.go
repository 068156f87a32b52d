package config

import (
	"fmt"
	"strings"
)

var validModes = map[string]struct{}{
	"clean":   {},
	"rewrite": {},
	"bullets": {},
	"email":   {},
	"raw":     {},
}

var validStyles = map[string]struct{}{
	"organize":     {},
	"professional": {},
	"summarize":    {},
	"action_items": {},
}

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if strings.TrimSpace(cfg.Ollama.BaseURL) == "" {
		return nil, fmt.Errorf("ollama.base_url must not be empty")
	}
	if strings.TrimSpace(cfg.Ollama.Model) == "" {
		return nil, fmt.Errorf("ollama.model must not be empty")
	}
	if cfg.Ollama.TimeoutMS <= 0 {
		return nil, fmt.Errorf("ollama.timeout_ms must be > 0")
	}
	if strings.TrimSpace(cfg.Whisper.URL) == "" {
		return nil, fmt.Errorf("whisper.url must not be empty")
	}
	if cfg.Whisper.PartialIntervalMS <= 0 {
		return nil, fmt.Errorf("whisper.partial_interval_ms must be > 0")
	}
	if cfg.Whisper.TimeoutMS <= 0 {
		return nil, fmt.Errorf("whisper.timeout_ms must be > 0")
	}
	if strings.TrimSpace(cfg.Session.OutputDir) == "" {
		return nil, fmt.Errorf("session.output_dir must not be empty")
	}

	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if _, ok := validModes[mode]; !ok {
		return nil, fmt.Errorf("mode must be one of: clean, rewrite, bullets, email, raw")
	}

	style := strings.ToLower(strings.TrimSpace(cfg.Session.Style))
	if _, ok := validStyles[style]; !ok {
		return nil, fmt.Errorf("session.style must be one of: organize, professional, summarize, action_items")
	}

	if cfg.Clipboard.Enable && len(cfg.Clipboard.Cmd.Argv) == 0 {
		return nil, fmt.Errorf("clipboard.cmd must not be empty when clipboard.enable=true")
	}

	if cfg.Whisper.PartialIntervalMS < 250 {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("whisper.partial_interval_ms=%d is aggressive; interim requests may overlap", cfg.Whisper.PartialIntervalMS)})
	}

	return warnings, nil
}
