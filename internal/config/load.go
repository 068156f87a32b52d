package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Loaded captures resolved config path, parsed values, and non-fatal warnings.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load resolves, reads, parses, and validates the runtime configuration.
//
// A local .env file is loaded first; environment variables win over file
// values, matching the precedence the Ollama/session env keys had upstream.
func Load(explicitPath string) (Loaded, error) {
	_ = godotenv.Load()

	resolvedPath, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	base := Default()
	content, err := os.ReadFile(resolvedPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := base
			applyEnv(&cfg)
			warnings, verr := Validate(cfg)
			if verr != nil {
				return Loaded{}, verr
			}
			warnings = append([]Warning{{
				Message: fmt.Sprintf("config file %q not found; using defaults", resolvedPath),
			}}, warnings...)
			return Loaded{
				Path:     resolvedPath,
				Config:   cfg,
				Warnings: warnings,
				Exists:   false,
			}, nil
		}
		return Loaded{}, fmt.Errorf("read config %q: %w", resolvedPath, err)
	}

	cfg, warnings, err := Parse(string(content), base)
	if err != nil {
		return Loaded{}, fmt.Errorf("parse config %q: %w", resolvedPath, err)
	}

	applyEnv(&cfg)
	if _, err := Validate(cfg); err != nil {
		return Loaded{}, err
	}

	return Loaded{
		Path:     resolvedPath,
		Config:   cfg,
		Warnings: warnings,
		Exists:   true,
	}, nil
}

// applyEnv overlays supported environment variables onto a parsed config.
func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("OLLAMA_MODEL")); v != "" {
		cfg.Ollama.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("OLLAMA_BASE_URL")); v != "" {
		cfg.Ollama.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("WHISPER_URL")); v != "" {
		cfg.Whisper.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("BENEDICT_OUTPUT_DIR")); v != "" {
		cfg.Session.OutputDir = v
	}
	if v := strings.TrimSpace(os.Getenv("BENEDICT_MODE")); v != "" {
		cfg.Mode = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("OLLAMA_TIMEOUT_MS")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.Ollama.TimeoutMS = parsed
		}
	}
}
