package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateDefaultsPass(t *testing.T) {
	warnings, err := Validate(Default())
	require.NoError(t, err)
	require.Empty(t, warnings)
}

func TestValidateRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty ollama base url", func(c *Config) { c.Ollama.BaseURL = " " }, "ollama.base_url"},
		{"empty ollama model", func(c *Config) { c.Ollama.Model = "" }, "ollama.model"},
		{"zero ollama timeout", func(c *Config) { c.Ollama.TimeoutMS = 0 }, "ollama.timeout_ms"},
		{"empty whisper url", func(c *Config) { c.Whisper.URL = "" }, "whisper.url"},
		{"zero partial interval", func(c *Config) { c.Whisper.PartialIntervalMS = 0 }, "partial_interval_ms"},
		{"zero whisper timeout", func(c *Config) { c.Whisper.TimeoutMS = -1 }, "whisper.timeout_ms"},
		{"empty output dir", func(c *Config) { c.Session.OutputDir = "" }, "output_dir"},
		{"bad mode", func(c *Config) { c.Mode = "haiku" }, "mode must be one of"},
		{"bad style", func(c *Config) { c.Session.Style = "poem" }, "session.style must be one of"},
		{"clipboard enabled without command", func(c *Config) { c.Clipboard.Cmd = CommandConfig{} }, "clipboard.cmd"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			_, err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateWarnsOnAggressivePartialInterval(t *testing.T) {
	cfg := Default()
	cfg.Whisper.PartialIntervalMS = 100

	warnings, err := Validate(cfg)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, "aggressive")
}

func TestValidateModeAndStyleAreCaseInsensitive(t *testing.T) {
	cfg := Default()
	cfg.Mode = " Bullets "
	cfg.Session.Style = "ORGANIZE"

	_, err := Validate(cfg)
	require.NoError(t, err)
}
