// Package config resolves, parses, validates, and defaults benedict configuration.
package config

// Config is the fully materialized runtime configuration used by benedict.
type Config struct {
	Ollama    OllamaConfig
	Whisper   WhisperConfig
	Audio     AudioConfig
	Session   SessionConfig
	Mode      string
	Clipboard ClipboardConfig
}

// OllamaConfig controls the language-completion backend endpoint.
type OllamaConfig struct {
	BaseURL   string
	Model     string
	TimeoutMS int
}

// WhisperConfig controls the speech-recognition server endpoint.
type WhisperConfig struct {
	URL               string
	PartialIntervalMS int
	TimeoutMS         int
}

// AudioConfig controls preferred and fallback input-source selection.
type AudioConfig struct {
	Input    string
	Fallback string
}

// SessionConfig controls session document output and close behavior.
type SessionConfig struct {
	OutputDir       string
	OrganizeOnClose bool
	Style           string
}

// ClipboardConfig controls copying processed utterances to the clipboard.
type ClipboardConfig struct {
	Enable bool
	Cmd    CommandConfig
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
