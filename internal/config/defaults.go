package config

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	clipboard := "wl-copy --trim-newline"

	return Config{
		Ollama: OllamaConfig{
			BaseURL:   "http://localhost:11434",
			Model:     "llama3.2",
			TimeoutMS: 30000,
		},
		Whisper: WhisperConfig{
			URL:               "http://localhost:8178",
			PartialIntervalMS: 750,
			TimeoutMS:         20000,
		},
		Audio: AudioConfig{
			Input:    "default",
			Fallback: "default",
		},
		Session: SessionConfig{
			OutputDir:       "sessions",
			OrganizeOnClose: true,
			Style:           "organize",
		},
		Mode:      "clean",
		Clipboard: ClipboardConfig{Enable: true, Cmd: CommandConfig{Raw: clipboard, Argv: mustParseArgv(clipboard)}},
	}
}
