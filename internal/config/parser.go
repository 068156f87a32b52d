package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Parse layers JSONC file content over base and validates the result. Empty
// content yields the validated base unchanged.
func Parse(content string, base Config) (Config, []Warning, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		warnings, err := Validate(base)
		if err != nil {
			return Config{}, nil, err
		}
		return base, warnings, nil
	}
	if trimmed[0] != '{' {
		return Config{}, nil, errors.New("config must be a JSONC object (expected leading '{')")
	}

	plain, err := decomment(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(plain))
	decoder.DisallowUnknownFields()

	var file fileConfig
	if err := decoder.Decode(&file); err != nil {
		return Config{}, nil, describeDecodeError(plain, err)
	}
	if err := decoder.Decode(&struct{}{}); err == nil {
		return Config{}, nil, errors.New("multiple JSON values are not allowed")
	} else if !errors.Is(err, io.EOF) {
		return Config{}, nil, describeDecodeError(plain, err)
	}

	cfg := base
	if err := file.merge(&cfg); err != nil {
		return Config{}, nil, err
	}

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

// fileConfig mirrors the config file schema with pointer fields so absent
// keys keep their defaults.
type fileConfig struct {
	Ollama *struct {
		BaseURL   *string `json:"base_url"`
		Model     *string `json:"model"`
		TimeoutMS *int    `json:"timeout_ms"`
	} `json:"ollama"`
	Whisper *struct {
		URL               *string `json:"url"`
		PartialIntervalMS *int    `json:"partial_interval_ms"`
		TimeoutMS         *int    `json:"timeout_ms"`
	} `json:"whisper"`
	Audio *struct {
		Input    *string `json:"input"`
		Fallback *string `json:"fallback"`
	} `json:"audio"`
	Session *struct {
		OutputDir       *string `json:"output_dir"`
		OrganizeOnClose *bool   `json:"organize_on_close"`
		Style           *string `json:"style"`
	} `json:"session"`
	Mode      *string `json:"mode"`
	Clipboard *struct {
		Enable *bool   `json:"enable"`
		Cmd    *string `json:"cmd"`
	} `json:"clipboard"`
}

func (f fileConfig) merge(cfg *Config) error {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}

	if f.Ollama != nil {
		setString(&cfg.Ollama.BaseURL, f.Ollama.BaseURL)
		setString(&cfg.Ollama.Model, f.Ollama.Model)
		setInt(&cfg.Ollama.TimeoutMS, f.Ollama.TimeoutMS)
	}
	if f.Whisper != nil {
		setString(&cfg.Whisper.URL, f.Whisper.URL)
		setInt(&cfg.Whisper.PartialIntervalMS, f.Whisper.PartialIntervalMS)
		setInt(&cfg.Whisper.TimeoutMS, f.Whisper.TimeoutMS)
	}
	if f.Audio != nil {
		if f.Audio.Input != nil {
			cfg.Audio.Input = *f.Audio.Input
		}
		if f.Audio.Fallback != nil {
			cfg.Audio.Fallback = *f.Audio.Fallback
		}
	}
	if f.Session != nil {
		setString(&cfg.Session.OutputDir, f.Session.OutputDir)
		setBool(&cfg.Session.OrganizeOnClose, f.Session.OrganizeOnClose)
		setString(&cfg.Session.Style, f.Session.Style)
	}
	if f.Mode != nil {
		cfg.Mode = strings.ToLower(strings.TrimSpace(*f.Mode))
	}
	if f.Clipboard != nil {
		setBool(&cfg.Clipboard.Enable, f.Clipboard.Enable)
		if f.Clipboard.Cmd != nil {
			raw := strings.TrimSpace(*f.Clipboard.Cmd)
			argv, err := parseArgv(raw)
			if err != nil {
				return fmt.Errorf("clipboard.cmd: %w", err)
			}
			cfg.Clipboard.Cmd = CommandConfig{Raw: raw, Argv: argv}
		}
	}
	return nil
}

// decomment rewrites JSONC into strict JSON in a single pass. Comment bytes
// become spaces and newlines are kept, so decode error offsets still point at
// the right line of the original file. A comma whose next significant byte
// closes an object or array is blanked out too.
func decomment(src string) (string, error) {
	const (
		code = iota
		inString
		lineComment
		blockComment
	)

	out := []byte(src)
	state := code
	commaAt := -1

	for i := 0; i < len(src); i++ {
		ch := src[i]

		switch state {
		case inString:
			if ch == '\\' {
				i++
			} else if ch == '"' {
				state = code
			}

		case lineComment:
			if ch == '\n' || ch == '\r' {
				state = code
			} else {
				out[i] = ' '
			}

		case blockComment:
			if ch == '*' && i+1 < len(src) && src[i+1] == '/' {
				out[i], out[i+1] = ' ', ' '
				i++
				state = code
			} else if ch != '\n' && ch != '\r' && ch != '\t' {
				out[i] = ' '
			}

		default: // code
			switch {
			case ch == '"':
				state = inString
				commaAt = -1
			case ch == '/' && i+1 < len(src) && src[i+1] == '/':
				out[i], out[i+1] = ' ', ' '
				i++
				state = lineComment
			case ch == '/' && i+1 < len(src) && src[i+1] == '*':
				out[i], out[i+1] = ' ', ' '
				i++
				state = blockComment
			case ch == ',':
				commaAt = i
			case ch == '}' || ch == ']':
				if commaAt >= 0 {
					out[commaAt] = ' '
				}
				commaAt = -1
			case ch == ' ' || ch == '\n' || ch == '\r' || ch == '\t':
				// whitespace keeps a pending trailing comma pending
			default:
				commaAt = -1
			}
		}
	}

	if state == blockComment {
		return "", errors.New("unterminated block comment in JSONC")
	}
	return string(out), nil
}

// describeDecodeError prefixes JSON decode failures with their line and
// column in the original content.
func describeDecodeError(content string, err error) error {
	var offset int64

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return err
	}

	line, col := locate(content, offset)
	return fmt.Errorf("line %d column %d: %w", line, col, err)
}

func locate(content string, offset int64) (line, col int) {
	if offset <= 0 {
		return 1, 1
	}
	end := int(offset) - 1
	if end > len(content) {
		end = len(content)
	}
	prefix := content[:end]
	line = 1 + strings.Count(prefix, "\n")
	col = end - strings.LastIndexByte(prefix, '\n')
	return line, col
}
