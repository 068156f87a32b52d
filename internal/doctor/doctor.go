// Package doctor runs runtime readiness diagnostics for config, backends,
// audio, and the session output directory.
package doctor

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/benedict-dev/benedict/internal/asr"
	"github.com/benedict-dev/benedict/internal/audio"
	"github.com/benedict-dev/benedict/internal/config"
)

// Check is one diagnostic result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report collects every check `benedict doctor` ran.
type Report struct {
	Checks []Check
}

// OK reports whether every check passed.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders one "[OK] name: message" line per check.
func (r Report) String() string {
	lines := make([]string, 0, len(r.Checks))
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", status, check.Name, check.Message))
	}
	return strings.Join(lines, "\n")
}

// Run probes everything a dictation session depends on: the config file, the
// output directory, the clipboard tool, audio device selection, and both
// inference backends.
func Run(cfg config.Loaded) Report {
	report := Report{Checks: []Check{{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q", cfg.Path),
	}}}
	add := func(c Check) { report.Checks = append(report.Checks, c) }

	add(checkOutputDir(cfg.Config.Session.OutputDir))
	if cfg.Config.Clipboard.Enable {
		add(checkCommand(cfg.Config.Clipboard.Cmd.Argv, "clipboard_cmd"))
	}
	add(checkAudioSelection(cfg.Config))
	add(checkWhisper(cfg.Config))
	add(checkOllama(cfg.Config))

	return report
}

// checkOutputDir verifies the session directory exists or can be created and
// is writable.
func checkOutputDir(dir string) Check {
	if strings.TrimSpace(dir) == "" {
		return Check{Name: "session.output_dir", Pass: false, Message: "output_dir is empty"}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Check{Name: "session.output_dir", Pass: false, Message: fmt.Sprintf("cannot create %q: %v", dir, err)}
	}

	probe := filepath.Join(dir, ".benedict-doctor")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return Check{Name: "session.output_dir", Pass: false, Message: fmt.Sprintf("not writable: %v", err)}
	}
	_ = os.Remove(probe)
	return Check{Name: "session.output_dir", Pass: true, Message: fmt.Sprintf("writable at %q", dir)}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkAudioSelection runs live device selection to surface fallback issues.
func checkAudioSelection(cfg config.Config) Check {
	selection, err := audio.SelectDevice(context.Background(), cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}

// checkWhisper probes the configured whisper-server endpoint.
func checkWhisper(cfg config.Config) Check {
	url := strings.TrimSpace(cfg.Whisper.URL)
	if url == "" {
		return Check{Name: "whisper.url", Pass: false, Message: "whisper url is empty"}
	}

	client := asr.NewClient(url, 2*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		return Check{Name: "whisper.url", Pass: false, Message: fmt.Sprintf("request failed: %v", err)}
	}
	return Check{Name: "whisper.url", Pass: true, Message: fmt.Sprintf("reachable at %s", url)}
}

// checkOllama probes the Ollama base URL and confirms the server answers.
func checkOllama(cfg config.Config) Check {
	base := strings.TrimSpace(cfg.Ollama.BaseURL)
	if base == "" {
		return Check{Name: "ollama.base_url", Pass: false, Message: "base_url is empty"}
	}

	client := http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(strings.TrimRight(base, "/") + "/api/tags")
	if err != nil {
		return Check{Name: "ollama.base_url", Pass: false, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Check{Name: "ollama.base_url", Pass: false, Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, base)}
	}
	return Check{Name: "ollama.base_url", Pass: true, Message: fmt.Sprintf("reachable at %s (model %s)", base, cfg.Ollama.Model)}
}
