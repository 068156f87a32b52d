// Package output mirrors committed utterance text to the system clipboard.
package output

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/benedict-dev/benedict/internal/config"
)

// Committer copies each committed utterance to the clipboard when enabled.
type Committer struct {
	enabled bool
	argv    []string
	logger  *slog.Logger
}

// NewCommitter constructs a clipboard committer from runtime config.
func NewCommitter(cfg config.Config, logger *slog.Logger) *Committer {
	return &Committer{
		enabled: cfg.Clipboard.Enable,
		argv:    cfg.Clipboard.Cmd.Argv,
		logger:  logger,
	}
}

// Commit writes text to the clipboard. Failures are logged, not fatal: the
// session document is the source of truth and must not be blocked by a
// clipboard tool.
func (c *Committer) Commit(ctx context.Context, text string) error {
	if !c.enabled || text == "" {
		return nil
	}

	clipCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := runCommandWithInput(clipCtx, c.argv, text); err != nil {
		if c.logger != nil {
			c.logger.Error("clipboard copy failed; transcript entry is already saved", "error", err.Error())
		}
		return fmt.Errorf("set clipboard: %w", err)
	}
	return nil
}

// runCommandWithInput executes argv with input piped to its stdin.
func runCommandWithInput(ctx context.Context, argv []string, input string) error {
	if len(argv) == 0 {
		return fmt.Errorf("command argv cannot be empty")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(input)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", argv[0], err)
	}
	return nil
}
