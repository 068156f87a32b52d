// Package app wires configuration, logging, IPC, and the capture controller
// into the benedict command surface.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/benedict-dev/benedict/internal/asr"
	"github.com/benedict-dev/benedict/internal/audio"
	"github.com/benedict-dev/benedict/internal/capture"
	"github.com/benedict-dev/benedict/internal/cli"
	"github.com/benedict-dev/benedict/internal/config"
	"github.com/benedict-dev/benedict/internal/doctor"
	"github.com/benedict-dev/benedict/internal/ipc"
	"github.com/benedict-dev/benedict/internal/ledger"
	"github.com/benedict-dev/benedict/internal/llm"
	"github.com/benedict-dev/benedict/internal/logging"
	"github.com/benedict-dev/benedict/internal/output"
	"github.com/benedict-dev/benedict/internal/store"
	"github.com/benedict-dev/benedict/internal/summary"
	"github.com/benedict-dev/benedict/internal/textproc"
	"github.com/benedict-dev/benedict/internal/version"
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("benedict"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("benedict"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	case cli.CommandSessions:
		return r.commandSessions()
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandPress, cli.CommandRelease, cli.CommandCancel, cli.CommandClose, cli.CommandMode, cli.CommandRegenerate:
		return r.forwardOrFail(ctx, string(parsed.Command), parsed.Arg)
	case cli.CommandRun:
		return r.commandRun(ctx, cfgLoaded.Config, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		availability := "yes"
		if !device.Available {
			availability = "no"
		}
		muted := "no"
		if device.Muted {
			muted = "yes"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
			defaultMark,
			device.ID,
			device.Description,
			device.State,
			availability,
			muted,
		)
	}

	return 0
}

func (r Runner) commandSessions() int {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	st, err := store.Open(dbPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: open session index: %v\n", err)
		return 1
	}
	defer st.Close()

	sessions, err := st.ListSessions(20)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(sessions) == 0 {
		fmt.Fprintln(r.Stdout, "no sessions recorded")
		return 0
	}

	for _, sess := range sessions {
		title := sess.Title
		if title == "" {
			title = "Untitled Session"
		}
		ended := "active"
		if sess.EndedAt != nil {
			ended = sess.EndedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(
			r.Stdout,
			"%s | %s | started=%s ended=%s utterances=%d | %s\n",
			sess.ID,
			title,
			sess.StartedAt.Format("2006-01-02 15:04"),
			ended,
			sess.UtteranceCount,
			sess.DocumentPath,
		)
	}
	return 0
}

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "no active session")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, "status", "")
	if handled {
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		state := resp.State
		if state == "" {
			state = "idle"
		}
		if resp.Message != "" {
			fmt.Fprintf(r.Stdout, "%s (%s)\n", state, resp.Message)
		} else {
			fmt.Fprintln(r.Stdout, state)
		}
		return 0
	}

	fmt.Fprintln(r.Stdout, "no active session")
	return 0
}

func (r Runner) forwardOrFail(ctx context.Context, command string, arg string) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	// Summary regeneration waits on the language backend, so give it the
	// same patience the daemon does.
	timeout := 500 * time.Millisecond
	if command == "regenerate" {
		timeout = 45 * time.Second
	}

	resp, handled, err := tryForwardTimeout(ctx, socketPath, command, arg, timeout)
	if !handled {
		fmt.Fprintf(r.Stderr, "error: no active benedict session\n")
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

func (r Runner) commandRun(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	startedAt := time.Now()
	led, err := ledger.Open(cfg.Session.OutputDir, startedAt)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: open session document: %v\n", err)
		return 1
	}

	var st *store.Store
	var sessionID string
	if dbPath, derr := store.DefaultDBPath(); derr == nil {
		if opened, serr := store.Open(dbPath); serr == nil {
			st = opened
			defer st.Close()
			if id, ierr := st.StartSession(led.Path(), startedAt); ierr == nil {
				sessionID = id
			} else {
				logger.Warn("unable to index session start", "error", ierr.Error())
			}
		} else {
			logger.Warn("session index unavailable", "error", serr.Error())
		}
	}

	backend := llm.NewOllama(cfg.Ollama.BaseURL, cfg.Ollama.Model, time.Duration(cfg.Ollama.TimeoutMS)*time.Millisecond)
	processor := textproc.NewProcessor(backend, logger)
	regenerator := summary.NewRegenerator(backend, logger)
	whisper := asr.NewClient(cfg.Whisper.URL, time.Duration(cfg.Whisper.TimeoutMS)*time.Millisecond)
	source := asr.NewSource(
		whisper,
		cfg.Audio.Input,
		cfg.Audio.Fallback,
		time.Duration(cfg.Whisper.PartialIntervalMS)*time.Millisecond,
		logger,
	)

	controller := capture.NewController(cfg, logger, capture.Deps{
		Source: capture.SourceFunc(func(ctx context.Context) (capture.Stream, error) {
			return source.Start(ctx)
		}),
		Transform:  processor,
		Summarizer: regenerator,
		Clipboard:  output.NewCommitter(cfg, logger),
		Ledger:     led,
		Store:      st,
		SessionID:  sessionID,
	})

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- ipc.Serve(serverCtx, listener, controller)
	}()

	fmt.Fprintf(r.Stdout, "session started: %s\n", led.Path())
	logger.Info("session started", "document", led.Path(), "socket", socketPath)

	runErr := controller.Run(ctx)
	serverCancel()
	if serverErr := <-serverErrCh; serverErr != nil {
		logger.Error("ipc server failed", "error", serverErr.Error())
	}

	if runErr != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", runErr)
		return 1
	}

	fmt.Fprintf(r.Stdout, "session closed: %s\n", led.Path())
	return 0
}

func tryForward(ctx context.Context, socketPath string, command string, arg string) (ipc.Response, bool, error) {
	return tryForwardTimeout(ctx, socketPath, command, arg, 500*time.Millisecond)
}

func tryForwardTimeout(ctx context.Context, socketPath string, command string, arg string, timeout time.Duration) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, ipc.Request{Command: command, Arg: arg}, timeout)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if isSocketMissing(err) || isConnectionRefused(err) {
		return ipc.Response{}, false, nil
	}
	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", command, err)
}

func isSocketMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) ||
		strings.Contains(err.Error(), "no such file or directory")
}

func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
