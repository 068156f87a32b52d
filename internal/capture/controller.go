package capture

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/benedict-dev/benedict/internal/config"
	"github.com/benedict-dev/benedict/internal/fsm"
	"github.com/benedict-dev/benedict/internal/ledger"
	"github.com/benedict-dev/benedict/internal/store"
	"github.com/benedict-dev/benedict/internal/summary"
	"github.com/benedict-dev/benedict/internal/textproc"
)

type event int

const (
	eventPress event = iota + 1
	eventRelease
	eventCancel
)

// finalizedUtterance carries one stopped stream's output back to the loop.
type finalizedUtterance struct {
	start time.Time
	end   time.Time
	raw   string
	mode  textproc.Mode
	err   error
}

// Deps bundles the collaborators the controller orchestrates.
type Deps struct {
	Source     Source
	Transform  Transformer
	Summarizer Summarizer
	Clipboard  Committer
	Ledger     *ledger.Ledger
	Store      *store.Store
	SessionID  string
}

// Controller owns the push-to-talk lifecycle for one dictation session.
//
// A single loop goroutine consumes press/release/cancel events and stream
// finalization results; a single commit goroutine transforms and appends
// finalized utterances in press order, so ledger entries stay ordered even
// when transforms are slow.
type Controller struct {
	cfg    config.Config
	logger *slog.Logger

	source     Source
	transform  Transformer
	summarizer Summarizer
	clipboard  Committer
	ledger     *ledger.Ledger
	store      *store.Store
	sessionID  string

	finalizeTimeout  time.Duration
	transformTimeout time.Duration

	mu          sync.RWMutex
	state       fsm.State
	mode        textproc.Mode
	livePartial string
	fatalErr    error

	events    chan event
	finalized chan finalizedUtterance

	commitQueue chan ledger.Utterance
	commitDone  chan struct{}

	closeCh   chan struct{}
	closeOnce sync.Once
	done      chan struct{}
}

// NewController constructs a session controller with safe default fallbacks.
func NewController(cfg config.Config, logger *slog.Logger, deps Deps) *Controller {
	if deps.Transform == nil {
		deps.Transform = passthroughTransformer{}
	}
	if deps.Clipboard == nil {
		deps.Clipboard = CommitFunc(func(context.Context, string) error { return nil })
	}

	mode, err := textproc.ParseMode(cfg.Mode)
	if err != nil {
		mode = textproc.ModeClean
	}

	return &Controller{
		cfg:              cfg,
		logger:           logger,
		source:           deps.Source,
		transform:        deps.Transform,
		summarizer:       deps.Summarizer,
		clipboard:        deps.Clipboard,
		ledger:           deps.Ledger,
		store:            deps.Store,
		sessionID:        deps.SessionID,
		finalizeTimeout:  msOrDefault(cfg.Whisper.TimeoutMS, 20*time.Second),
		transformTimeout: msOrDefault(cfg.Ollama.TimeoutMS, 30*time.Second),
		state:            fsm.StateIdle,
		mode:             mode,
		events:           make(chan event, 8),
		finalized:        make(chan finalizedUtterance, 1),
		commitQueue:      make(chan ledger.Utterance, 64),
		commitDone:       make(chan struct{}),
		closeCh:          make(chan struct{}),
		done:             make(chan struct{}),
	}
}

func msOrDefault(ms int, fallback time.Duration) time.Duration {
	if ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

// State returns the current lifecycle state snapshot.
func (c *Controller) State() fsm.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Mode returns the transform mode applied to the next press.
func (c *Controller) Mode() textproc.Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// SetMode switches the transform mode for subsequent utterances.
func (c *Controller) SetMode(mode textproc.Mode) {
	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()
}

// LivePartial returns the interim transcript of the in-flight utterance.
func (c *Controller) LivePartial() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.livePartial
}

// Done is closed after Run finishes session teardown.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Shutdown asks the run loop to drain and close the session.
func (c *Controller) Shutdown() {
	c.closeOnce.Do(func() { close(c.closeCh) })
}

// transition applies one FSM event to the controller state.
func (c *Controller) transition(event fsm.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fsm.Transition(c.state, event)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

func (c *Controller) setLivePartial(text string) {
	c.mu.Lock()
	c.livePartial = text
	c.mu.Unlock()
}

func (c *Controller) fatal() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fatalErr
}

// latchFatal records a persistence failure and moves the session to the
// error state. Presses are rejected from here on; the document keeps what
// was durably appended.
func (c *Controller) latchFatal(err error) {
	c.mu.Lock()
	if c.fatalErr == nil {
		c.fatalErr = err
	}
	c.state = fsm.StateError
	c.mu.Unlock()
	c.logError("session halted after ledger write failure", "error", err.Error())
}

// Run executes the session lifecycle until ctx cancellation or Shutdown,
// then drains pending commits and closes the document.
func (c *Controller) Run(ctx context.Context) error {
	go c.commitLoop()
	defer close(c.done)

	var (
		stream     Stream
		recStart   time.Time
		recMode    textproc.Mode
		pending    bool
		finalizing bool
		seq        uint64
	)

	startRecording := func() {
		if c.fatal() != nil {
			return
		}
		if err := c.transition(fsm.EventPress); err != nil {
			return
		}
		s, err := c.source.Start(ctx)
		if err != nil {
			c.logError("unable to start recording", "error", err.Error())
			c.toErrorAndReset()
			return
		}
		stream = s
		recStart = time.Now()
		recMode = c.Mode()
		go c.forwardPartials(s)
		c.logInfo("recording started", "mode", string(recMode))
	}

	handleFinalized := func(fin finalizedUtterance) {
		finalizing = false
		c.setLivePartial("")
		_ = c.transition(fsm.EventFinalized)

		raw := strings.TrimSpace(fin.raw)
		switch {
		case fin.err != nil:
			c.logError("speech recognition failed; utterance dropped", "error", fin.err.Error())
		case raw == "":
			c.logInfo("no speech detected; utterance discarded")
		default:
			seq++
			c.commitQueue <- ledger.Utterance{
				Seq:       seq,
				StartTime: fin.start,
				EndTime:   fin.end,
				RawText:   raw,
				Mode:      fin.mode,
			}
		}

		if pending {
			pending = false
			startRecording()
		}
	}

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-c.closeCh:
			break loop
		case fin := <-c.finalized:
			handleFinalized(fin)
		case ev := <-c.events:
			switch ev {
			case eventPress:
				switch c.State() {
				case fsm.StateIdle:
					startRecording()
				case fsm.StateFinalizing:
					// Depth-one queue: one press may wait out finalization.
					pending = true
				}
			case eventRelease:
				if c.State() == fsm.StateFinalizing {
					// A tap that pressed and released while the prior
					// utterance finalizes never opened a stream; drop
					// the pair instead of stranding a recording with
					// no release left to stop it.
					pending = false
					continue
				}
				if stream == nil || c.State() != fsm.StateRecording {
					continue
				}
				if err := c.transition(fsm.EventRelease); err != nil {
					continue
				}
				finalizing = true
				go c.finalize(stream, recStart, recMode)
				stream = nil
			case eventCancel:
				if c.State() == fsm.StateFinalizing {
					pending = false
					continue
				}
				if stream == nil || c.State() != fsm.StateRecording {
					continue
				}
				stream.Cancel()
				stream = nil
				pending = false
				c.setLivePartial("")
				_ = c.transition(fsm.EventCancel)
				c.logInfo("recording cancelled; utterance discarded")
			}
		}
	}

	// Teardown: discard any live recording, but let an in-flight
	// finalization land so its utterance is not lost. A press still
	// queued behind that finalization must not reopen the stream.
	pending = false
	if stream != nil {
		stream.Cancel()
		c.setLivePartial("")
	}
	if finalizing {
		handleFinalized(<-c.finalized)
	}

	close(c.commitQueue)
	<-c.commitDone

	c.finishSession()
	return c.fatal()
}

// finalize stops one stream and reports its transcript back to the loop.
func (c *Controller) finalize(stream Stream, start time.Time, mode textproc.Mode) {
	end := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), c.finalizeTimeout)
	defer cancel()

	raw, err := stream.Stop(ctx)
	c.finalized <- finalizedUtterance{start: start, end: end, raw: raw, mode: mode, err: err}
}

// forwardPartials mirrors interim transcripts into the live partial cell.
func (c *Controller) forwardPartials(stream Stream) {
	for partial := range stream.Partials() {
		c.setLivePartial(partial)
	}
}

// commitLoop transforms and appends finalized utterances strictly in press
// order. A ledger append failure latches the fatal state and stops the loop.
func (c *Controller) commitLoop() {
	defer close(c.commitDone)

	for u := range c.commitQueue {
		tctx, cancel := context.WithTimeout(context.Background(), c.transformTimeout)
		cleaned, err := c.transform.Process(tctx, u.RawText, u.Mode)
		cancel()
		if err != nil {
			c.logWarn("utterance cleaning degraded; keeping raw text", "seq", u.Seq, "error", err.Error())
		} else {
			u.CleanedText = cleaned
		}

		if err := c.ledger.Append(u); err != nil {
			c.latchFatal(err)
			return
		}

		if u.Seq == 1 {
			c.assignTitle(u)
		}

		if err := c.clipboard.Commit(context.Background(), u.Text()); err != nil {
			c.logWarn("clipboard copy failed", "seq", u.Seq, "error", err.Error())
		}
	}
}

// assignTitle derives the session title from the first utterance.
func (c *Controller) assignTitle(u ledger.Utterance) {
	if c.summarizer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.transformTimeout)
	defer cancel()

	title, err := c.summarizer.Title(ctx, u.Text())
	if err != nil || strings.TrimSpace(title) == "" {
		if err != nil {
			c.logWarn("session title generation failed; keeping default title", "error", err.Error())
		}
		return
	}

	if err := c.ledger.SetTitle(title); err != nil {
		c.logWarn("unable to apply session title", "error", err.Error())
		return
	}
	c.logInfo("session titled", "title", title)

	if c.store != nil && c.sessionID != "" {
		if err := c.store.SetTitle(c.sessionID, title); err != nil {
			c.logWarn("unable to index session title", "error", err.Error())
		}
		if err := c.store.SetDocumentPath(c.sessionID, c.ledger.Path()); err != nil {
			c.logWarn("unable to index document path", "error", err.Error())
		}
	}
}

// Regenerate rebuilds the organized summary section from the full ledger.
func (c *Controller) Regenerate(ctx context.Context, style summary.Style) error {
	if c.summarizer == nil {
		return fmt.Errorf("summary backend not configured")
	}
	utterances := c.ledger.All()
	if len(utterances) == 0 {
		return fmt.Errorf("no utterances to organize yet")
	}

	body, err := c.summarizer.Regenerate(ctx, utterances, style)
	if body != "" {
		if werr := c.ledger.WriteSummary(body); werr != nil {
			return fmt.Errorf("write summary: %w", werr)
		}
	}
	if err != nil {
		return fmt.Errorf("summary degraded to raw concatenation: %w", err)
	}
	return nil
}

// finishSession writes the closing summary and footer after the queue drains.
func (c *Controller) finishSession() {
	endedAt := time.Now()

	if c.fatal() == nil && c.cfg.Session.OrganizeOnClose && c.ledger.Len() > 0 {
		style, err := summary.ParseStyle(c.cfg.Session.Style)
		if err != nil {
			style = summary.StyleOrganize
		}
		ctx, cancel := context.WithTimeout(context.Background(), c.transformTimeout)
		if err := c.Regenerate(ctx, style); err != nil {
			c.logWarn("closing summary regeneration failed", "error", err.Error())
		}
		cancel()
	}

	if err := c.ledger.Close(endedAt); err != nil {
		c.logWarn("unable to close session document", "error", err.Error())
	}

	if c.store != nil && c.sessionID != "" {
		if err := c.store.EndSession(c.sessionID, endedAt, c.ledger.Len()); err != nil {
			c.logWarn("unable to close session index row", "error", err.Error())
		}
	}
	c.logInfo("session closed", "utterances", c.ledger.Len(), "document", c.ledger.Path())
}

// toErrorAndReset transitions to error and back to idle best-effort.
func (c *Controller) toErrorAndReset() {
	_ = c.transition(fsm.EventFail)
	_ = c.transition(fsm.EventReset)
}

func (c *Controller) logInfo(message string, args ...any) {
	if c.logger != nil {
		c.logger.Info(message, args...)
	}
}

func (c *Controller) logWarn(message string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(message, args...)
	}
}

func (c *Controller) logError(message string, args ...any) {
	if c.logger != nil {
		c.logger.Error(message, args...)
	}
}
