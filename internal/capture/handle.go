package capture

import (
	"context"
	"fmt"
	"strings"

	"github.com/benedict-dev/benedict/internal/fsm"
	"github.com/benedict-dev/benedict/internal/ipc"
	"github.com/benedict-dev/benedict/internal/summary"
	"github.com/benedict-dev/benedict/internal/textproc"
)

// Handle serves IPC commands for the active session.
func (c *Controller) Handle(ctx context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case "press":
		return c.requestPress()
	case "release":
		return c.requestRelease()
	case "cancel":
		return c.requestCancel()
	case "mode":
		return c.handleMode(req.Arg)
	case "regenerate":
		return c.handleRegenerate(ctx, req.Arg)
	case "status":
		return c.handleStatus()
	case "close":
		c.Shutdown()
		return ipc.Response{OK: true, State: string(c.State()), Message: "closing session"}
	default:
		return ipc.Response{OK: false, State: string(c.State()), Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}

// requestPress enqueues a press when state permits it.
func (c *Controller) requestPress() ipc.Response {
	if err := c.fatal(); err != nil {
		return ipc.Response{OK: false, State: string(fsm.StateError), Error: ErrFatal.Error()}
	}

	state := c.State()
	switch state {
	case fsm.StateRecording:
		return ipc.Response{OK: true, State: string(state), Message: "already recording"}
	case fsm.StateError:
		return ipc.Response{OK: false, State: string(state), Error: "session is in error state"}
	}

	select {
	case c.events <- eventPress:
	default:
		return ipc.Response{OK: false, State: string(state), Error: "event queue full"}
	}

	if state == fsm.StateFinalizing {
		return ipc.Response{OK: true, State: string(state), Message: "press queued until finalization completes"}
	}
	return ipc.Response{OK: true, State: string(state), Message: "recording requested"}
}

// requestRelease enqueues a release when a recording is in flight. During
// finalization the release is still forwarded so the loop can retire a
// queued press whose recording never started.
func (c *Controller) requestRelease() ipc.Response {
	state := c.State()
	if state != fsm.StateRecording && state != fsm.StateFinalizing {
		return ipc.Response{OK: false, State: string(state), Error: fmt.Sprintf("cannot release from state %s", state)}
	}

	select {
	case c.events <- eventRelease:
		if state == fsm.StateFinalizing {
			return ipc.Response{OK: true, State: string(state), Message: "release noted; no recording in flight"}
		}
		return ipc.Response{OK: true, State: string(state), Message: "finalizing utterance"}
	default:
		return ipc.Response{OK: false, State: string(state), Error: "event queue full"}
	}
}

// requestCancel enqueues a cancel when a recording is in flight or a press
// is still queued behind a finalization.
func (c *Controller) requestCancel() ipc.Response {
	state := c.State()
	if state != fsm.StateRecording && state != fsm.StateFinalizing {
		return ipc.Response{OK: false, State: string(state), Error: fmt.Sprintf("cannot cancel from state %s", state)}
	}

	select {
	case c.events <- eventCancel:
		return ipc.Response{OK: true, State: string(state), Message: "cancel requested"}
	default:
		return ipc.Response{OK: false, State: string(state), Error: "event queue full"}
	}
}

// handleMode reports or switches the transform mode for subsequent presses.
func (c *Controller) handleMode(arg string) ipc.Response {
	state := string(c.State())
	if strings.TrimSpace(arg) == "" {
		return ipc.Response{OK: true, State: state, Message: fmt.Sprintf("mode %s", c.Mode())}
	}

	mode, err := textproc.ParseMode(arg)
	if err != nil {
		return ipc.Response{OK: false, State: state, Error: err.Error()}
	}
	c.SetMode(mode)
	return ipc.Response{OK: true, State: state, Message: fmt.Sprintf("mode set to %s; applies to the next press", mode)}
}

// handleRegenerate rebuilds the organized summary on demand.
func (c *Controller) handleRegenerate(ctx context.Context, arg string) ipc.Response {
	state := string(c.State())

	styleName := strings.TrimSpace(arg)
	if styleName == "" {
		styleName = c.cfg.Session.Style
	}
	style, err := summary.ParseStyle(styleName)
	if err != nil {
		return ipc.Response{OK: false, State: state, Error: err.Error()}
	}

	rctx, cancel := context.WithTimeout(ctx, c.transformTimeout)
	defer cancel()
	if err := c.Regenerate(rctx, style); err != nil {
		return ipc.Response{OK: false, State: state, Error: err.Error()}
	}
	return ipc.Response{OK: true, State: state, Message: fmt.Sprintf("summary regenerated (%s)", style)}
}

// handleStatus reports session state, mode, and document progress.
func (c *Controller) handleStatus() ipc.Response {
	state := c.State()
	message := fmt.Sprintf("mode=%s utterances=%d document=%s", c.Mode(), c.ledger.Len(), c.ledger.Path())
	if partial := c.LivePartial(); partial != "" && state == fsm.StateRecording {
		message += fmt.Sprintf(" partial=%q", partial)
	}
	if err := c.fatal(); err != nil {
		return ipc.Response{OK: false, State: string(state), Message: message, Error: err.Error()}
	}
	return ipc.Response{OK: true, State: string(state), Message: message}
}
