// Package fsm models the push-to-talk lifecycle as a pure transition table.
package fsm

import "fmt"

// State is one phase of the capture lifecycle.
type State string

// Event is an input that may move the lifecycle between states.
type Event string

const (
	StateIdle       State = "idle"
	StateRecording  State = "recording"
	StateFinalizing State = "finalizing"
	StateError      State = "error"
)

const (
	EventPress     Event = "press"
	EventRelease   Event = "release"
	EventFinalized Event = "finalized"
	EventCancel    Event = "cancel"
	EventFail      Event = "fail"
	EventReset     Event = "reset"
)

type edge struct {
	from State
	on   Event
}

// transitions omits EventFail, which is legal from every state.
var transitions = map[edge]State{
	{StateIdle, EventPress}:           StateRecording,
	{StateRecording, EventRelease}:    StateFinalizing,
	{StateRecording, EventCancel}:     StateIdle,
	{StateFinalizing, EventFinalized}: StateIdle,
	{StateError, EventReset}:          StateIdle,
}

// Transition returns the state reached by applying event to current. An
// undefined pair leaves the state unchanged and reports an error.
func Transition(current State, event Event) (State, error) {
	if event == EventFail {
		return StateError, nil
	}
	if next, ok := transitions[edge{current, event}]; ok {
		return next, nil
	}
	return current, fmt.Errorf("invalid transition: %s --(%s)--> ?", current, event)
}
