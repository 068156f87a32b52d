package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from  State
		on    Event
		want  State
		valid bool
	}{
		{StateIdle, EventPress, StateRecording, true},
		{StateRecording, EventRelease, StateFinalizing, true},
		{StateRecording, EventCancel, StateIdle, true},
		{StateFinalizing, EventFinalized, StateIdle, true},
		{StateError, EventReset, StateIdle, true},

		{StateIdle, EventRelease, StateIdle, false},
		{StateIdle, EventFinalized, StateIdle, false},
		{StateRecording, EventPress, StateRecording, false},
		{StateFinalizing, EventPress, StateFinalizing, false},
		{StateFinalizing, EventRelease, StateFinalizing, false},
		{StateError, EventPress, StateError, false},
	}

	for _, tc := range tests {
		got, err := Transition(tc.from, tc.on)
		if tc.valid {
			require.NoError(t, err, "%s on %s", tc.from, tc.on)
		} else {
			require.Error(t, err, "%s on %s", tc.from, tc.on)
		}
		require.Equal(t, tc.want, got, "%s on %s", tc.from, tc.on)
	}
}

func TestFailIsLegalEverywhere(t *testing.T) {
	for _, from := range []State{StateIdle, StateRecording, StateFinalizing, StateError} {
		got, err := Transition(from, EventFail)
		require.NoError(t, err)
		require.Equal(t, StateError, got)
	}
}

func TestUnknownStateStaysPut(t *testing.T) {
	got, err := Transition(State("bogus"), EventPress)
	require.Error(t, err)
	require.Equal(t, State("bogus"), got)
}
