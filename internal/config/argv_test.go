package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseArgv(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{name: "empty", input: "   ", want: nil},
		{name: "comment", input: "# wl-copy", want: nil},
		{name: "plain", input: "wl-copy --trim-newline", want: []string{"wl-copy", "--trim-newline"}},
		{name: "double quotes", input: `notify-send "benedict ready"`, want: []string{"notify-send", "benedict ready"}},
		{name: "single quotes", input: `sh -c 'cat > /dev/null'`, want: []string{"sh", "-c", "cat > /dev/null"}},
		{name: "escape", input: `echo hello\ world`, want: []string{"echo", "hello world"}},
		{name: "unterminated quote", input: `echo "oops`, wantErr: true},
		{name: "unterminated escape", input: `echo oops\`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			argv, err := parseArgv(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, argv)
		})
	}
}
