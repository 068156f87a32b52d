package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaultIsHelp(t *testing.T) {
	parsed, err := Parse(nil)
	require.NoError(t, err)
	require.Equal(t, CommandHelp, parsed.Command)
	require.True(t, parsed.ShowHelp)
}

func TestParseCommands(t *testing.T) {
	for _, cmd := range []Command{CommandRun, CommandPress, CommandRelease, CommandCancel, CommandStatus, CommandClose, CommandSessions, CommandDevices, CommandDoctor, CommandVersion} {
		parsed, err := Parse([]string{string(cmd)})
		require.NoError(t, err)
		require.Equal(t, cmd, parsed.Command)
		require.False(t, parsed.ShowHelp)
	}
}

func TestParseModeWithArgument(t *testing.T) {
	parsed, err := Parse([]string{"mode", "bullets"})
	require.NoError(t, err)
	require.Equal(t, CommandMode, parsed.Command)
	require.Equal(t, "bullets", parsed.Arg)
}

func TestParseModeWithoutArgument(t *testing.T) {
	parsed, err := Parse([]string{"mode"})
	require.NoError(t, err)
	require.Equal(t, CommandMode, parsed.Command)
	require.Empty(t, parsed.Arg)
}

func TestParseRegenerateWithStyle(t *testing.T) {
	parsed, err := Parse([]string{"regenerate", "action_items"})
	require.NoError(t, err)
	require.Equal(t, CommandRegenerate, parsed.Command)
	require.Equal(t, "action_items", parsed.Arg)
}

func TestParseConfigFlag(t *testing.T) {
	parsed, err := Parse([]string{"--config", "/tmp/custom.conf", "status"})
	require.NoError(t, err)
	require.Equal(t, CommandStatus, parsed.Command)
	require.Equal(t, "/tmp/custom.conf", parsed.ConfigPath)
}

func TestParseConfigFlagMissingPath(t *testing.T) {
	_, err := Parse([]string{"--config"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "requires a path")
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse([]string{"bogus"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown command")
}

func TestParseUnknownFlag(t *testing.T) {
	_, err := Parse([]string{"--bogus"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown flag")
}

func TestParseRejectsTrailingArguments(t *testing.T) {
	_, err := Parse([]string{"status", "extra"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected arguments")

	_, err = Parse([]string{"mode", "bullets", "extra"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected arguments")
}

func TestParseVersionFlag(t *testing.T) {
	parsed, err := Parse([]string{"--version"})
	require.NoError(t, err)
	require.Equal(t, CommandVersion, parsed.Command)
}

func TestHelpTextMentionsCommands(t *testing.T) {
	text := HelpText("benedict")
	for _, want := range []string{"run", "press", "release", "mode", "regenerate", "sessions", "doctor", "--config"} {
		require.Contains(t, text, want)
	}
}
