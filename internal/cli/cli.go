// Package cli parses the benedict command line surface.
package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandRun        Command = "run"
	CommandPress      Command = "press"
	CommandRelease    Command = "release"
	CommandCancel     Command = "cancel"
	CommandMode       Command = "mode"
	CommandRegenerate Command = "regenerate"
	CommandStatus     Command = "status"
	CommandClose      Command = "close"
	CommandSessions   Command = "sessions"
	CommandDevices    Command = "devices"
	CommandDoctor     Command = "doctor"
	CommandVersion    Command = "version"
	CommandHelp       Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandRun:        {},
	CommandPress:      {},
	CommandRelease:    {},
	CommandCancel:     {},
	CommandMode:       {},
	CommandRegenerate: {},
	CommandStatus:     {},
	CommandClose:      {},
	CommandSessions:   {},
	CommandDevices:    {},
	CommandDoctor:     {},
	CommandVersion:    {},
	CommandHelp:       {},
}

// argCommands may carry one trailing positional argument.
var argCommands = map[Command]struct{}{
	CommandMode:       {},
	CommandRegenerate: {},
}

type Parsed struct {
	Command    Command
	Arg        string
	ConfigPath string
	ShowHelp   bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp

			rest := args[i+1:]
			if _, takesArg := argCommands[cmd]; takesArg && len(rest) > 0 {
				parsed.Arg = rest[0]
				rest = rest[1:]
			}
			if len(rest) > 0 {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}
			return parsed, nil
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command>

Commands:
  run                 Start the dictation session daemon
  press               Begin recording an utterance (hold-to-talk press)
  release             Finish the utterance and append it to the session
  cancel              Discard the in-flight utterance
  mode [MODE]         Show or set the cleaning mode (clean, rewrite, bullets, email, raw)
  regenerate [STYLE]  Rebuild the organized summary (organize, professional, summarize, action_items)
  status              Print session state and document progress
  close               Finish the session and write the closing summary
  sessions            List recent sessions from the index
  devices             List available input devices
  doctor              Run configuration and environment checks
  version             Print version information
  help                Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/benedict/config.conf)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
