// Package textproc cleans and reshapes finished utterances through the
// language-completion backend.
package textproc

import (
	"fmt"
	"strings"
)

// Mode selects the transformation applied to one utterance.
type Mode string

const (
	ModeClean   Mode = "clean"
	ModeRewrite Mode = "rewrite"
	ModeBullets Mode = "bullets"
	ModeEmail   Mode = "email"
	ModeRaw     Mode = "raw"
)

// Modes lists every valid processing mode.
func Modes() []Mode {
	return []Mode{ModeClean, ModeRewrite, ModeBullets, ModeEmail, ModeRaw}
}

// ParseMode validates a user-supplied mode name.
func ParseMode(s string) (Mode, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch mode {
	case ModeClean, ModeRewrite, ModeBullets, ModeEmail, ModeRaw:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown processing mode %q (valid: clean, rewrite, bullets, email, raw)", s)
	}
}
