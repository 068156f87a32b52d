// Package ledger persists the append-only, timestamped record of one
// dictation session as a human-readable markdown document.
package ledger

import (
	"strings"
	"time"

	"github.com/benedict-dev/benedict/internal/textproc"
)

// Utterance is one finished push-to-talk recording and its transcripts.
// RawText is never rewritten after finalization; CleanedText is empty when
// transformation failed or was skipped.
type Utterance struct {
	Seq         uint64
	StartTime   time.Time
	EndTime     time.Time
	RawText     string
	CleanedText string
	Mode        textproc.Mode
}

// Text returns the display text: cleaned when available, raw otherwise.
func (u Utterance) Text() string {
	if strings.TrimSpace(u.CleanedText) != "" {
		return u.CleanedText
	}
	return u.RawText
}
