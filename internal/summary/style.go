// Package summary regenerates the organized document layered over the raw
// session ledger.
package summary

import (
	"fmt"
	"strings"
)

// Style selects the restructuring applied to the whole session content.
type Style string

const (
	StyleOrganize     Style = "organize"
	StyleProfessional Style = "professional"
	StyleSummarize    Style = "summarize"
	StyleActionItems  Style = "action_items"
)

// Styles lists every valid regeneration style.
func Styles() []Style {
	return []Style{StyleOrganize, StyleProfessional, StyleSummarize, StyleActionItems}
}

// ParseStyle validates a user-supplied style name.
func ParseStyle(s string) (Style, error) {
	style := Style(strings.ToLower(strings.TrimSpace(s)))
	switch style {
	case StyleOrganize, StyleProfessional, StyleSummarize, StyleActionItems:
		return style, nil
	default:
		return "", fmt.Errorf("unknown summary style %q (valid: organize, professional, summarize, action_items)", s)
	}
}
