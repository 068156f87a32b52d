package config

import (
	"fmt"
	"strings"
	"unicode"
)

// parseArgv splits a shell-ish command string into argv parts. Single and
// double quotes group words, backslash escapes the next rune, and a leading
// "#" marks the whole line as a comment.
func parseArgv(input string) ([]string, error) {
	input = strings.TrimSpace(input)
	if input == "" || strings.HasPrefix(input, "#") {
		return nil, nil
	}

	runes := []rune(input)
	var argv []string
	var word strings.Builder
	inWord := false

	endWord := func() {
		if inWord {
			argv = append(argv, word.String())
			word.Reset()
			inWord = false
		}
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\\':
			i++
			if i == len(runes) {
				return nil, fmt.Errorf("unterminated escape sequence in command: %q", input)
			}
			word.WriteRune(runes[i])
			inWord = true
		case r == '\'' || r == '"':
			closing := indexRune(runes, i+1, r)
			if closing < 0 {
				return nil, fmt.Errorf("unterminated quote in command: %q", input)
			}
			for _, q := range runes[i+1 : closing] {
				word.WriteRune(q)
			}
			inWord = true
			i = closing
		case unicode.IsSpace(r):
			endWord()
		default:
			word.WriteRune(r)
			inWord = true
		}
	}
	endWord()

	return argv, nil
}

func indexRune(runes []rune, from int, want rune) int {
	for i := from; i < len(runes); i++ {
		if runes[i] == want {
			return i
		}
	}
	return -1
}

func mustParseArgv(input string) []string {
	argv, err := parseArgv(input)
	if err != nil {
		panic(err)
	}
	return argv
}
