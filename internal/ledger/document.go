package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	defaultTitle  = "Untitled Session"
	rawHeading    = "## Raw Transcription"
	summaryMarker = "\n---\n\n## Organized Summary\n\n"
)

var (
	titlePattern    = regexp.MustCompile(`[^\w\s-]`)
	filenamePattern = regexp.MustCompile(`[^\w\s-]`)
)

// document owns the on-disk markdown file backing one session.
type document struct {
	path string
}

// createDocument writes the initial session file structure.
func createDocument(dir string, startedAt time.Time) (*document, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir %q: %w", dir, err)
	}

	filename := startedAt.Format("2006-01-02_15-04") + "_session.md"
	path := filepath.Join(dir, filename)

	header := fmt.Sprintf("# %s\n\n**Session Started:** %s\n\n---\n\n%s\n\n",
		defaultTitle, startedAt.Format("2006-01-02 15:04"), rawHeading)

	if err := writeSync(path, []byte(header), os.O_CREATE|os.O_WRONLY|os.O_TRUNC); err != nil {
		return nil, fmt.Errorf("create session file %q: %w", path, err)
	}

	return &document{path: path}, nil
}

// appendEntry durably appends one timestamped transcript line.
func (d *document) appendEntry(at time.Time, text string) error {
	entry := fmt.Sprintf("**[%s]** %s\n\n", at.Format("15:04:05"), text)
	if err := writeSync(d.path, []byte(entry), os.O_APPEND|os.O_WRONLY); err != nil {
		return fmt.Errorf("append session entry: %w", err)
	}
	return nil
}

// setTitle rewrites the document heading and renames the file to include a
// filesystem-safe form of the title. The raw section bytes are untouched.
func (d *document) setTitle(title string, startedAt time.Time) error {
	title = strings.TrimSpace(titlePattern.ReplaceAllString(title, ""))
	if title == "" {
		return nil
	}
	if len(title) > 50 {
		title = strings.TrimSpace(title[:50])
	}

	content, err := os.ReadFile(d.path)
	if err != nil {
		return fmt.Errorf("read session file: %w", err)
	}

	lines := strings.SplitN(string(content), "\n", 2)
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "# ") {
		return fmt.Errorf("session file %q has no heading line", d.path)
	}

	updated := "# " + title + "\n" + lines[1]
	if err := writeSync(d.path, []byte(updated), os.O_WRONLY|os.O_TRUNC); err != nil {
		return fmt.Errorf("rewrite session heading: %w", err)
	}

	safe := filenamePattern.ReplaceAllString(title, "")
	safe = strings.ReplaceAll(safe, " ", "_")
	if len(safe) > 30 {
		safe = safe[:30]
	}
	newPath := filepath.Join(filepath.Dir(d.path), startedAt.Format("2006-01-02_15-04")+"_"+safe+".md")

	// Keep the original name when rename fails; the content rewrite stands.
	if err := os.Rename(d.path, newPath); err == nil {
		d.path = newPath
	}
	return nil
}

// replaceSummary truncates at the summary marker (when present) and writes a
// fresh summary section. Bytes above the marker are never modified.
func (d *document) replaceSummary(body string) error {
	content, err := os.ReadFile(d.path)
	if err != nil {
		return fmt.Errorf("read session file: %w", err)
	}

	raw := string(content)
	if idx := strings.Index(raw, summaryMarker); idx >= 0 {
		raw = raw[:idx]
	}

	updated := raw + summaryMarker + strings.TrimSpace(body) + "\n"
	if err := writeSync(d.path, []byte(updated), os.O_WRONLY|os.O_TRUNC); err != nil {
		return fmt.Errorf("replace session summary: %w", err)
	}
	return nil
}

// appendFooter records the session end timestamp.
func (d *document) appendFooter(endedAt time.Time) error {
	footer := fmt.Sprintf("\n---\n\n*Session ended: %s*\n", endedAt.Format("2006-01-02 15:04"))
	if err := writeSync(d.path, []byte(footer), os.O_APPEND|os.O_WRONLY); err != nil {
		return fmt.Errorf("append session footer: %w", err)
	}
	return nil
}

// writeSync writes bytes and fsyncs before returning so a crash after a
// successful append cannot lose the entry.
func writeSync(path string, data []byte, flag int) error {
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
