package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrClosed indicates an append after the ledger was finalized.
var ErrClosed = errors.New("session ledger is closed")

// Ledger is the durable, append-only record of one session's utterances.
// One ledger exclusively owns its backing file; no second writer may share it.
type Ledger struct {
	mu         sync.Mutex
	doc        *document
	startedAt  time.Time
	utterances []Utterance
	closed     bool
}

// Open creates the session document under dir and returns the ledger.
func Open(dir string, startedAt time.Time) (*Ledger, error) {
	doc, err := createDocument(dir, startedAt)
	if err != nil {
		return nil, err
	}
	return &Ledger{doc: doc, startedAt: startedAt}, nil
}

// Append durably persists one finalized utterance before returning.
// Appends must arrive in start_time order; out-of-order writes are rejected
// so callers serialize finalization rather than interleave it.
func (l *Ledger) Append(u Utterance) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	if n := len(l.utterances); n > 0 {
		last := l.utterances[n-1]
		if u.StartTime.Before(last.StartTime) {
			return fmt.Errorf("utterance start %s precedes last appended start %s",
				u.StartTime.Format(time.RFC3339), last.StartTime.Format(time.RFC3339))
		}
	}

	if err := l.doc.appendEntry(u.StartTime, u.Text()); err != nil {
		return err
	}

	l.utterances = append(l.utterances, u)
	return nil
}

// All returns the ordered utterance sequence as a copy.
func (l *Ledger) All() []Utterance {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Utterance, len(l.utterances))
	copy(out, l.utterances)
	return out
}

// Len reports the number of appended utterances.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.utterances)
}

// Path returns the current backing file path.
func (l *Ledger) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.doc.path
}

// SetTitle retitles the document and renames its file.
func (l *Ledger) SetTitle(title string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	return l.doc.setTitle(title, l.startedAt)
}

// WriteSummary replaces the organized-summary section. The raw section is
// never touched; repeated regenerations each replace the previous summary.
func (l *Ledger) WriteSummary(body string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	return l.doc.replaceSummary(body)
}

// Close finalizes the backing document with the session-end footer.
// Further appends fail with ErrClosed.
func (l *Ledger) Close(endedAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.doc.appendFooter(endedAt)
}
