package oplog

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"edabench/domain/core"

	"github.com/gomarkdown/markdown"
)

// Entry is one immutable record of a dataset mutation
type Entry struct {
	ID          core.EntryID   `json:"id"`
	Timestamp   core.Timestamp `json:"timestamp"`
	Description string         `json:"description"`
}

// Line renders the entry the way Export lists it
func (e Entry) Line() string {
	return fmt.Sprintf("[%s] %s", e.Timestamp, e.Description)
}

// Log is an append-only, timestamped record of dataset mutations.
// A positive cap evicts the oldest entries once exceeded.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	cap     int
	clock   core.Clock
}

// Option configures a Log
type Option func(*Log)

// WithCap bounds the number of retained entries; 0 means unbounded
func WithCap(n int) Option {
	return func(l *Log) { l.cap = n }
}

// WithClock overrides the timestamp source
func WithClock(c core.Clock) Option {
	return func(l *Log) { l.clock = c }
}

// New creates an empty log
func New(opts ...Option) *Log {
	l := &Log{clock: core.SystemClock()}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Record appends a description stamped with the current time
func (l *Log) Record(description string) Entry {
	e := Entry{ID: core.NewEntryID(), Timestamp: l.clock(), Description: description}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	if l.cap > 0 && len(l.entries) > l.cap {
		l.entries = append([]Entry(nil), l.entries[len(l.entries)-l.cap:]...)
	}
	return e
}

// Len returns the number of retained entries
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Entries returns retained entries oldest first
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Entry(nil), l.entries...)
}

// Export renders the log most recent first, one entry per line
func (l *Log) Export() string {
	entries := l.Entries()
	lines := make([]string, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		lines = append(lines, entries[i].Line())
	}
	return strings.Join(lines, "\n")
}

// ExportHTML renders the exported log as an HTML list
func (l *Log) ExportHTML() []byte {
	entries := l.Entries()
	var md bytes.Buffer
	md.WriteString("# Operation log\n\n")
	if len(entries) == 0 {
		md.WriteString("_No operations recorded._\n")
	}
	for i := len(entries) - 1; i >= 0; i-- {
		fmt.Fprintf(&md, "- `%s` %s\n", entries[i].Timestamp, escapeMarkdown(entries[i].Description))
	}
	return markdown.ToHTML(md.Bytes(), nil, nil)
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
