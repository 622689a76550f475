package oplog

import (
	"strings"
	"testing"
	"time"

	"edabench/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() core.Clock {
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	return func() core.Timestamp {
		n++
		return core.NewTimestamp(base.Add(time.Duration(n) * time.Minute))
	}
}

func TestRecordAndExportMostRecentFirst(t *testing.T) {
	l := New(WithClock(fixedClock()))
	l.Record("created age_sum")
	l.Record("created score_bin")

	require.Equal(t, 2, l.Len())
	out := l.Export()
	assert.Equal(t,
		"[2024-06-01 09:02:00] created score_bin\n[2024-06-01 09:01:00] created age_sum",
		out)
}

func TestEntriesAreCopies(t *testing.T) {
	l := New()
	l.Record("a")
	entries := l.Entries()
	entries[0].Description = "mutated"
	assert.Equal(t, "a", l.Entries()[0].Description)
	assert.False(t, l.Entries()[0].ID.String() == "")
}

func TestCapEvictsOldest(t *testing.T) {
	l := New(WithCap(2))
	l.Record("one")
	l.Record("two")
	l.Record("three")

	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "two", entries[0].Description)
	assert.Equal(t, "three", entries[1].Description)
}

func TestExportHTML(t *testing.T) {
	l := New(WithClock(fixedClock()))
	l.Record("binarized score_ok from score >= 70")

	html := string(l.ExportHTML())
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<li>")
	assert.Contains(t, html, "&gt;= 70")
	assert.True(t, strings.Contains(html, "score_ok"))
}

func TestEmptyExport(t *testing.T) {
	l := New()
	assert.Equal(t, "", l.Export())
	assert.Contains(t, string(l.ExportHTML()), "No operations recorded")
}
