// Package tracker pairs START and END log entries by pid into completed jobs.
package tracker

import (
	"time"

	"github.com/Tiliavir/jobmon/internal/model"
)

// Stats counts what happened to every observed entry. None of these
// affect the completed jobs; they exist so callers can surface pairing
// anomalies.
type Stats struct {
	Starts    int
	Ends      int
	Completed int
	// OrphanedStarts are STARTs still open when Finish is called.
	OrphanedStarts int
	// UnmatchedEnds are ENDs that arrived with no open START for their pid.
	UnmatchedEnds int
	// OverwrittenStarts are STARTs replaced by a later START for the same pid.
	OverwrittenStarts int
}

// Tracker holds the open STARTs of a single pass over a log. Entries must be
// observed in input order; input order is trusted as time order.
type Tracker struct {
	open      map[int64]time.Time
	completed []model.CompletedJob
	stats     Stats
	// OnAnomaly, if set, is called for each unmatched END and overwritten START.
	OnAnomaly func(kind Anomaly, entry model.LogEntry)
}

// Anomaly classifies a pairing event that does not produce a job.
type Anomaly uint8

const (
	UnmatchedEnd Anomaly = iota + 1
	OverwrittenStart
)

func (a Anomaly) String() string {
	switch a {
	case UnmatchedEnd:
		return "unmatched end"
	case OverwrittenStart:
		return "overwritten start"
	}
	return "unknown"
}

// New returns an empty Tracker.
func New() *Tracker {
	return &Tracker{open: make(map[int64]time.Time)}
}

// Observe feeds one entry. A START records its timestamp for the pid,
// replacing any START still open for it. An END closes the open START for
// its pid and emits a job; an END with nothing open is dropped.
func (t *Tracker) Observe(e model.LogEntry) {
	switch e.EventType() {
	case model.Start:
		t.stats.Starts++
		if _, ok := t.open[e.PID()]; ok {
			t.stats.OverwrittenStarts++
			t.report(OverwrittenStart, e)
		}
		t.open[e.PID()] = e.Timestamp()
	case model.End:
		t.stats.Ends++
		start, ok := t.open[e.PID()]
		if !ok {
			t.stats.UnmatchedEnds++
			t.report(UnmatchedEnd, e)
			return
		}
		delete(t.open, e.PID())
		t.completed = append(t.completed, model.CompletedJob{
			Description: e.Description(),
			PID:         e.PID(),
			Start:       start,
			End:         e.Timestamp(),
		})
		t.stats.Completed++
	}
}

// Finish returns the completed jobs in the order their END entries were
// observed, and the final counters. STARTs still open are discarded.
func (t *Tracker) Finish() ([]model.CompletedJob, Stats) {
	stats := t.stats
	stats.OrphanedStarts = len(t.open)
	jobs := t.completed
	t.open = make(map[int64]time.Time)
	t.completed = nil
	t.stats = Stats{}
	return jobs, stats
}

func (t *Tracker) report(kind Anomaly, e model.LogEntry) {
	if t.OnAnomaly != nil {
		t.OnAnomaly(kind, e)
	}
}

// Track runs a fresh Tracker over entries.
func Track(entries []model.LogEntry) ([]model.CompletedJob, Stats) {
	t := New()
	for _, e := range entries {
		t.Observe(e)
	}
	return t.Finish()
}
