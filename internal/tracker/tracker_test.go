package tracker_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Tiliavir/jobmon/internal/model"
	"github.com/Tiliavir/jobmon/internal/timecalc"
	"github.com/Tiliavir/jobmon/internal/tracker"
)

func entry(t *testing.T, ts, desc, kind, pid string) model.LogEntry {
	t.Helper()
	e, err := model.NewLogEntry(ts, desc, kind, pid)
	if err != nil {
		t.Fatalf("NewLogEntry(%s,%s,%s,%s): %v", ts, desc, kind, pid, err)
	}
	return e
}

func clock(t *testing.T, s string) time.Time {
	t.Helper()
	c, err := timecalc.ParseClock(s)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestTrackPairsByPID(t *testing.T) {
	entries := []model.LogEntry{
		entry(t, "09:00:00", "Backup", "START", "100"),
		entry(t, "09:01:00", "Report", "START", "200"),
		entry(t, "09:04:00", "Report done", "END", "200"),
		entry(t, "09:06:00", "Backup done", "END", "100"),
	}

	jobs, stats := tracker.Track(entries)

	want := []model.CompletedJob{
		{Description: "Report done", PID: 200, Start: clock(t, "09:01:00"), End: clock(t, "09:04:00")},
		{Description: "Backup done", PID: 100, Start: clock(t, "09:00:00"), End: clock(t, "09:06:00")},
	}
	if diff := cmp.Diff(want, jobs); diff != "" {
		t.Errorf("Track jobs mismatch (-want +got):\n%s", diff)
	}
	wantStats := tracker.Stats{Starts: 2, Ends: 2, Completed: 2}
	if diff := cmp.Diff(wantStats, stats); diff != "" {
		t.Errorf("Track stats mismatch (-want +got):\n%s", diff)
	}
}

func TestTrackDropsUnmatchedEvents(t *testing.T) {
	entries := []model.LogEntry{
		entry(t, "08:00:00", "Ghost", "END", "1"),
		entry(t, "09:00:00", "Orphan", "START", "2"),
		entry(t, "09:00:00", "Real", "START", "3"),
		entry(t, "09:02:00", "Real", "END", "3"),
		// Pid 3 was already closed.
		entry(t, "09:03:00", "Real", "END", "3"),
	}

	jobs, stats := tracker.Track(entries)

	if len(jobs) != 1 || jobs[0].PID != 3 {
		t.Fatalf("Track jobs = %+v, want a single job for pid 3", jobs)
	}
	wantStats := tracker.Stats{Starts: 2, Ends: 3, Completed: 1, OrphanedStarts: 1, UnmatchedEnds: 2}
	if diff := cmp.Diff(wantStats, stats); diff != "" {
		t.Errorf("Track stats mismatch (-want +got):\n%s", diff)
	}
}

func TestTrackOnlyEndYieldsNothing(t *testing.T) {
	jobs, stats := tracker.Track([]model.LogEntry{entry(t, "09:00:00", "x", "END", "9")})
	if len(jobs) != 0 {
		t.Errorf("Track jobs = %+v, want none", jobs)
	}
	if stats.UnmatchedEnds != 1 {
		t.Errorf("UnmatchedEnds = %d, want 1", stats.UnmatchedEnds)
	}
}

// A second START for an open pid replaces the first; there is no queue.
func TestTrackDuplicateStartOverwrites(t *testing.T) {
	entries := []model.LogEntry{
		entry(t, "09:00:00", "Job", "START", "7"),
		entry(t, "09:04:00", "Job", "START", "7"),
		entry(t, "09:10:00", "Job", "END", "7"),
		entry(t, "09:11:00", "Job", "END", "7"),
	}

	jobs, stats := tracker.Track(entries)

	if len(jobs) != 1 {
		t.Fatalf("Track returned %d jobs, want 1", len(jobs))
	}
	if got := jobs[0].DurationMinutes(); got != 6 {
		t.Errorf("DurationMinutes = %v, want 6 (measured from the later START)", got)
	}
	if stats.OverwrittenStarts != 1 || stats.UnmatchedEnds != 1 {
		t.Errorf("stats = %+v, want 1 overwritten start and 1 unmatched end", stats)
	}
}

func TestTrackReusesPIDAfterCompletion(t *testing.T) {
	entries := []model.LogEntry{
		entry(t, "09:00:00", "first", "START", "5"),
		entry(t, "09:01:00", "first", "END", "5"),
		entry(t, "10:00:00", "second", "START", "5"),
		entry(t, "10:30:00", "second", "END", "5"),
	}
	jobs, _ := tracker.Track(entries)
	if len(jobs) != 2 {
		t.Fatalf("Track returned %d jobs, want 2", len(jobs))
	}
	if jobs[0].DurationMinutes() != 1 || jobs[1].DurationMinutes() != 30 {
		t.Errorf("durations = %v, %v, want 1, 30", jobs[0].DurationMinutes(), jobs[1].DurationMinutes())
	}
}

// Input order is trusted; an END earlier than its START gives a negative duration.
func TestTrackKeepsNegativeDuration(t *testing.T) {
	entries := []model.LogEntry{
		entry(t, "09:10:00", "Late", "START", "4"),
		entry(t, "09:00:00", "Late", "END", "4"),
	}
	jobs, _ := tracker.Track(entries)
	if len(jobs) != 1 || jobs[0].DurationMinutes() != -10 {
		t.Fatalf("Track jobs = %+v, want one job of -10 minutes", jobs)
	}
}

func TestTrackerOnAnomaly(t *testing.T) {
	var got []tracker.Anomaly
	tr := tracker.New()
	tr.OnAnomaly = func(kind tracker.Anomaly, _ model.LogEntry) {
		got = append(got, kind)
	}
	tr.Observe(entry(t, "09:00:00", "a", "END", "1"))
	tr.Observe(entry(t, "09:00:00", "b", "START", "2"))
	tr.Observe(entry(t, "09:01:00", "b", "START", "2"))

	want := []tracker.Anomaly{tracker.UnmatchedEnd, tracker.OverwrittenStart}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("anomalies mismatch (-want +got):\n%s", diff)
	}
}

func TestTrackerFinishResets(t *testing.T) {
	tr := tracker.New()
	tr.Observe(entry(t, "09:00:00", "a", "START", "1"))
	tr.Observe(entry(t, "09:01:00", "a", "END", "1"))
	tr.Observe(entry(t, "09:02:00", "b", "START", "2"))
	if jobs, stats := tr.Finish(); len(jobs) != 1 || stats.OrphanedStarts != 1 {
		t.Fatalf("first Finish = %d jobs, %+v", len(jobs), stats)
	}

	tr.Observe(entry(t, "09:05:00", "b", "END", "2"))
	jobs, stats := tr.Finish()
	if len(jobs) != 0 || stats.UnmatchedEnds != 1 {
		t.Errorf("second Finish = %d jobs, %+v; want no jobs and 1 unmatched end", len(jobs), stats)
	}
}
