// Package monitor runs the whole analysis: read and validate the log, pair
// events into jobs, then write the report.
package monitor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Tiliavir/jobmon/internal/logparse"
	"github.com/Tiliavir/jobmon/internal/model"
	"github.com/Tiliavir/jobmon/internal/report"
	"github.com/Tiliavir/jobmon/internal/timecalc"
	"github.com/Tiliavir/jobmon/internal/tracker"
)

// Options configures Analyze. The zero value is usable.
type Options struct {
	Logger *slog.Logger
	// WarnUnmatched logs pairing anomaly totals at warn instead of info.
	WarnUnmatched bool
}

// Result describes a finished run.
type Result struct {
	Jobs    []model.CompletedJob
	Stats   tracker.Stats
	Summary report.Summary
}

// Analyze reads every record from in before writing anything to out. A
// validation or read error is returned with nothing written.
func Analyze(in io.Reader, out io.Writer, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	entries, err := logparse.Read(in)
	if err != nil {
		return Result{}, err
	}
	logger.Debug("log parsed", "records", len(entries))

	t := tracker.New()
	t.OnAnomaly = func(kind tracker.Anomaly, e model.LogEntry) {
		logger.Debug("event dropped",
			"reason", kind.String(),
			"pid", e.PID(),
			"description", e.Description(),
			"time", e.Timestamp().Format(timecalc.ClockLayout))
	}
	for _, e := range entries {
		t.Observe(e)
	}
	jobs, stats := t.Finish()
	logStats(logger, stats, opts.WarnUnmatched)

	var total time.Duration
	for _, job := range jobs {
		total += job.Duration()
		logger.Debug("job completed",
			"pid", job.PID,
			"description", job.Description,
			"elapsed", timecalc.FormatDurationHHMMSS(job.Duration()))
	}
	if len(jobs) > 0 {
		logger.Debug("jobs total", "elapsed", timecalc.FormatDuration(int64(total/time.Second)))
	}

	sum, err := report.Write(out, jobs)
	if err != nil {
		return Result{}, fmt.Errorf("generating report: %w", err)
	}
	return Result{Jobs: jobs, Stats: stats, Summary: sum}, nil
}

func logStats(logger *slog.Logger, stats tracker.Stats, warn bool) {
	level := slog.LevelInfo
	if warn && (stats.OrphanedStarts > 0 || stats.UnmatchedEnds > 0) {
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, "events paired",
		"starts", stats.Starts,
		"ends", stats.Ends,
		"completed", stats.Completed,
		"orphaned_starts", stats.OrphanedStarts,
		"unmatched_ends", stats.UnmatchedEnds,
		"overwritten_starts", stats.OverwrittenStarts)
}
