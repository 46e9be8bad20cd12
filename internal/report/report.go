// Package report classifies completed jobs by duration and renders the
// plain-text analysis report.
package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/Tiliavir/jobmon/internal/model"
)

// Thresholds in minutes. Both comparisons are strict.
const (
	WarningMinutes = 5.0
	ErrorMinutes   = 10.0
)

const (
	Header        = "=== JOB ANALYSIS REPORT ==="
	SummaryHeader = "=== SUMMARY ==="
)

// Summary holds the counts printed after the job lines.
type Summary struct {
	Total    int
	OK       int
	Warnings int
	Errors   int
}

// Classify maps a duration in minutes to a severity.
func Classify(minutes float64) model.Severity {
	switch {
	case minutes > ErrorMinutes:
		return model.Error
	case minutes > WarningMinutes:
		return model.Warning
	default:
		return model.OK
	}
}

// annotation is appended to WARNING and ERROR lines.
func annotation(s model.Severity) string {
	switch s {
	case model.Error:
		return fmt.Sprintf(" (took longer than %g minutes)", ErrorMinutes)
	case model.Warning:
		return fmt.Sprintf(" (took longer than %g minutes)", WarningMinutes)
	}
	return ""
}

// Line renders the report line for one job.
func Line(job model.CompletedJob) (string, model.Severity) {
	sev := Classify(job.DurationMinutes())
	return fmt.Sprintf("%s: %s%s", sev, job, annotation(sev)), sev
}

// Write renders the report for jobs, in the given order, to w.
func Write(w io.Writer, jobs []model.CompletedJob) (Summary, error) {
	bw := bufio.NewWriter(w)
	sum := Summary{Total: len(jobs)}

	fmt.Fprintln(bw, Header)
	for _, job := range jobs {
		line, sev := Line(job)
		switch sev {
		case model.Error:
			sum.Errors++
		case model.Warning:
			sum.Warnings++
		default:
			sum.OK++
		}
		fmt.Fprintln(bw, line)
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, SummaryHeader)
	fmt.Fprintf(bw, "Total jobs: %d\n", sum.Total)
	fmt.Fprintf(bw, "Warnings: %d\n", sum.Warnings)
	fmt.Fprintf(bw, "Errors: %d\n", sum.Errors)

	if err := bw.Flush(); err != nil {
		return sum, fmt.Errorf("writing report: %w", err)
	}
	return sum, nil
}
