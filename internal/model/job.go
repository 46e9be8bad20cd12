package model

import (
	"fmt"
	"time"

	"github.com/Tiliavir/jobmon/internal/timecalc"
)

// CompletedJob is a START/END pair matched on pid. Description comes from
// the END row.
type CompletedJob struct {
	Description string
	PID         int64
	Start       time.Time
	End         time.Time
}

// Duration is End minus Start. It is negative when the END row precedes
// its START in wall-clock time.
func (j CompletedJob) Duration() time.Duration {
	return j.End.Sub(j.Start)
}

// DurationMinutes returns the duration in minutes with sub-minute precision.
func (j CompletedJob) DurationMinutes() float64 {
	return timecalc.Minutes(j.Start, j.End)
}

func (j CompletedJob) String() string {
	return fmt.Sprintf("Job: %s (PID: %d) - Duration: %s minutes",
		j.Description, j.PID, timecalc.FormatMinutes(j.DurationMinutes()))
}

// Severity is the classification of a completed job's duration.
type Severity uint8

const (
	OK Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case OK:
		return "OK"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	}
	return fmt.Sprintf("Severity(%d)", uint8(s))
}
