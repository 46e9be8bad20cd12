// Package logparse turns the rows of a process lifecycle log into
// model.LogEntry values. Each row is validated before it is parsed and the
// first invalid row aborts the read.
package logparse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Tiliavir/jobmon/internal/model"
	"github.com/Tiliavir/jobmon/internal/timecalc"
)

// FieldCount is the number of fields in every row:
// timestamp, description, event type, pid.
const FieldCount = 4

const (
	fieldTimestamp = iota
	fieldDescription
	fieldEventType
	fieldPID
)

var (
	ErrColumnCount = errors.New("wrong column count")
	ErrTimestamp   = errors.New("invalid timestamp")
	ErrEventType   = errors.New("invalid event type")
	ErrPID         = errors.New("invalid pid")
)

// ValidationError reports the first rule a row broke. Record is 1-based.
type ValidationError struct {
	Record int
	Err    error
	// Value is the offending literal, or the actual column count for
	// ErrColumnCount.
	Value string
}

func (e *ValidationError) Error() string {
	var detail string
	switch e.Err {
	case ErrColumnCount:
		detail = fmt.Sprintf("Expected %d columns, found %s - Format should be: timestamp,job_description,START/END,PID",
			FieldCount, e.Value)
	case ErrTimestamp:
		detail = fmt.Sprintf("Invalid timestamp format '%s' - Expected format: HH:MM:SS (e.g., 09:30:15)", e.Value)
	case ErrEventType:
		detail = fmt.Sprintf("Invalid process type '%s' - Must be either 'START' or 'END'", e.Value)
	case ErrPID:
		detail = fmt.Sprintf("Invalid PID format '%s' - Must be a valid number", e.Value)
	default:
		detail = fmt.Sprintf("%v: %s", e.Err, e.Value)
	}
	return fmt.Sprintf("Line %d: %s", e.Record, detail)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ValidateRecord checks one row in a fixed order (column count, timestamp,
// event type, pid) and returns a *ValidationError for the first failure.
func ValidateRecord(fields []string, record int) error {
	if len(fields) != FieldCount {
		return &ValidationError{Record: record, Err: ErrColumnCount, Value: strconv.Itoa(len(fields))}
	}
	if _, err := timecalc.ParseClock(strings.TrimSpace(fields[fieldTimestamp])); err != nil {
		return &ValidationError{Record: record, Err: ErrTimestamp, Value: fields[fieldTimestamp]}
	}
	if _, err := model.ParseEventType(fields[fieldEventType]); err != nil {
		return &ValidationError{Record: record, Err: ErrEventType, Value: strings.TrimSpace(fields[fieldEventType])}
	}
	if _, err := strconv.ParseInt(strings.TrimSpace(fields[fieldPID]), 10, 64); err != nil {
		return &ValidationError{Record: record, Err: ErrPID, Value: fields[fieldPID]}
	}
	return nil
}

// ParseRecord builds a LogEntry from a row that passed ValidateRecord.
func ParseRecord(fields []string) (model.LogEntry, error) {
	if len(fields) != FieldCount {
		return model.LogEntry{}, fmt.Errorf("%w: expected %d, found %d", ErrColumnCount, FieldCount, len(fields))
	}
	return model.NewLogEntry(
		fields[fieldTimestamp],
		fields[fieldDescription],
		fields[fieldEventType],
		fields[fieldPID],
	)
}
