package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Tiliavir/jobmon/internal/timecalc"
)

// EventType marks a log row as the start or the end of a process.
type EventType uint8

const (
	Start EventType = iota + 1
	End
)

// ParseEventType accepts exactly "START" or "END" after trimming
// surrounding whitespace. Matching is case-sensitive.
func ParseEventType(s string) (EventType, error) {
	switch strings.TrimSpace(s) {
	case "START":
		return Start, nil
	case "END":
		return End, nil
	}
	return 0, fmt.Errorf("unknown event type %q", s)
}

func (t EventType) String() string {
	switch t {
	case Start:
		return "START"
	case End:
		return "END"
	}
	return fmt.Sprintf("EventType(%d)", uint8(t))
}

// LogEntry is one parsed row of the input log. Its fields are only
// reachable through accessors so a value cannot change after NewLogEntry.
type LogEntry struct {
	timestamp   time.Time
	description string
	eventType   EventType
	pid         int64
}

// NewLogEntry builds a LogEntry from raw field strings. Every field is
// trimmed before parsing.
func NewLogEntry(timestamp, description, eventType, pid string) (LogEntry, error) {
	ts, err := timecalc.ParseClock(strings.TrimSpace(timestamp))
	if err != nil {
		return LogEntry{}, err
	}
	et, err := ParseEventType(eventType)
	if err != nil {
		return LogEntry{}, err
	}
	id, err := strconv.ParseInt(strings.TrimSpace(pid), 10, 64)
	if err != nil {
		return LogEntry{}, fmt.Errorf("parsing pid %q: %w", pid, err)
	}
	return LogEntry{
		timestamp:   ts,
		description: strings.TrimSpace(description),
		eventType:   et,
		pid:         id,
	}, nil
}

func (e LogEntry) Timestamp() time.Time { return e.timestamp }

func (e LogEntry) Description() string { return e.description }

func (e LogEntry) EventType() EventType { return e.eventType }

func (e LogEntry) PID() int64 { return e.pid }

func (e LogEntry) IsStart() bool { return e.eventType == Start }

func (e LogEntry) IsEnd() bool { return e.eventType == End }
