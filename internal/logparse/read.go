package logparse

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/Tiliavir/jobmon/internal/model"
)

// ReadError wraps a failure to read the input itself, as opposed to a row
// that was read but broke a validation rule.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string { return e.Err.Error() }

func (e *ReadError) Unwrap() error { return e.Err }

// Read validates and parses every row of r in order. It returns at the first
// invalid row, so either all rows are returned or none are. There is no
// header row; blank lines are skipped and do not count as records.
func Read(r io.Reader) ([]model.LogEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	// Quotes only delimit a field when they open it; elsewhere they are
	// part of the free-text description.
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var entries []model.LogEntry
	for record := 1; ; record++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, &ReadError{Err: fmt.Errorf("reading record %d: %w", record, err)}
		}
		if err := ValidateRecord(fields, record); err != nil {
			return nil, err
		}
		entry, err := ParseRecord(fields)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", record, err)
		}
		entries = append(entries, entry)
	}
}
