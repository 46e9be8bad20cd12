// Package output provides the report sink: standard output or a file that
// only appears once the whole report has been written.
package output

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var errClosed = errors.New("output: write after commit or discard")

// Sink holds a report until Commit. Discard drops it without touching the
// destination. Only the first Commit or Discard takes effect.
type Sink struct {
	// stdout mode
	stdout io.Writer
	buf    bytes.Buffer

	// file mode
	path string
	tmp  *os.File
	w    *bufio.Writer

	done bool
}

// Open returns a Sink writing to path, or to stdout when path is empty.
// A file sink writes to a temp file in the same directory and renames it
// over path on Commit.
func Open(path string, stdout io.Writer) (*Sink, error) {
	if path == "" {
		return &Sink{stdout: stdout}, nil
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("creating output file in %s: %w", dir, err)
	}
	return &Sink{path: path, tmp: tmp, w: bufio.NewWriter(tmp)}, nil
}

func (s *Sink) Write(p []byte) (int, error) {
	if s.done {
		return 0, errClosed
	}
	if s.tmp == nil {
		return s.buf.Write(p)
	}
	return s.w.Write(p)
}

// Commit publishes the report.
func (s *Sink) Commit() error {
	if s.done {
		return nil
	}
	s.done = true

	if s.tmp == nil {
		if _, err := s.buf.WriteTo(s.stdout); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		return nil
	}

	if err := s.w.Flush(); err != nil {
		s.cleanup()
		return fmt.Errorf("writing output file: %w", err)
	}
	// CreateTemp uses 0600; a report is an ordinary file.
	if err := s.tmp.Chmod(0o644); err != nil {
		s.cleanup()
		return fmt.Errorf("setting output file mode: %w", err)
	}
	if err := s.tmp.Sync(); err != nil {
		s.cleanup()
		return fmt.Errorf("syncing output file: %w", err)
	}
	if err := s.tmp.Close(); err != nil {
		_ = os.Remove(s.tmp.Name())
		return fmt.Errorf("closing output file: %w", err)
	}
	if err := os.Rename(s.tmp.Name(), s.path); err != nil {
		_ = os.Remove(s.tmp.Name())
		return fmt.Errorf("renaming output file to %s: %w", s.path, err)
	}
	return nil
}

// Discard drops everything written so far. It is safe to defer after a
// successful Commit.
func (s *Sink) Discard() {
	if s.done {
		return
	}
	s.done = true
	s.buf.Reset()
	s.cleanup()
}

func (s *Sink) cleanup() {
	if s.tmp != nil {
		_ = s.tmp.Close()
		_ = os.Remove(s.tmp.Name())
	}
}
