// Package jsonl implements the record sink as an append-only JSON Lines
// file. Each harvested record is one line, marshalled, appended, and
// fsynced before Append returns, so an interrupted run keeps every record
// written up to the failure point.
package jsonl

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/eipforge/eipharvest/internal/core/domain"
	"github.com/eipforge/eipharvest/internal/core/ports/driven"
)

// Ensure Sink implements the record sink port.
var _ driven.RecordSink = (*Sink)(nil)

// Sink appends harvest records to a JSONL file.
type Sink struct {
	mu     sync.Mutex
	file   *os.File
	path   string
	closed bool
}

// NewSink opens (or creates) the output file in append mode. Parent
// directories are created as needed. Appending to an existing file is
// deliberate: interrupted runs leave a valid prefix worth keeping.
func NewSink(path string) (*Sink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening output file: %w", err)
	}

	return &Sink{file: file, path: path}, nil
}

// Append marshals the record to one JSON line, writes it, and syncs the
// file. The record is durable once Append returns.
func (s *Sink) Append(record domain.HarvestRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrSinkClosed
	}

	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshalling record %v: %w", record.Key(), err)
	}
	line = append(line, '\n')

	if _, err := s.file.Write(line); err != nil {
		return fmt.Errorf("writing record %v: %w", record.Key(), err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("syncing output file: %w", err)
	}
	return nil
}

// Path returns the output file path.
func (s *Sink) Path() string {
	return s.path
}

// Close closes the underlying file. Subsequent Appends fail.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.file.Close()
}
