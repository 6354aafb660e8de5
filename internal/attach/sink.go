// Package attach persists generated remittance files.
package attach

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Sink receives the bytes of a generated file. It is called exactly once per
// successfully encoded order.
type Sink interface {
	Attach(data []byte) error
}

// FileSink writes the file into Dir under Name.
type FileSink struct {
	Dir  string
	Name string
}

// NewFileSink creates a FileSink.
func NewFileSink(dir, name string) *FileSink {
	return &FileSink{Dir: dir, Name: name}
}

// Path returns the destination of the file.
func (s *FileSink) Path() string {
	return filepath.Join(s.Dir, s.Name)
}

// Attach writes data to a temporary file and renames it into place, so a
// reader never sees a partial remittance.
func (s *FileSink) Attach(data []byte) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, "."+s.Name+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpName, s.Path()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// MemorySink keeps attachments in memory.
type MemorySink struct {
	mu          sync.Mutex
	attachments [][]byte
}

// Attach stores a copy of data.
func (s *MemorySink) Attach(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attachments = append(s.attachments, append([]byte(nil), data...))
	return nil
}

// Attachments returns everything attached so far.
func (s *MemorySink) Attachments() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([][]byte, len(s.attachments))
	copy(out, s.attachments)
	return out
}
