package imageio

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	errs "github.com/matzehuels/hmaputil/pkg/errors"
)

// Sink receives encoded artifacts.
type Sink interface {
	// Write stores data under name and returns the location it was written
	// to (a file path for DirSink, the name itself for MemorySink).
	Write(ctx context.Context, name string, data []byte) (string, error)
}

// DirSink writes artifacts into a directory.
type DirSink struct {
	dir string
}

// NewDirSink returns a sink writing into dir. The directory is created on
// the first write.
func NewDirSink(dir string) *DirSink {
	return &DirSink{dir: dir}
}

// Dir returns the target directory.
func (s *DirSink) Dir() string { return s.dir }

// Write stores data atomically: a temporary file is written and synced,
// then renamed over the final name.
func (s *DirSink) Write(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", errs.Wrap(errs.ErrCodeOutputWriteFailed, err, "Unable to create output directory %s", s.dir)
	}

	final := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeOutputWriteFailed, err, "Unable to write %s", name)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return "", errs.Wrap(errs.ErrCodeOutputWriteFailed, err, "Unable to write %s", name)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return "", errs.Wrap(errs.ErrCodeOutputWriteFailed, err, "Unable to write %s", name)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", errs.Wrap(errs.ErrCodeOutputWriteFailed, err, "Unable to write %s", name)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return "", errs.Wrap(errs.ErrCodeOutputWriteFailed, err, "Unable to write %s", name)
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return "", errs.Wrap(errs.ErrCodeOutputWriteFailed, err, "Unable to write %s", name)
	}
	return final, nil
}

// MemorySink keeps artifacts in memory. It is safe for concurrent use.
type MemorySink struct {
	mu    sync.Mutex
	files map[string][]byte
}

// NewMemorySink returns an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// Write stores a copy of data under name.
func (s *MemorySink) Write(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = append([]byte(nil), data...)
	return name, nil
}

// Get returns the artifact stored under name.
func (s *MemorySink) Get(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[name]
	return data, ok
}

// Names returns the stored artifact names in sorted order.
func (s *MemorySink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
