// Package testutil provides test doubles shared across packages.
package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemFS is an in-memory filesystem implementing scratch.FS.
//
// It tracks directories and files separately so tests can assert on
// exact end states (e.g. "directory exists and is empty") without
// touching the real filesystem.
//
// Thread-safety: all methods are safe for concurrent use.
type MemFS struct {
	mu    sync.Mutex
	dirs  map[string]bool
	files map[string][]byte
}

// NewMemFS creates an empty in-memory filesystem.
func NewMemFS() *MemFS {
	return &MemFS{
		dirs:  make(map[string]bool),
		files: make(map[string][]byte),
	}
}

// RemoveAll deletes path and everything under it. Removing a path that
// does not exist is not an error, matching os.RemoveAll.
func (m *MemFS) RemoveAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = filepath.Clean(path)
	prefix := path + string(filepath.Separator)
	for d := range m.dirs {
		if d == path || strings.HasPrefix(d, prefix) {
			delete(m.dirs, d)
		}
	}
	for f := range m.files {
		if f == path || strings.HasPrefix(f, prefix) {
			delete(m.files, f)
		}
	}
	return nil
}

// MkdirAll creates path and all missing parents.
func (m *MemFS) MkdirAll(path string, _ os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = filepath.Clean(path)
	for p := path; p != "." && p != string(filepath.Separator); p = filepath.Dir(p) {
		m.dirs[p] = true
	}
	return nil
}

// WriteFile stores data at path, overwriting any previous contents.
func (m *MemFS) WriteFile(path string, data []byte, _ os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.files[filepath.Clean(path)] = append([]byte(nil), data...)
	return nil
}

// Stat reports whether path exists as a directory or file.
func (m *MemFS) Stat(path string) (os.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = filepath.Clean(path)
	if m.dirs[path] {
		return memInfo{name: filepath.Base(path), dir: true}, nil
	}
	if data, ok := m.files[path]; ok {
		return memInfo{name: filepath.Base(path), size: int64(len(data))}, nil
	}
	return nil, &os.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
}

// ReadFile returns the stored contents of path.
func (m *MemFS) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), data...), nil
}

// DirExists reports whether path was created as a directory.
func (m *MemFS) DirExists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirs[filepath.Clean(path)]
}

// FilesUnder returns the sorted paths of all files under dir.
func (m *MemFS) FilesUnder(dir string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := filepath.Clean(dir) + string(filepath.Separator)
	var out []string
	for f := range m.files {
		if strings.HasPrefix(f, prefix) {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

// memInfo is a minimal os.FileInfo for MemFS entries.
type memInfo struct {
	name string
	size int64
	dir  bool
}

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return i.size }
func (i memInfo) Mode() os.FileMode  { return 0o644 }
func (i memInfo) ModTime() time.Time { return time.Time{} }
func (i memInfo) IsDir() bool        { return i.dir }
func (i memInfo) Sys() any           { return nil }
