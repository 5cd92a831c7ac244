// Package scratch manages per-test-case scratch directories.
//
// Each test class gets one directory, named deterministically from the
// test's fully-qualified identity. Directories are created lazily,
// reset on explicit request, and deliberately NOT removed at teardown,
// so a failed test's fixtures stay around for inspection.
package scratch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultBaseDir is where scratch directories live relative to the
// working directory of the test process.
const DefaultBaseDir = "target/scratch"

// defaultContents is written by CreateFileDefault. Tests that only
// need a file to exist don't care what's in it.
const defaultContents = "xxx"

// FS is the filesystem collaborator. Satisfied by OS for production
// use and by testutil.MemFS in tests.
type FS interface {
	RemoveAll(path string) error
	MkdirAll(path string, perm os.FileMode) error
	WriteFile(path string, data []byte, perm os.FileMode) error
	Stat(path string) (os.FileInfo, error)
}

// OS implements FS as passthroughs to the os package.
type OS struct{}

func (OS) RemoveAll(path string) error                  { return os.RemoveAll(path) }
func (OS) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }
func (OS) Stat(path string) (os.FileInfo, error)        { return os.Stat(path) }

func (OS) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

// Space hands out scratch directories under a base directory.
type Space struct {
	fs   FS
	base string
}

// New creates a Space rooted at base. An empty base uses
// DefaultBaseDir; a nil fs uses the real filesystem.
func New(fs FS, base string) *Space {
	if fs == nil {
		fs = OS{}
	}
	if base == "" {
		base = DefaultBaseDir
	}
	return &Space{fs: fs, base: base}
}

// DirFor returns the scratch directory path for a test identity. Pure
// function of the identity: the same identity always maps to the same
// path. The subtest separator and the anonymous-class marker are
// stripped so the result is a single well-formed path element.
func (s *Space) DirFor(identity string) string {
	return filepath.Join(s.base, sanitize(identity))
}

// Reset deletes the scratch directory for identity if present, then
// recreates it empty. Idempotent: calling twice in a row leaves the
// same end state, an existing empty directory, and never errors for
// that reason.
func (s *Space) Reset(identity string) error {
	dir := s.DirFor(identity)
	if err := s.fs.RemoveAll(dir); err != nil {
		return fmt.Errorf("scratch reset %s: %w", dir, err)
	}
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("scratch reset %s: %w", dir, err)
	}
	return nil
}

// CreateFile creates (or overwrites) baseName under identity's scratch
// directory with exactly contents as its full text and returns the
// file's path.
//
// Precondition: Reset must have been called for identity first. The
// directory is not created implicitly; a missing directory is an
// error, not a silent mkdir.
func (s *Space) CreateFile(identity, baseName, contents string) (string, error) {
	dir := s.DirFor(identity)
	if _, err := s.fs.Stat(dir); err != nil {
		return "", fmt.Errorf("scratch dir %s does not exist (call Reset first): %w", dir, err)
	}
	path := filepath.Join(dir, baseName)
	if err := s.fs.WriteFile(path, []byte(contents), 0o644); err != nil {
		return "", fmt.Errorf("scratch create %s: %w", path, err)
	}
	return path, nil
}

// CreateFileDefault is CreateFile with placeholder contents.
func (s *Space) CreateFileDefault(identity, baseName string) (string, error) {
	return s.CreateFile(identity, baseName, defaultContents)
}

// sanitize strips characters the test framework reserves. "/" comes
// from subtest names, "$" from generated type names; neither belongs
// in a directory name.
func sanitize(identity string) string {
	identity = strings.ReplaceAll(identity, "/", "")
	return strings.ReplaceAll(identity, "$", "")
}
