package scratch

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slatedata/slatetest/internal/testutil"
)

func TestDirFor_DeterministicAndSanitized(t *testing.T) {
	s := New(testutil.NewMemFS(), "target/scratch")

	assert.Equal(t, s.DirFor("grid.ContextTest"), s.DirFor("grid.ContextTest"))
	assert.Equal(t,
		filepath.Join("target", "scratch", "grid.ContextTestrows"),
		s.DirFor("grid.ContextTest/rows"))
	assert.Equal(t,
		filepath.Join("target", "scratch", "grid.ContextTestinner"),
		s.DirFor("grid.ContextTest$inner"))
}

func TestReset_IdempotentOnPopulatedDirectory(t *testing.T) {
	fs := testutil.NewMemFS()
	s := New(fs, "target/scratch")
	const id = "harness.LifecycleTest"

	require.NoError(t, s.Reset(id))
	_, err := s.CreateFile(id, "left-over.csv", "a,b\n")
	require.NoError(t, err)

	// First reset wipes the populated directory.
	require.NoError(t, s.Reset(id))
	assert.True(t, fs.DirExists(s.DirFor(id)))
	assert.Empty(t, fs.FilesUnder(s.DirFor(id)))

	// Second reset in a row: same end state, no error.
	require.NoError(t, s.Reset(id))
	assert.True(t, fs.DirExists(s.DirFor(id)))
	assert.Empty(t, fs.FilesUnder(s.DirFor(id)))
}

func TestCreateFile_WritesExactContents(t *testing.T) {
	fs := testutil.NewMemFS()
	s := New(fs, "target/scratch")
	const id = "app.HarnessTest"

	require.NoError(t, s.Reset(id))
	path, err := s.CreateFile(id, "input.csv", "k,v\na,1\n")
	require.NoError(t, err)

	data, err := fs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "k,v\na,1\n", string(data))
}

func TestCreateFile_OverwritesExisting(t *testing.T) {
	fs := testutil.NewMemFS()
	s := New(fs, "target/scratch")
	const id = "app.HarnessTest"

	require.NoError(t, s.Reset(id))
	_, err := s.CreateFile(id, "input.csv", "old")
	require.NoError(t, err)
	path, err := s.CreateFile(id, "input.csv", "new")
	require.NoError(t, err)

	data, err := fs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestCreateFile_RequiresReset(t *testing.T) {
	s := New(testutil.NewMemFS(), "target/scratch")

	_, err := s.CreateFile("never.Reset", "x.txt", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "call Reset first")
}

func TestCreateFileDefault_UsesPlaceholderContents(t *testing.T) {
	fs := testutil.NewMemFS()
	s := New(fs, "")
	const id = "scratch.DefaultTest"

	require.NoError(t, s.Reset(id))
	path, err := s.CreateFileDefault(id, "marker")
	require.NoError(t, err)

	data, err := fs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "xxx", string(data))
}
