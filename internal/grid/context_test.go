package grid

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContext_ActiveWithSessionMarker(t *testing.T) {
	c, err := NewContext("grid.ContextTest", Local(2))
	require.NoError(t, err)
	defer c.Stop()

	assert.Equal(t, StateActive, c.State())
	assert.Equal(t, "grid.ContextTest", c.Name())
	assert.Equal(t, 2, c.Parallelism().Workers)
	assert.NotEmpty(t, c.ID())
	assert.Equal(t, c.ID(), os.Getenv(SessionEnvVar))
}

func TestStop_TerminalAndClearsMarker(t *testing.T) {
	c, err := NewContext("grid.ContextTest", Local(2))
	require.NoError(t, err)

	require.NoError(t, c.Stop())
	assert.Equal(t, StateStopped, c.State())
	assert.Empty(t, os.Getenv(SessionEnvVar))

	// Stopped is terminal: a second stop is lifecycle misuse.
	err = c.Stop()
	require.Error(t, err)
	assert.True(t, IsLifecycleMisuse(err))

	var le *LifecycleError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeStopped, le.Code)
}

func TestStoppedContext_RejectsAllOperations(t *testing.T) {
	c, err := NewContext("grid.ContextTest", Local(2))
	require.NoError(t, err)
	require.NoError(t, c.Stop())

	_, err = c.CreateDataset(t.Context(), "k:String", "a;b")
	assert.True(t, IsLifecycleMisuse(err))

	_, err = c.Session()
	assert.True(t, IsLifecycleMisuse(err))
}

func TestSession_SameHandleWhileActive(t *testing.T) {
	c, err := NewContext("grid.ContextTest", Local(2))
	require.NoError(t, err)
	defer c.Stop()

	a, err := c.Session()
	require.NoError(t, err)
	b, err := c.Session()
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestSession_UnusableAfterStop(t *testing.T) {
	c, err := NewContext("grid.ContextTest", Local(2))
	require.NoError(t, err)

	s, err := c.Session()
	require.NoError(t, err)
	require.NoError(t, c.Stop())

	_, err = s.Query(t.Context(), "SELECT 1")
	assert.True(t, IsLifecycleMisuse(err))
}

func TestNewContext_FreshIDPerSession(t *testing.T) {
	a, err := NewContext("grid.ContextTest", Local(2))
	require.NoError(t, err)
	idA := a.ID()
	require.NoError(t, a.Stop())

	b, err := NewContext("grid.ContextTest", Local(2))
	require.NoError(t, err)
	defer b.Stop()

	assert.NotEqual(t, idA, b.ID())
}
