package app

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slatedata/slatetest/internal/grid"
	"github.com/slatedata/slatetest/internal/harness"
	"github.com/slatedata/slatetest/internal/logctl"
	"github.com/slatedata/slatetest/internal/scratch"
	"github.com/slatedata/slatetest/internal/testutil"
)

func newAppHarness(t *testing.T, args []string) *Harness {
	t.Helper()
	return NewHarness(
		logctl.New(io.Discard),
		scratch.New(testutil.NewMemFS(), "target/scratch"),
		args,
	)
}

func TestHarnessStart_InitializesAppAgainstLiveContext(t *testing.T) {
	h := newAppHarness(t, []string{"-m", "stage.modules", "--data-dir", "target/test-data"})
	require.NoError(t, h.Start(t.Name(), false))
	defer h.Stop()

	a, err := h.App()
	require.NoError(t, err)
	assert.Equal(t, []string{"stage.modules"}, a.Modules())
	assert.Equal(t, "target/test-data", a.DataDir())
}

func TestHarnessStart_BadArgsLeaveNothingLive(t *testing.T) {
	h := newAppHarness(t, []string{"--props", "malformed"})

	err := h.Start(t.Name(), false)
	require.Error(t, err)

	_, err = h.App()
	assert.True(t, grid.IsLifecycleMisuse(err))
	_, err = h.Context()
	assert.True(t, grid.IsLifecycleMisuse(err))
}

func TestHarnessStop_ClearsAppHandle(t *testing.T) {
	h := newAppHarness(t, nil)
	require.NoError(t, h.Start(t.Name(), false))
	require.NoError(t, h.Stop())

	_, err := h.App()
	assert.True(t, grid.IsLifecycleMisuse(err))
}

func TestAppCreateDataset_UsableWithAssertions(t *testing.T) {
	h := newAppHarness(t, nil)
	h.Attach(t, false)

	a, err := h.App()
	require.NoError(t, err)

	ds, err := a.CreateDataset(t.Context(), "k:String;v:Integer", "a,1;b,2")
	require.NoError(t, err)

	harness.AssertDatasetEqual(t, ds, "b,2; a,1")
	harness.AssertSchemaEqual(t, ds, "k:String;v:Integer")
}

func TestAppLoadDataset_FromScratchFile(t *testing.T) {
	// Scratch fixtures need the real filesystem here: the dataset
	// loader reads through os, not the scratch FS fake.
	space := scratch.New(nil, t.TempDir())
	h := NewHarness(logctl.New(io.Discard), space, nil)
	h.Attach(t, false)

	require.NoError(t, h.ResetScratch())
	path, err := h.CreateTempFile("input.csv", "k|v\na|1\nb|2\n")
	require.NoError(t, err)

	a, err := h.App()
	require.NoError(t, err)
	ds, err := a.LoadDataset(t.Context(), path, '|')
	require.NoError(t, err)

	harness.AssertDatasetEqual(t, ds, "a,1; b,2")
}

func TestAppNew_RejectsStoppedContext(t *testing.T) {
	c, err := grid.NewContext(t.Name(), grid.Local(2))
	require.NoError(t, err)
	require.NoError(t, c.Stop())

	_, err = New(Config{}, c)
	assert.True(t, grid.IsLifecycleMisuse(err))
}
