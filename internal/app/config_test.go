package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs_Flags(t *testing.T) {
	cfg, err := ParseArgs([]string{
		"-m", "stage.modules",
		"--data-dir", "target/test-data",
		"--props", "slate.keep_going=true",
		"--props", "slate.config.s=s1",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"stage.modules"}, cfg.Modules)
	assert.Equal(t, "target/test-data", cfg.DataDir)
	assert.Equal(t, "true", cfg.Props["slate.keep_going"])
	assert.Equal(t, "s1", cfg.Props["slate.config.s"])
}

func TestParseArgs_Defaults(t *testing.T) {
	cfg, err := ParseArgs(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Empty(t, cfg.Modules)
}

func TestParseArgs_UnknownFlagRejected(t *testing.T) {
	_, err := ParseArgs([]string{"--no-such-flag"})
	assert.Error(t, err)
}

func TestParseArgs_MalformedProperty(t *testing.T) {
	_, err := ParseArgs([]string{"--props", "not-a-pair"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not k=v")
}

func TestParseArgs_ConfFileWithFlagOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slate.yaml")
	conf := `modules:
  - stage.modules
data_dir: target/from-conf
props:
  slate.config.s: s1
`
	require.NoError(t, os.WriteFile(path, []byte(conf), 0o644))

	cfg, err := ParseArgs([]string{"--conf", path, "--data-dir", "target/from-flag"})
	require.NoError(t, err)

	assert.Equal(t, []string{"stage.modules"}, cfg.Modules)
	assert.Equal(t, "target/from-flag", cfg.DataDir, "flag overrides conf file")
	assert.Equal(t, "s1", cfg.Props["slate.config.s"])
}

func TestParseArgs_ConfFileRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("module: [oops]\n"), 0o644))

	_, err := ParseArgs([]string{"--conf", path})
	assert.Error(t, err, "typo'd field names must fail loudly")
}
