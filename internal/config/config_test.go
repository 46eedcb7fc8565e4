package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)

	assert.Equal(t, 30*time.Minute, cfg.Study.BaselineWindow)
	assert.Equal(t, 2*time.Minute, cfg.Study.ToleranceBefore)
	assert.Equal(t, 3*time.Minute, cfg.Study.ToleranceAfter)
	assert.Equal(t, int64(42), cfg.Study.ControlSeed)
	assert.Equal(t, 3, cfg.Study.ExclusionDays)
	assert.Equal(t, 3, cfg.Study.MinGroupSize)
	assert.Equal(t, 1, cfg.Study.Parallelism)

	assert.True(t, filepath.IsAbs(cfg.Paths.OutputDir), "paths are resolved to absolute")
	assert.True(t, filepath.IsAbs(cfg.Logging.FilePath))
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: debug
  format: json
study:
  control_seed: 7
  parallelism: 4
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, int64(7), cfg.Study.ControlSeed)
	assert.Equal(t, 4, cfg.Study.Parallelism)
	assert.Equal(t, 3, cfg.Study.MinGroupSize, "unset fields keep their defaults")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o644))

	t.Setenv("STUDY_LOGGING_LEVEL", "warn")
	t.Setenv("STUDY_STUDY_PARALLELISM", "8")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 8, cfg.Study.Parallelism)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Run("bad log level", func(t *testing.T) {
		t.Setenv("STUDY_LOGGING_LEVEL", "verbose")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("minimum group size below the statistical floor", func(t *testing.T) {
		t.Setenv("STUDY_STUDY_MIN_GROUP_SIZE", "2")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("logging: [oops"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}
