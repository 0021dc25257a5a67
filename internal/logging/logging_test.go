package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	logger, err := New(Options{Level: "debug", File: path})
	require.NoError(t, err)

	logger.Debug("hello", zap.String("model", "gpt-4"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"model":"gpt-4"`)
}

func TestNewLevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	logger, err := New(Options{Level: "warn", File: path})
	require.NoError(t, err)

	logger.Info("quiet")
	logger.Warn("loud")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "quiet")
	assert.Contains(t, string(data), "loud")
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Options{Level: "chatty"})
	assert.Error(t, err)
}

func TestDefaultLogFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("RORICHAT_HOME", home)

	path, err := DefaultLogFile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".rorichat", "rorichat.log"), path)
}
