package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("RORICHAT_HOME", home)
	t.Setenv("RORICHAT_API_KEY", "")
	t.Setenv("RORICHAT_REDUCED_MOTION", "")
	return home
}

func TestLoadConfigCreatesDefault(t *testing.T) {
	home := setHome(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(home, ".rorichat", "config.json"))
	assert.Equal(t, "default", cfg.ActiveProfile)
	assert.Equal(t, DefaultEndpoint, cfg.GetEndpoint())
	assert.Equal(t, DefaultModel, cfg.GetModel())
	assert.Equal(t, DefaultModels, cfg.GetModels())
	assert.Equal(t, 30*time.Second, cfg.GetTimeout())
	assert.False(t, cfg.ReducedMotion())
	assert.False(t, cfg.IsValid())
}

func TestSaveAndReload(t *testing.T) {
	setHome(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	cfg.Profiles["work"] = Profile{
		Endpoint:       "http://chat.internal:9000",
		Model:          "gpt-4",
		Models:         []string{"gpt-3.5"},
		TimeoutSeconds: 5,
		ReducedMotion:  true,
		APIKey:         "sk-test",
	}
	require.NoError(t, cfg.Save())

	reloaded, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, reloaded.UseProfile("work"))

	assert.Equal(t, "http://chat.internal:9000", reloaded.GetEndpoint())
	assert.Equal(t, []string{"gpt-4", "gpt-3.5"}, reloaded.GetModels())
	assert.Equal(t, 5*time.Second, reloaded.GetTimeout())
	assert.True(t, reloaded.ReducedMotion())
	assert.True(t, reloaded.IsValid())
	assert.Equal(t, DefaultBaseURL, reloaded.GetBaseURL())

	assert.Error(t, reloaded.UseProfile("missing"))
}

func TestEnvironmentOverrides(t *testing.T) {
	setHome(t)
	cfg, err := LoadConfig()
	require.NoError(t, err)

	t.Setenv("RORICHAT_API_KEY", "from-env")
	t.Setenv("RORICHAT_REDUCED_MOTION", "true")

	assert.Equal(t, "from-env", cfg.GetAPIKey())
	assert.True(t, cfg.ReducedMotion())

	t.Setenv("RORICHAT_REDUCED_MOTION", "not-a-bool")
	assert.False(t, cfg.ReducedMotion())
}

func TestMissingActiveProfileFallsBack(t *testing.T) {
	home := setHome(t)
	dir := filepath.Join(home, ".rorichat")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"),
		[]byte(`{"profiles":{"b":{"model":"m-b"},"a":{"model":"m-a"}},"active_profile":"gone"}`), 0600))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "a", cfg.ActiveProfile)
	assert.Equal(t, "m-a", cfg.GetModel())
	assert.Equal(t, []string{"a", "b"}, cfg.ProfileNames())
}

func TestNoProfiles(t *testing.T) {
	home := setHome(t)
	dir := filepath.Join(home, ".rorichat")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"profiles":{}}`), 0600))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestServerSettingsDefaults(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Burst: 9}}

	s := cfg.ServerSettings()

	assert.Equal(t, DefaultServerAddr, s.Addr)
	assert.Equal(t, 2.0, s.RateLimit)
	assert.Equal(t, 9, s.Burst)
	assert.Equal(t, 3, s.MaxRetries)
	assert.Equal(t, DefaultLogLevel, cfg.GetLogLevel())
}
