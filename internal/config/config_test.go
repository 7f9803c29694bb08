package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeAt_DefaultsWithoutFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".taxdesk")

	require.NoError(t, InitializeAt(dir, ""))

	assert.DirExists(t, dir)
	assert.Equal(t, filepath.Join(dir, "taxdesk.db"), DatabasePath)
	assert.Equal(t, filepath.Join(dir, "keybinds.jsonc"), KeybindsFile)

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", s.BaseURL)
	assert.Equal(t, time.Duration(0), s.Timeout)
	assert.Equal(t, "light", s.Theme)
	assert.True(t, s.HistoryEnabled)
	assert.False(t, s.HasTLS())
}

func TestInitializeAt_ReadsFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "custom.yaml")
	content := `api:
  base_url: http://taxes.internal:8080
  timeout: 5s
  headers:
    X-Tenant: acme
tui:
  theme: dark
history:
  enabled: false
`
	require.NoError(t, os.WriteFile(cfg, []byte(content), FilePermissions))
	t.Setenv("TAXDESK_LOG_LEVEL", "debug")

	require.NoError(t, InitializeAt(dir, cfg))

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://taxes.internal:8080", s.BaseURL)
	assert.Equal(t, 5*time.Second, s.Timeout)
	assert.Equal(t, map[string]string{"x-tenant": "acme"}, s.Headers)
	assert.Equal(t, "dark", s.Theme)
	assert.False(t, s.HistoryEnabled)
	assert.Equal(t, "debug", s.LogLevel)
}

func TestInitializeAt_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("api: [unclosed"), FilePermissions))

	assert.Error(t, InitializeAt(dir, cfg))
}

func TestLoadFrom_Validation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"bad timeout", KeyTimeout, "soon"},
		{"negative timeout", KeyTimeout, "-1s"},
		{"bad theme", KeyTheme, "purple"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(tt.key, tt.val)

			_, err := LoadFrom(v)
			assert.Error(t, err)
		})
	}
}

func TestSaveTheme(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitializeAt(dir, ""))

	require.NoError(t, SaveTheme("dark"))

	require.NoError(t, InitializeAt(dir, ""))
	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dark", s.Theme)
}

func TestSaveTheme_KeepsEnvAndDefaultsOutOfFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("history:\n  enabled: false\n"), FilePermissions))
	t.Setenv("TAXDESK_API_BASE_URL", "https://prod.example.com")

	require.NoError(t, InitializeAt(dir, ""))
	require.NoError(t, SaveTheme("dark"))

	assert.Equal(t, "dark", viper.GetString(KeyTheme))

	data, err := os.ReadFile(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "theme: dark")
	assert.Contains(t, string(data), "enabled: false")
	assert.NotContains(t, string(data), "base_url")
	assert.NotContains(t, string(data), "prod.example.com")
	assert.NotContains(t, string(data), "api:")
}
