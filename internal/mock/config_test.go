package mock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_YAML(t *testing.T) {
	data := []byte(`
port: 4000
taxes:
  - id: 7
    entity: Acme
    gender: Male
    country: USA
    createdAt: "2024-01-15T10:30:00Z"
    vat: 21
  - entity: No Id Yet
countries:
  - id: 1
    name: USA
`)

	cfg, err := ParseConfig(data, ".yaml")
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Port)
	require.Len(t, cfg.Taxes, 2)
	assert.Equal(t, "7", cfg.Taxes[0].ID)
	assert.JSONEq(t, `21`, string(cfg.Taxes[0].Extra["vat"]))
	assert.NotEmpty(t, cfg.Taxes[1].ID)
	assert.Equal(t, "1", cfg.Countries[0].ID)
}

func TestParseConfig_JSONC(t *testing.T) {
	data := []byte(`{
	  // seed
	  "taxes": [{"id": "a", "entity": "Acme"},],
	  "countries": [{"id": "1", "name": "USA"}],
	}`)

	cfg, err := ParseConfig(data, ".jsonc")
	require.NoError(t, err)
	assert.Equal(t, "a", cfg.Taxes[0].ID)
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		ext  string
	}{
		{"unsupported ext", `{}`, ".toml"},
		{"duplicate ids", `{"taxes":[{"id":"1"},{"id":"1"}]}`, ".json"},
		{"country without name", `{"countries":[{"id":"1"}]}`, ".json"},
		{"broken yaml", "taxes: [", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data), tt.ext)
			assert.Error(t, err)
		})
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"fixtures.yaml", "fixtures.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, SaveConfig(DefaultConfig(), path))

			cfg, err := LoadConfig(path)
			require.NoError(t, err)
			assert.Len(t, cfg.Taxes, len(DefaultConfig().Taxes))
			assert.Equal(t, "Acme Holdings", cfg.Taxes[0].Entity)
		})
	}

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveConfig_KeepsFetchedTypes(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{"taxes":[{"id":7,"entity":"Acme","createdAt":"","vatNumber":"US123"}]}`), ".json")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "fixtures.json")

	require.NoError(t, SaveConfig(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id": 7`)
	assert.Contains(t, string(data), `"createdAt": ""`)
	assert.Contains(t, string(data), `"vatNumber": "US123"`)
}
