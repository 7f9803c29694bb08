package mock

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/taxdesk/internal/types"
)

// LoadConfig loads a fixture file (.yaml, .yml, .json or .jsonc)
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}

	config, err := ParseConfig(data, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, err
	}
	return config, nil
}

// ParseConfig decodes fixture data in the format named by ext
func ParseConfig(data []byte, ext string) (*Config, error) {
	switch ext {
	case ".yaml", ".yml":
		// Records keep unknown keys, which only the JSON decoder preserves.
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML fixtures: %w", err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to convert YAML fixtures: %w", err)
		}
		data = converted
	case ".jsonc":
		data = jsonc.ToJSON(data)
	case ".json":
	default:
		return nil, fmt.Errorf("unsupported fixture format: %s (use .yaml, .yml, .json or .jsonc)", ext)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}

	if err := prepareConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid fixtures: %w", err)
	}

	return &config, nil
}

// prepareConfig assigns missing ids and rejects duplicates
func prepareConfig(config *Config) error {
	seen := make(map[string]bool, len(config.Taxes))
	for i := range config.Taxes {
		if config.Taxes[i].ID == "" {
			config.Taxes[i].ID = uuid.NewString()
		}
		id := config.Taxes[i].ID
		if seen[id] {
			return fmt.Errorf("tax %d: duplicate id %q", i, id)
		}
		seen[id] = true
	}

	for i, c := range config.Countries {
		if c.Name == "" {
			return fmt.Errorf("country %d: name is required", i)
		}
		if c.ID == "" {
			config.Countries[i].ID = uuid.NewString()
		}
	}

	return nil
}

// DefaultConfig returns a small seeded dataset
func DefaultConfig() *Config {
	return &Config{
		Port:    3000,
		Host:    "localhost",
		Logging: true,
		Taxes: []types.TaxRecord{
			{ID: "1", Entity: "Acme Holdings", Gender: "Male", Country: "USA", CreatedAt: "2024-01-15T10:30:00Z"},
			{ID: "2", Entity: "Maple Leaf Trading", Gender: "Female", Country: "Canada", CreatedAt: "2024-02-03T08:00:00Z"},
			{ID: "3", Entity: "Rhine Logistics", Gender: "male", Country: "Germany", RequestDate: "2024-03-21"},
			{ID: "4", Entity: "Sakura Foods", Gender: "", Country: "Japan"},
			{ID: "5", Entity: "Lone Star Energy", Gender: "Other", Country: "USA", CreatedAt: "not a date"},
		},
		Countries: []types.Country{
			{ID: "1", Name: "USA"},
			{ID: "2", Name: "Canada"},
			{ID: "3", Name: "Germany"},
			{ID: "4", Name: "Japan"},
			{ID: "5", Name: "France"},
		},
	}
}

// SaveConfig writes fixtures to a file
func SaveConfig(config *Config, path string) error {
	var data []byte
	var err error

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
	case ".json", ".jsonc":
		data, err = json.MarshalIndent(config, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported fixture format: %s (use .yaml, .yml, .json or .jsonc)", ext)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write fixture file: %w", err)
	}

	return nil
}
