// Task 2.6: Custom provider registry — YAML file listing OpenAI-compatible endpoints.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CustomProvider describes one OpenAI-compatible endpoint from the registry file.
// Headers are raw "Name=Value" lines; malformed lines are dropped at send time.
type CustomProvider struct {
	Name    string   `yaml:"name"`
	URL     string   `yaml:"url"`
	APIKey  string   `yaml:"api_key"`
	Model   string   `yaml:"model"`
	Headers []string `yaml:"headers"`
}

// providersFile is the top-level shape of the YAML registry.
type providersFile struct {
	Providers []CustomProvider `yaml:"providers"`
}

// LoadCustomProviders parses the YAML registry at path.
// A missing or empty path is not an error: no custom providers configured.
func LoadCustomProviders(path string) ([]CustomProvider, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read providers file %q: %w", path, err)
	}

	var f providersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse providers file %q: %w", path, err)
	}

	// Entries without a name or URL cannot be resolved; reject early so the
	// operator finds out at startup rather than on first request.
	for i, p := range f.Providers {
		if p.Name == "" || p.URL == "" {
			return nil, fmt.Errorf("providers file %q: entry %d missing name or url", path, i)
		}
	}

	return f.Providers, nil
}
