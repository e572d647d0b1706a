package commons

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"storefront/internal/config"
)

// LoadConfig reads a YAML config file. Fields missing from the file keep the
// values from config.Load, so a file only needs to hold overrides.
func LoadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}
