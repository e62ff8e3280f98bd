package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the optional YAML run configuration. Flags that the user
// sets explicitly always win over file values.
type FileConfig struct {
	Customers string `yaml:"customers"`
	Orders    string `yaml:"orders"`
	DB        string `yaml:"db"`
	Out       string `yaml:"out"`
	Rules     string `yaml:"rules"`
	AsOf      string `yaml:"as_of"`
}

// LoadFileConfig reads and parses a YAML config file.
func LoadFileConfig(path string) (FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("read config: %w", err)
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
