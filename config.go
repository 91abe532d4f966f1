package arbor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// LoadConfig parses a YAML mapping into a Config. Empty input yields an
// empty Config.
func LoadConfig(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("arbor: failed to parse config YAML: %w", err)
	}
	if c == nil {
		c = Config{}
	}
	return c, nil
}

// LoadConfigTOML parses a TOML document into a Config.
func LoadConfigTOML(data []byte) (Config, error) {
	c := Config{}
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("arbor: failed to parse config TOML: %w", err)
	}
	return c, nil
}

// LoadConfigFile reads and parses a config file: TOML for a .toml
// extension, YAML otherwise.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return LoadConfigTOML(data)
	}
	return LoadConfig(data)
}

// Merge returns a copy of c with every key of other assigned over it.
func (c Config) Merge(other Config) Config {
	out := make(Config, len(c)+len(other))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}
