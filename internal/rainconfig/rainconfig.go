// Package rainconfig loads the terminal core's own YAML configuration file,
// in the style of dcosson-h2/internal/config: a plain struct unmarshalled
// with gopkg.in/yaml.v3, an absent file treated as defaults rather than an
// error.
package rainconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the subset of Rain's own behavior that is user-configurable
// independent of the GUI shell embedding it: scrollback size, default
// shell override, and palette tweaks.
type Config struct {
	ScrollbackLimit int               `yaml:"scrollback_limit"`
	Shell           string            `yaml:"shell,omitempty"`
	Env             map[string]string `yaml:"env,omitempty"`
	Palette         map[string]string `yaml:"palette,omitempty"` // "0".."15" -> "#rrggbb"
}

// Default returns the built-in defaults used when no config file exists.
func Default() *Config {
	return &Config{ScrollbackLimit: 10000}
}

// Dir returns Rain's configuration directory (~/.config/rain on Unix-like
// systems via os.UserHomeDir, consistent across platforms since this core
// does not special-case XDG_CONFIG_HOME the way a full GUI shell would).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".rain")
	}
	return filepath.Join(home, ".config", "rain")
}

// Load reads config.yaml from Dir(); a missing file returns Default() with
// no error.
func Load() (*Config, error) {
	return LoadFrom(filepath.Join(Dir(), "config.yaml"))
}

// LoadFrom reads and validates a config file at an explicit path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("rainconfig: parse %s: %w", path, err)
	}
	if cfg.ScrollbackLimit <= 0 {
		cfg.ScrollbackLimit = 10000
	}
	return cfg, nil
}
