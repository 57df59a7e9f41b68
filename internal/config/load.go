package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	return load(ConfigPath(), applyFlags)
}

// LoadFrom loads defaults and the config file at path, or the first one
// found in the standard locations when path is "". Command-line flags are
// not applied.
func LoadFrom(path string) (*Config, error) {
	return load(path, nil)
}

func load(configPath string, override func(*Config)) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	if override != nil {
		override(cfg)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	dir := ConfigDir()
	candidates := []string{
		"./brickview.yaml",
		"./brickview.toml",
		filepath.Join(dir, "config.yaml"),
		filepath.Join(dir, "config.toml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	home, err := homedir.Dir()
	if err != nil {
		home = os.TempDir()
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Brickview")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "Brickview")
		}
		return filepath.Join(home, "AppData", "Roaming", "Brickview")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "brickview")
		}
		return filepath.Join(home, ".config", "brickview")
	}
}

// isTOML reports whether path names a TOML file.
func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// loadFromFile loads config from a YAML or TOML file, merging with existing
// values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if isTOML(path) {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

// expandPaths resolves a leading ~ in every configured path.
func (c *Config) expandPaths() error {
	paths := []*string{&c.Library.Path, &c.Library.Palette, &c.Logging.LogFile, &c.Screenshot.Dir}
	for i := range c.Library.SearchDirs {
		paths = append(paths, &c.Library.SearchDirs[i])
	}
	for _, p := range paths {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expanding %s: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// PalettePath returns the LDConfig.ldr to load, or "" when none is set and
// no library is configured.
func (c *Config) PalettePath() string {
	if c.Library.Palette != "" {
		return c.Library.Palette
	}
	if c.Library.Path == "" {
		return ""
	}
	return filepath.Join(c.Library.Path, "LDConfig.ldr")
}
