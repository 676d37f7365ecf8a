package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config describes the external command that interprets turns.
type Config struct {
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Dir         string            `yaml:"dir" json:"dir"`
	// Timeout bounds one interpretation, e.g. "30s".
	Timeout string `yaml:"timeout" json:"timeout"`
}

// ConfigFile represents the structure of an intent source file.
type ConfigFile struct {
	Intent Config `yaml:"intent" json:"intent"`
}

// LoadConfig reads a configuration file (YAML or JSON).
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read intent config: %w", err)
	}

	var cfg ConfigFile
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if cfg.Intent.Command == "" {
		return Config{}, fmt.Errorf("intent config %s: command is required", filepath.Base(path))
	}
	if cfg.Intent.Dir != "" && !filepath.IsAbs(cfg.Intent.Dir) {
		cfg.Intent.Dir = filepath.Join(filepath.Dir(path), cfg.Intent.Dir)
	}
	return cfg.Intent, nil
}

// TimeoutDuration parses Timeout, falling back to def when unset.
func (c Config) TimeoutDuration(def time.Duration) (time.Duration, error) {
	if c.Timeout == "" {
		return def, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid intent timeout %q: %w", c.Timeout, err)
	}
	return d, nil
}
