// Package config loads the optional rulebook configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/rulebook/pkg/domain"
	"gopkg.in/yaml.v3"
)

// DefaultPath is looked up in the working directory when --config is not set.
const DefaultPath = "rulebook.yaml"

// Config holds defaults for CLI flags. Explicit flags always win.
type Config struct {
	Rules           string      `yaml:"rules" json:"rules"`
	Facts           string      `yaml:"facts" json:"facts"`
	Format          string      `yaml:"format" json:"format"`
	MaxDepth        int         `yaml:"max_depth" json:"max_depth"`
	ContinueOnError bool        `yaml:"continue_on_error" json:"continue_on_error"`
	Redis           RedisConfig `yaml:"redis" json:"redis"`
	Server          Server      `yaml:"server" json:"server"`
	Log             Log         `yaml:"log" json:"log"`
}

// RedisConfig locates a Redis-backed fact set.
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Key      string `yaml:"key" json:"key"`
	Prefix   string `yaml:"prefix" json:"prefix"`
}

// Server configures `rulebook serve`.
type Server struct {
	Port int `yaml:"port" json:"port"`
}

// Log configures the application logger.
type Log struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Rules:  domain.DefaultRulesFile,
		Facts:  domain.DefaultFactsFile,
		Format: "text",
		Server: Server{Port: 8080},
		Log:    Log{Format: "text"},
	}
}

// Load reads a YAML or JSON configuration file (picked by extension) over the
// defaults. An empty path tries DefaultPath and silently falls back to the
// defaults when it does not exist; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	return cfg, nil
}
