package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultArchivePath       = "~/.local/share/rootforge/archive.db"
	DefaultSourceApplication = "rootforge"
	DefaultLogLevel          = "info"
)

// Config is the user configuration shared by every rootforge binary
type Config struct {
	Archive           string `yaml:"archive"`
	SourceApplication string `yaml:"source_application"`
	LogLevel          string `yaml:"log_level"`
	MetricsAddr       string `yaml:"metrics_addr"`
	ExportDirectory   string `yaml:"export_directory"`

	// Editor opens export manifests; empty falls back to $EDITOR
	Editor string `yaml:"editor"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Archive:           DefaultArchivePath,
		SourceApplication: DefaultSourceApplication,
		LogLevel:          DefaultLogLevel,
	}
}

// Path returns the config file location from ROOTFORGE_CONFIG, falling back
// to ~/.config/rootforge/config.yaml
func Path() string {
	if env := os.Getenv("ROOTFORGE_CONFIG"); env != "" {
		return env
	}
	return "~/.config/rootforge/config.yaml"
}

// ArchivePath returns the archive path from ROOTFORGE_ARCHIVE,
// falling back to DefaultArchivePath.
func ArchivePath() string {
	if env := os.Getenv("ROOTFORGE_ARCHIVE"); env != "" {
		return env
	}
	return DefaultArchivePath
}

// Load reads the config file at path. A missing file yields the defaults.
// Environment variables override the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(ExpandHome(path))
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.WithField("path", path).Debug("no config file, using defaults")
	case err != nil:
		return nil, fmt.Errorf("loading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	if env := os.Getenv("ROOTFORGE_ARCHIVE"); env != "" {
		cfg.Archive = env
	}
	if env := os.Getenv("ROOTFORGE_SOURCE_APP"); env != "" {
		cfg.SourceApplication = env
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// Validate rejects empty required fields and unknown log levels
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Archive) == "" {
		return fmt.Errorf("archive path is required")
	}
	if strings.TrimSpace(c.SourceApplication) == "" {
		return fmt.Errorf("source application is required")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return nil
}

// ApplyLogLevel sets the global logrus level
func (c *Config) ApplyLogLevel() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return
	}
	log.SetLevel(level)
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
