// Package config provides configuration loading for javadexd.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config is the full javadexd configuration.
type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Storage      StorageConfig      `koanf:"storage"`
	Repositories []RepositoryConfig `koanf:"repositories"`
	Logging      LoggingConfig      `koanf:"logging"`
}

// ServerConfig identifies the MCP server instance.
type ServerConfig struct {
	// Name is the server name advertised during the MCP handshake.
	Name string `koanf:"name"`

	// Version is the server version advertised during the MCP handshake.
	Version string `koanf:"version"`
}

// StorageConfig controls where repository clones live.
type StorageConfig struct {
	// BaseDir is the directory holding all managed clones. A leading ~ is
	// expanded to the user's home directory.
	BaseDir string `koanf:"base_dir"`
}

// RepositoryConfig names one repository to clone and index at startup.
type RepositoryConfig struct {
	URL    string `koanf:"url"`
	Branch string `koanf:"branch"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Output is stderr, stdout or file. The MCP stdio transport owns
	// stdout, so stderr is the default.
	Output string `koanf:"output"`

	// FilePath is the log file location when Output is file.
	FilePath string `koanf:"file_path"`
}

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging format: %q", c.Logging.Format)
	}
	switch c.Logging.Output {
	case "stderr", "stdout":
	case "file":
		if c.Logging.FilePath == "" {
			return fmt.Errorf("logging output is file but file_path is empty")
		}
	default:
		return fmt.Errorf("invalid logging output: %q", c.Logging.Output)
	}

	seen := make(map[string]bool, len(c.Repositories))
	for i, repo := range c.Repositories {
		if strings.TrimSpace(repo.URL) == "" {
			return fmt.Errorf("repositories[%d]: url is empty", i)
		}
		if seen[repo.URL] {
			return fmt.Errorf("repositories[%d]: duplicate url %s", i, repo.URL)
		}
		seen[repo.URL] = true
	}
	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Name == "" {
		cfg.Server.Name = "javadex"
	}
	if cfg.Server.Version == "" {
		cfg.Server.Version = "dev"
	}
	if cfg.Storage.BaseDir == "" {
		cfg.Storage.BaseDir = filepath.Join("~", ".javadex", "repos")
	}
	cfg.Storage.BaseDir = expandHome(cfg.Storage.BaseDir)

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
	cfg.Logging.FilePath = expandHome(cfg.Logging.FilePath)
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], string(filepath.Separator)))
	}
	return path
}
