package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces javadexd environment variables.
const envPrefix = "JAVADEX_"

// Load reads configuration from an optional YAML file, then overrides with
// environment variables.
//
// Precedence (highest to lowest):
//  1. Environment variables (JAVADEX_LOGGING_LEVEL, JAVADEX_STORAGE_BASE_DIR, ...)
//  2. YAML config file
//  3. Defaults
//
// A missing file is only an error when configPath was given explicitly.
//
// Environment variables map to config keys by splitting on the first
// underscore after the prefix:
//
//	JAVADEX_LOGGING_LEVEL      -> logging.level
//	JAVADEX_STORAGE_BASE_DIR   -> storage.base_dir
//	JAVADEX_SERVER_NAME        -> server.name
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		// JAVADEX_LOGGING_FILE_PATH -> logging.file_path: the first
		// underscore separates section from field, the rest stay.
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}
