package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "DOCQUERY_"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// Load loads configuration with the following precedence, highest first:
//
//  1. Environment variables (DOCQUERY_PROVIDER_API_KEY,
//     DOCQUERY_STORAGE_DIR, DOCQUERY_QUERY_TOP_K, ...)
//  2. YAML config file (configPath, default ~/.config/docquery/config.yaml)
//  3. Hardcoded defaults
//
// A missing config file is not an error; environment variables and
// defaults still apply. The provider API key may also arrive via the
// conventional OPENAI_API_KEY variable when no explicit key is set.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			configPath = filepath.Join(home, ".config", "docquery", "config.yaml")
		}
	}

	if configPath != "" {
		if info, err := os.Stat(configPath); err == nil {
			if info.Size() > maxConfigFileSize {
				return nil, fmt.Errorf("config file %s exceeds %d bytes", configPath, maxConfigFileSize)
			}
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
			if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
			}
		}
	}

	// DOCQUERY_PROVIDER_API_KEY -> provider.api_key
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)
		return envKeyToPath(s)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment overrides: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Conventional provider key variable as a fallback.
	if cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// envKeyToPath maps a lowercased environment variable suffix to a koanf
// path. Only the first underscore separates the section from the field;
// field names themselves contain underscores (top_k, api_key).
func envKeyToPath(s string) string {
	for _, section := range []string{"loader", "storage", "provider", "query"} {
		if strings.HasPrefix(s, section+"_") {
			return section + "." + strings.TrimPrefix(s, section+"_")
		}
	}
	return s
}
