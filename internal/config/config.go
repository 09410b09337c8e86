// Package config provides configuration loading for docquery.
//
// Configuration is loaded from an optional YAML file, then overridden by
// environment variables with the DOCQUERY_ prefix. All settings have
// defaults except the provider API key, which hosted providers require.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// Defaults.
const (
	DefaultStorageDir = "./storage"
	DefaultCollection = "docquery"
	DefaultTopK       = 5
	DefaultTimeout    = 30 * time.Second
	DefaultProvider   = "openai"
)

// DefaultExtensions are the file extensions treated as documentation content.
var DefaultExtensions = []string{".md", ".markdown"}

// DefaultExcludedDirs are directory names never descended into during
// document discovery: dependency caches, VCS metadata, build output,
// and editor settings.
var DefaultExcludedDirs = []string{
	"node_modules",
	".git",
	".svn",
	".hg",
	"vendor",
	"dist",
	"build",
	"out",
	".vscode",
	".idea",
	".cache",
}

// Config holds the complete docquery configuration.
type Config struct {
	Roots    []string       `koanf:"roots"`
	Loader   LoaderConfig   `koanf:"loader"`
	Storage  StorageConfig  `koanf:"storage"`
	Provider ProviderConfig `koanf:"provider"`
	Query    QueryConfig    `koanf:"query"`
}

// LoaderConfig controls document discovery.
type LoaderConfig struct {
	Extensions   []string `koanf:"extensions"`
	ExcludedDirs []string `koanf:"excluded_dirs"`
}

// StorageConfig controls where the persisted vector index and the
// ingestion catalog live.
type StorageConfig struct {
	Dir        string `koanf:"dir"`
	Collection string `koanf:"collection"`
	Compress   bool   `koanf:"compress"`
}

// ProviderConfig controls the hosted embedding/LLM provider.
type ProviderConfig struct {
	Name       string        `koanf:"name"` // openai or local
	APIKey     string        `koanf:"api_key"`
	BaseURL    string        `koanf:"base_url"`
	EmbedModel string        `koanf:"embed_model"`
	ChatModel  string        `koanf:"chat_model"`
	Timeout    time.Duration `koanf:"timeout"`
}

// QueryConfig controls retrieval and answer generation.
type QueryConfig struct {
	TopK     int  `koanf:"top_k"`
	UseCache bool `koanf:"use_cache"`
}

// IndexDir is the vector index directory inside the storage dir.
func (c *Config) IndexDir() string {
	return filepath.Join(c.Storage.Dir, "index")
}

// CatalogPath is the ingestion catalog database inside the storage dir.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.Storage.Dir, "catalog.db")
}

// Default returns a Config populated with defaults. The provider API key
// is left empty; hosted providers fail fast without it.
func Default() *Config {
	return &Config{
		Loader: LoaderConfig{
			Extensions:   append([]string(nil), DefaultExtensions...),
			ExcludedDirs: append([]string(nil), DefaultExcludedDirs...),
		},
		Storage: StorageConfig{
			Dir:        DefaultStorageDir,
			Collection: DefaultCollection,
		},
		Provider: ProviderConfig{
			Name:    DefaultProvider,
			Timeout: DefaultTimeout,
		},
		Query: QueryConfig{
			TopK:     DefaultTopK,
			UseCache: true,
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Storage.Dir == "" {
		return errors.New("storage dir cannot be empty")
	}
	if c.Storage.Collection == "" {
		return errors.New("storage collection cannot be empty")
	}
	if c.Query.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.Query.TopK)
	}
	if c.Provider.Timeout <= 0 {
		return errors.New("provider timeout must be positive")
	}
	if len(c.Loader.Extensions) == 0 {
		return errors.New("at least one content extension is required")
	}
	return nil
}

// ValidateForIngest performs the additional checks ingest needs.
func (c *Config) ValidateForIngest() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.Roots) == 0 {
		return errors.New("at least one document root is required for ingest")
	}
	return nil
}
