package provider

import (
	"fmt"
	"strings"
	"time"
)

// Config holds provider configuration. It is passed explicitly into
// constructors; nothing in this package mutates process-wide state.
type Config struct {
	Name       string
	APIKey     string
	BaseURL    string
	EmbedModel string
	ChatModel  string
	Timeout    time.Duration
	CacheSize  int
}

// New creates a provider from explicit configuration.
func New(cfg Config) (Provider, error) {
	var cache *Cache
	if cfg.CacheSize != 0 {
		cache = NewCache(cfg.CacheSize)
	} else {
		cache = NewCache(10000)
	}

	switch strings.ToLower(cfg.Name) {
	case ProviderOpenAI, "":
		return NewOpenAIProvider(cfg, cache)
	case ProviderLocal:
		return NewLocalProvider(cache)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Name)
	}
}
