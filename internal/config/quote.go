package config

import (
	"errors"
	"time"
)

type QuoteConfig struct {
	// RegistryPath points to a chains TOML file. Empty uses the embedded registry.
	RegistryPath string

	// DefaultSlippageBps applies when a request does not carry one.
	// Default: 50
	DefaultSlippageBps int

	// Debounce is the quote session delay before a computation is issued.
	// Default: 300ms
	Debounce time.Duration

	// CacheTTL bounds how long the HTTP facade reuses an identical quote. Zero disables it.
	// Default: 2s
	CacheTTL time.Duration
}

func (c *QuoteConfig) Key() string {
	return QUOTE_CONFIG_KEY
}

func (c *QuoteConfig) Load() error {
	c.RegistryPath = GetEnvOrDefault("REGISTRY_PATH", "")
	c.DefaultSlippageBps = GetEnvOrDefaultInt("QUOTE_DEFAULT_SLIPPAGE_BPS", 50)
	c.Debounce = GetEnvDuration("QUOTE_DEBOUNCE_MS", 300*time.Millisecond)
	c.CacheTTL = GetEnvDuration("QUOTE_CACHE_TTL", 2*time.Second)
	return c.Validate()
}

func (c *QuoteConfig) Validate() error {
	if c.DefaultSlippageBps < 0 || c.DefaultSlippageBps > 10000 {
		return errors.New("invalid quote config: slippage out of range")
	}
	if c.Debounce < 0 {
		return errors.New("invalid quote config: negative debounce")
	}
	if c.CacheTTL < 0 {
		return errors.New("invalid quote config: negative cache ttl")
	}
	return nil
}
