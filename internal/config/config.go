package config

import (
	"errors"
	"fmt"
	"strings"
)

type ServerEnv = string

var (
	DevEnv     ServerEnv = "dev"
	StagingEnv ServerEnv = "staging"
	ProdEnv    ServerEnv = "prod"
)

const (
	GENERAL_CONFIG_KEY   = "general-config"
	RPC_CONFIG_KEY       = "rpc-config"
	QUOTE_CONFIG_KEY     = "quote-config"
	STORAGE_CONFIG_KEY   = "storage-config"
	TELEMETRY_CONFIG_KEY = "telemetry-config"
)

// Config is implemented by every configuration section.
type Config interface {
	Key() string
	Load() error
	Validate() error
}

type GeneralConfig struct {
	HTTPPort string
	HTTPHost string
	Env      string
	LogLevel string

	// Per-IP request rate for the HTTP API.
	RateLimitRPS   int
	RateLimitBurst int
}

func (gc *GeneralConfig) Key() string {
	return GENERAL_CONFIG_KEY
}

func (gc *GeneralConfig) Load() error {
	gc.HTTPPort = GetEnvOrDefault("HTTP_PORT", "8080")
	gc.HTTPHost = GetEnvOrDefault("HTTP_HOST", "localhost")
	gc.Env = GetEnvOrDefault("ENV", DevEnv)
	gc.LogLevel = GetEnvOrDefault("LOG_LEVEL", "INFO")
	gc.RateLimitRPS = GetEnvOrDefaultInt("RATE_LIMIT_RPS", 10)
	gc.RateLimitBurst = GetEnvOrDefaultInt("RATE_LIMIT_BURST", 20)
	return gc.Validate()
}

func (gc *GeneralConfig) Validate() error {
	if gc.HTTPPort == "" || gc.HTTPHost == "" || gc.Env == "" {
		return errors.New("invalid server config")
	}
	if gc.RateLimitRPS <= 0 || gc.RateLimitBurst <= 0 {
		return errors.New("invalid rate limit config")
	}
	return nil
}

func (gc *GeneralConfig) IsDev() bool {
	return strings.EqualFold(gc.Env, DevEnv)
}

// Load loads every section in order and stops at the first failure.
func Load(sections ...Config) error {
	for _, s := range sections {
		if err := s.Load(); err != nil {
			return fmt.Errorf("%s: %w", s.Key(), err)
		}
	}
	return nil
}
