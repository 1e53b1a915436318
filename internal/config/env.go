package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func GetEnvOrDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func GetEnvOrDefaultInt(key string, def int) int {
	v, err := strconv.Atoi(GetEnvOrDefault(key, ""))
	if err != nil {
		return def
	}
	return v
}

func GetEnvOrDefaultBool(key string, def bool) bool {
	v, err := strconv.ParseBool(GetEnvOrDefault(key, ""))
	if err != nil {
		return def
	}
	return v
}

// GetEnvDuration accepts Go duration strings ("750ms") or a bare integer of milliseconds.
func GetEnvDuration(key string, def time.Duration) time.Duration {
	raw := GetEnvOrDefault(key, "")
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return def
}
