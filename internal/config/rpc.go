package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const rpcURLPrefix = "RPC_URL_"

type RPCConfig struct {
	// URLs maps chain id to a JSON-RPC endpoint, read from RPC_URL_<chainId>.
	URLs map[uint64]string
	// CallTimeout bounds every read-only contract call.
	CallTimeout time.Duration
}

func (r *RPCConfig) Key() string {
	return RPC_CONFIG_KEY
}

func (r *RPCConfig) Load() error {
	r.URLs = make(map[uint64]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, rpcURLPrefix) || strings.TrimSpace(value) == "" {
			continue
		}
		chainID, err := strconv.ParseUint(strings.TrimPrefix(key, rpcURLPrefix), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid rpc env %s: %w", key, err)
		}
		r.URLs[chainID] = strings.TrimSpace(value)
	}
	r.CallTimeout = GetEnvDuration("RPC_CALL_TIMEOUT", 10*time.Second)
	return r.Validate()
}

func (r *RPCConfig) Validate() error {
	if r.CallTimeout <= 0 {
		return errors.New("invalid rpc config: call timeout must be positive")
	}
	return nil
}
