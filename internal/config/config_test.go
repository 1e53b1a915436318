package config

import (
	"testing"
	"time"
)

func TestRPCConfigLoadsPerChainURLs(t *testing.T) {
	t.Setenv("RPC_URL_11155111", "https://sepolia.example")
	t.Setenv("RPC_URL_534351", " https://scroll.example ")
	t.Setenv("RPC_CALL_TIMEOUT", "750ms")

	var c RPCConfig
	if err := c.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := c.URLs[11155111]; got != "https://sepolia.example" {
		t.Errorf("sepolia url = %q", got)
	}
	if got := c.URLs[534351]; got != "https://scroll.example" {
		t.Errorf("scroll url = %q", got)
	}
	if c.CallTimeout != 750*time.Millisecond {
		t.Errorf("CallTimeout = %v, want 750ms", c.CallTimeout)
	}
}

func TestRPCConfigRejectsMalformedChainKey(t *testing.T) {
	t.Setenv("RPC_URL_sepolia", "https://sepolia.example")

	var c RPCConfig
	if err := c.Load(); err == nil {
		t.Fatal("expected error for non-numeric chain id")
	}
}

func TestQuoteConfigDefaults(t *testing.T) {
	var c QuoteConfig
	if err := c.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.DefaultSlippageBps != 50 {
		t.Errorf("DefaultSlippageBps = %d, want 50", c.DefaultSlippageBps)
	}
	if c.Debounce != 300*time.Millisecond {
		t.Errorf("Debounce = %v, want 300ms", c.Debounce)
	}
}

func TestQuoteConfigDebounceAcceptsMilliseconds(t *testing.T) {
	t.Setenv("QUOTE_DEBOUNCE_MS", "0")

	var c QuoteConfig
	if err := c.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Debounce != 0 {
		t.Errorf("Debounce = %v, want 0", c.Debounce)
	}
}

func TestQuoteConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     QuoteConfig
		wantErr bool
	}{
		{name: "ok", cfg: QuoteConfig{DefaultSlippageBps: 50}},
		{name: "negative slippage", cfg: QuoteConfig{DefaultSlippageBps: -1}, wantErr: true},
		{name: "slippage above 100%", cfg: QuoteConfig{DefaultSlippageBps: 10001}, wantErr: true},
		{name: "negative debounce", cfg: QuoteConfig{Debounce: -time.Second}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTelemetryConfigRejectsUnknownExporter(t *testing.T) {
	t.Setenv("OTEL_EXPORTER", "zipkin")

	var c TelemetryConfig
	if err := c.Load(); err == nil {
		t.Fatal("expected error for unknown exporter")
	}
}

func TestLoadStopsAtFirstError(t *testing.T) {
	t.Setenv("OTEL_EXPORTER", "zipkin")

	general := &GeneralConfig{}
	telemetry := &TelemetryConfig{}
	quote := &QuoteConfig{}
	if err := Load(general, telemetry, quote); err == nil {
		t.Fatal("expected error")
	}
	if general.HTTPPort != "8080" {
		t.Errorf("general config not loaded before failure")
	}
	if quote.Debounce != 0 {
		t.Errorf("quote config loaded after failure")
	}
}
