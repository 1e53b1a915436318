package config

import "errors"

const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

type TelemetryConfig struct {
	Enabled        bool
	Exporter       string
	OTLPEndpoint   string
	InsecureOTLP   bool
	ServiceName    string
	ServiceVersion string
}

func (c *TelemetryConfig) Key() string {
	return TELEMETRY_CONFIG_KEY
}

func (c *TelemetryConfig) Load() error {
	c.Enabled = GetEnvOrDefaultBool("OTEL_ENABLED", false)
	c.Exporter = GetEnvOrDefault("OTEL_EXPORTER", ExporterStdout)
	c.OTLPEndpoint = GetEnvOrDefault("OTEL_OTLP_ENDPOINT", "localhost:4318")
	c.InsecureOTLP = GetEnvOrDefaultBool("OTEL_OTLP_INSECURE", false)
	c.ServiceName = GetEnvOrDefault("OTEL_SERVICE_NAME", "evm-quote-engine")
	c.ServiceVersion = GetEnvOrDefault("OTEL_SERVICE_VERSION", "1.0.0")
	return c.Validate()
}

func (c *TelemetryConfig) Validate() error {
	if c.Exporter != ExporterStdout && c.Exporter != ExporterOTLP {
		return errors.New("invalid telemetry config: exporter must be stdout or otlp")
	}
	return nil
}
