package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/hxuan190/evm-quote-engine/internal/config"
)

func TestSetupDisabledIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), &config.TelemetryConfig{Enabled: false}, "dev")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestStdoutExporterWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	exporter, err := newExporter(context.Background(), &config.TelemetryConfig{Exporter: config.ExporterStdout}, &buf)
	require.NoError(t, err)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	_, span := tp.Tracer("test").Start(context.Background(), "router.Quote")
	span.End()
	require.NoError(t, tp.Shutdown(context.Background()))

	require.Contains(t, buf.String(), "router.Quote")
}

func TestUnknownExporter(t *testing.T) {
	_, err := newExporter(context.Background(), &config.TelemetryConfig{Exporter: "zipkin"}, nil)
	require.Error(t, err)
}
