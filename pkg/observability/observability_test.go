package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	require.Equal(t, "goalkeeper", config.ServiceName)
	require.Equal(t, "localhost:4317", config.OTLPEndpoint)
	require.Equal(t, 1.0, config.SampleRate)
	require.False(t, config.Enabled)
	require.True(t, config.Insecure)
}

func TestNewProviderDisabled(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NotNil(t, p.Tracer())
	require.NotNil(t, p.Meter())
}

func TestNewProviderWithNilConfig(t *testing.T) {
	p, err := New(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, p)
}

func TestNewProviderEnabled(t *testing.T) {
	// The exporters connect lazily, so no collector is needed.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	config := DefaultConfig()
	config.Enabled = true
	config.OTLPEndpoint = "127.0.0.1:1"

	p, err := New(ctx, config)
	if err != nil {
		t.Logf("Provider creation failed (expected in some test envs): %v", err)
		return
	}
	require.NotNil(t, p.tracerProvider)
	require.NotNil(t, p.meterProvider)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancelShutdown()
	require.NoError(t, p.Shutdown(shutdownCtx))
}

func TestTrackOperation(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)

	newCtx, finish := p.TrackOperation(context.Background(), "test.operation",
		attribute.String("test.key", "test.value"))
	require.NotNil(t, newCtx)
	finish(nil)
}

func TestShutdownDisabled(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)
	require.NoError(t, p.Shutdown(context.Background()))
}
