package telemetry

import (
	"context"
	"testing"

	"github.com/multicommerce/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := config.TelemetryConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     1.0,
		ServiceName:       "test-service",
	}

	tp, err := NewTracerProvider(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, tp)

	assert.False(t, tp.IsEnabled())

	// Tracer still hands out a usable (no-op) tracer.
	tracer := tp.Tracer("test")
	require.NotNil(t, tracer)
	_, span := tracer.Start(ctx, "test-span")
	span.End()

	assert.NoError(t, tp.Shutdown(ctx))
}
