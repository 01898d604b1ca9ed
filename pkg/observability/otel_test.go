package observability

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitOTel_Disabled(t *testing.T) {
	logger, _ := test.NewNullLogger()

	providers, err := InitOTel(context.Background(), OTelConfig{Enabled: false}, logger)

	assert.NoError(t, err)
	assert.Nil(t, providers)
}

// OTLP exporters connect lazily, so an unreachable collector still
// initializes
func TestInitOTel_UnreachableEndpoint(t *testing.T) {
	logger, _ := test.NewNullLogger()

	cfg := OTelConfig{
		Enabled:        true,
		Endpoint:       "127.0.0.1:1",
		ServiceName:    "headless-test",
		ServiceVersion: "0.0.0",
		Environment:    "test",
		Insecure:       true,
		SampleRatio:    0.5,
	}

	providers, err := InitOTel(context.Background(), cfg, logger)
	require.NoError(t, err)
	require.NotNil(t, providers)
	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.MeterProvider)

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	_ = ShutdownOTel(ctx, providers, logger)
}

func TestSampleRatio(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 1},
		{-0.5, 1},
		{1.5, 1},
		{0.25, 0.25},
		{1, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sampleRatio(tt.in), "sampleRatio(%v)", tt.in)
	}
}

func TestShutdownOTel_Nil(t *testing.T) {
	logger, _ := test.NewNullLogger()
	assert.NoError(t, ShutdownOTel(context.Background(), nil, logger))
}
