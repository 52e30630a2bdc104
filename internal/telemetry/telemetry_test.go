package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetupNoopWhenEndpointEmpty(t *testing.T) {
	before := otel.GetTracerProvider()

	shutdown, err := Setup(context.Background(), "oxyvr-test", "")
	require.NoError(t, err)
	assert.Equal(t, before, otel.GetTracerProvider())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, shutdown(ctx))
}

func TestSetupInstallsProvider(t *testing.T) {
	before := otel.GetTracerProvider()

	// Non-routable address so nothing is exported.
	shutdown, err := Setup(context.Background(), "oxyvr-test", "http://192.0.2.1:4318")
	require.NoError(t, err)
	assert.NotEqual(t, before, otel.GetTracerProvider())
	assert.NoError(t, shutdown(context.Background()))
}
