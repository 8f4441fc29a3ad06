package telemetry

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestDisabledIsNoop(t *testing.T) {
	p, err := Setup(Config{})
	require.NoError(t, err)

	c, err := p.Meter().Int64Counter("newtown.test")
	require.NoError(t, err)
	c.Add(context.Background(), 1)
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestEnabledRequiresWriter(t *testing.T) {
	_, err := Setup(Config{Enabled: true})
	assert.Error(t, err)
}

func TestShutdownExports(t *testing.T) {
	var buf bytes.Buffer
	p, err := Setup(Config{Enabled: true, Interval: time.Hour, Writer: &buf})
	require.NoError(t, err)

	c, err := p.Meter().Int64Counter("newtown.test.counter")
	require.NoError(t, err)
	c.Add(context.Background(), 3)

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "newtown.test.counter")
}

func TestMeterRecords(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	p := newProvider(reader)

	c, err := p.Meter().Int64Counter("newtown.test.counter")
	require.NoError(t, err)
	c.Add(context.Background(), 2)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	assert.Equal(t, instrumentationName, rm.ScopeMetrics[0].Scope.Name)
	sum, ok := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)
}
