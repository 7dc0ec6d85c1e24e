package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func otelTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestOTelInitialization tests OpenTelemetry initialization
func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(nil, otelTestLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = providers.Shutdown(ctx)
	assert.NoError(t, err)
}

// TestOTelMetricsDisabled tests initialization with metrics turned off
func TestOTelMetricsDisabled(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.EnableMetrics = false

	providers, err := InitializeOTel(cfg, otelTestLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)

	err = providers.Shutdown(context.Background())
	assert.NoError(t, err)
}

// TestOTelUnsupportedExporter tests rejection of unknown metric exporters
func TestOTelUnsupportedExporter(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.MetricExporter = "statsd"

	_, err := InitializeOTel(cfg, otelTestLogger())
	assert.Error(t, err)
}

// TestCreateMetrics tests application metrics creation
func TestCreateMetrics(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), otelTestLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateMetrics(providers.Meter)
	require.NoError(t, err)
	require.NotNil(t, metrics)

	assert.NotNil(t, metrics.HTTPRequestsTotal)
	assert.NotNil(t, metrics.HTTPRequestDuration)
	assert.NotNil(t, metrics.HTTPActiveRequests)

	assert.NotNil(t, metrics.PortalSearchesTotal)
	assert.NotNil(t, metrics.PortalSearchDuration)
	assert.NotNil(t, metrics.PortalListingsFetched)
	assert.NotNil(t, metrics.PortalCacheHits)
	assert.NotNil(t, metrics.PortalCacheMisses)

	assert.NotNil(t, metrics.ExportsTotal)
	assert.NotNil(t, metrics.ExportAddressesTotal)
	assert.NotNil(t, metrics.ListingsSuppressedTotal)
}

// TestRecordHelpers tests the metric recording helpers
func TestRecordHelpers(t *testing.T) {
	ctx := context.Background()

	// Nil metrics must be a no-op, not a panic.
	RecordSearchMetrics(ctx, nil, "he", time.Second, 10, false, nil)
	RecordCacheAccess(ctx, nil, true)
	RecordExportMetrics(ctx, nil, "csv", 5)
	RecordSuppressedListings(ctx, nil, 3)

	providers, err := InitializeOTel(DefaultOTelConfig(), otelTestLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateMetrics(providers.Meter)
	require.NoError(t, err)

	RecordSearchMetrics(ctx, metrics, "he", 250*time.Millisecond, 12, false, nil)
	RecordSearchMetrics(ctx, metrics, "by", 10*time.Millisecond, 0, true, nil)
	RecordSearchMetrics(ctx, metrics, "sn", time.Second, 0, false, errors.New("boom"))
	RecordCacheAccess(ctx, metrics, true)
	RecordCacheAccess(ctx, metrics, false)
	RecordExportMetrics(ctx, metrics, "csv", 42)
	RecordExportMetrics(ctx, metrics, "xlsx", 7)
	RecordSuppressedListings(ctx, metrics, 3)
	RecordSuppressedListings(ctx, metrics, 0)
}
