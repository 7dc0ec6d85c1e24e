package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
)

const (
	ServiceName    = "zvgcli"
	ServiceVersion = "1.0.0"
	MeterName      = "zvgcli"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	MetricExporter string // "prometheus", "none"
	EnableMetrics  bool
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	MeterProvider  *sdkmetric.MeterProvider
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// DefaultOTelConfig returns a default OpenTelemetry configuration
func DefaultOTelConfig() *OTelConfig {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: ServiceVersion,
		Environment:    env,
		MetricExporter: "prometheus",
		EnableMetrics:  true,
	}
}

// InitializeOTel initializes the OpenTelemetry metric pipeline
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}

	ctx := context.Background()

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providers := &OTelProviders{
		Logger: logger,
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	logger.InfoContext(ctx, "OpenTelemetry initialization complete",
		slog.String("service", cfg.ServiceName),
		slog.String("version", cfg.ServiceVersion),
		slog.String("environment", cfg.Environment),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg *OTelConfig) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	), nil
}

// initializeMetrics sets up the meter provider and exporter
func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.MetricExporter {
	case "prometheus":
		exporter, err := prometheus.New()
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}

		providers.PrometheusHTTP = promhttp.Handler()

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)

		providers.MeterProvider = mp
		providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))

		otel.SetMeterProvider(mp)

	case "none":
		return nil
	default:
		return fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}

	providers.Logger.InfoContext(ctx, "Metrics initialized",
		slog.String("exporter", cfg.MetricExporter))

	return nil
}

// Metrics holds all application-specific metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Portal metrics
	PortalSearchesTotal   metric.Int64Counter
	PortalSearchDuration  metric.Float64Histogram
	PortalListingsFetched metric.Int64Counter
	PortalCacheHits       metric.Int64Counter
	PortalCacheMisses     metric.Int64Counter

	// Export metrics
	ExportsTotal         metric.Int64Counter
	ExportAddressesTotal metric.Int64Counter

	// Contact filter metrics
	ListingsSuppressedTotal metric.Int64Counter

	// WebSocket metrics
	WSConnectionsActive metric.Int64UpDownCounter
	WSMessagesSentTotal metric.Int64Counter
}

// CreateMetrics creates application-specific metrics
func CreateMetrics(meter metric.Meter) (*Metrics, error) {
	httpRequestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	httpRequestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	httpActiveRequests, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	portalSearchesTotal, err := meter.Int64Counter(
		"portal_searches_total",
		metric.WithDescription("Total number of portal searches"),
	)
	if err != nil {
		return nil, err
	}

	portalSearchDuration, err := meter.Float64Histogram(
		"portal_search_duration_seconds",
		metric.WithDescription("Portal search duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	portalListingsFetched, err := meter.Int64Counter(
		"portal_listings_fetched_total",
		metric.WithDescription("Total number of listings fetched from the portal"),
	)
	if err != nil {
		return nil, err
	}

	portalCacheHits, err := meter.Int64Counter(
		"portal_cache_hits_total",
		metric.WithDescription("Total number of portal cache hits"),
	)
	if err != nil {
		return nil, err
	}

	portalCacheMisses, err := meter.Int64Counter(
		"portal_cache_misses_total",
		metric.WithDescription("Total number of portal cache misses"),
	)
	if err != nil {
		return nil, err
	}

	exportsTotal, err := meter.Int64Counter(
		"exports_total",
		metric.WithDescription("Total number of address exports"),
	)
	if err != nil {
		return nil, err
	}

	exportAddressesTotal, err := meter.Int64Counter(
		"export_addresses_total",
		metric.WithDescription("Total number of address records exported"),
	)
	if err != nil {
		return nil, err
	}

	listingsSuppressedTotal, err := meter.Int64Counter(
		"listings_suppressed_total",
		metric.WithDescription("Total number of listings hidden by the contact filter"),
	)
	if err != nil {
		return nil, err
	}

	wsConnectionsActive, err := meter.Int64UpDownCounter(
		"websocket_connections_active",
		metric.WithDescription("Number of connected websocket clients"),
	)
	if err != nil {
		return nil, err
	}

	wsMessagesSentTotal, err := meter.Int64Counter(
		"websocket_messages_sent_total",
		metric.WithDescription("Total number of websocket messages delivered to clients"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		HTTPRequestsTotal:   httpRequestsTotal,
		HTTPRequestDuration: httpRequestDuration,
		HTTPActiveRequests:  httpActiveRequests,

		PortalSearchesTotal:   portalSearchesTotal,
		PortalSearchDuration:  portalSearchDuration,
		PortalListingsFetched: portalListingsFetched,
		PortalCacheHits:       portalCacheHits,
		PortalCacheMisses:     portalCacheMisses,

		ExportsTotal:         exportsTotal,
		ExportAddressesTotal: exportAddressesTotal,

		ListingsSuppressedTotal: listingsSuppressedTotal,

		WSConnectionsActive: wsConnectionsActive,
		WSMessagesSentTotal: wsMessagesSentTotal,
	}, nil
}

// Shutdown gracefully shuts down OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			return fmt.Errorf("meter provider shutdown: %w", err)
		}
	}

	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// RecordSearchMetrics records metrics for a completed portal search
func RecordSearchMetrics(ctx context.Context, metrics *Metrics, land string, duration time.Duration, listings int, fromCache bool, err error) {
	if metrics == nil {
		return
	}

	source := "portal"
	if fromCache {
		source = "cache"
	}
	status := "success"
	if err != nil {
		status = "failure"
	}

	attrs := []attribute.KeyValue{
		attribute.String("land", land),
		attribute.String("source", source),
		attribute.String("status", status),
	}

	metrics.PortalSearchesTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.PortalSearchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))

	if err == nil {
		metrics.PortalListingsFetched.Add(ctx, int64(listings),
			metric.WithAttributes(attribute.String("land", land)))
	}
}

// RecordCacheAccess records a portal cache hit or miss
func RecordCacheAccess(ctx context.Context, metrics *Metrics, hit bool) {
	if metrics == nil {
		return
	}

	if hit {
		metrics.PortalCacheHits.Add(ctx, 1)
	} else {
		metrics.PortalCacheMisses.Add(ctx, 1)
	}
}

// RecordExportMetrics records metrics for a completed address export
func RecordExportMetrics(ctx context.Context, metrics *Metrics, format string, addresses int) {
	if metrics == nil {
		return
	}

	attrs := []attribute.KeyValue{attribute.String("format", format)}
	metrics.ExportsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.ExportAddressesTotal.Add(ctx, int64(addresses), metric.WithAttributes(attrs...))
}

// RecordSuppressedListings records listings hidden by the contact filter
func RecordSuppressedListings(ctx context.Context, metrics *Metrics, count int) {
	if metrics == nil || count == 0 {
		return
	}

	metrics.ListingsSuppressedTotal.Add(ctx, int64(count))
}

// RecordWSConnectionChange adjusts the active websocket client gauge.
func RecordWSConnectionChange(ctx context.Context, metrics *Metrics, delta int64) {
	if metrics == nil {
		return
	}

	metrics.WSConnectionsActive.Add(ctx, delta)
}

// RecordWSMessagesSent records websocket messages delivered to clients.
func RecordWSMessagesSent(ctx context.Context, metrics *Metrics, count int64, messageType string) {
	if metrics == nil || count == 0 {
		return
	}

	metrics.WSMessagesSentTotal.Add(ctx, count,
		metric.WithAttributes(attribute.String("type", messageType)))
}
