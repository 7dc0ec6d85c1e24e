package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"zvgcli/internal/infrastructure"
)

// MetricsMiddleware records HTTP request metrics through OpenTelemetry
type MetricsMiddleware struct {
	metrics *infrastructure.Metrics
	logger  *slog.Logger
}

// NewMetricsMiddleware creates HTTP metrics middleware from the OTel providers.
// When metrics are disabled the middleware passes requests through untouched.
func NewMetricsMiddleware(providers *infrastructure.OTelProviders, logger *slog.Logger) (*MetricsMiddleware, error) {
	m := &MetricsMiddleware{logger: logger}

	if providers == nil || providers.Meter == nil {
		return m, nil
	}

	metrics, err := infrastructure.CreateMetrics(providers.Meter)
	if err != nil {
		return nil, err
	}
	m.metrics = metrics

	return m, nil
}

// Metrics exposes the instrument set so services can share the same instances
func (m *MetricsMiddleware) Metrics() *infrastructure.Metrics {
	return m.metrics
}

// Handler instruments each request with counters and duration histograms
func (m *MetricsMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		start := time.Now()

		m.metrics.HTTPActiveRequests.Add(ctx, 1)
		defer m.metrics.HTTPActiveRequests.Add(ctx, -1)

		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		statusCode := ww.statusCode

		attrs := []attribute.KeyValue{
			attribute.String("method", r.Method),
			attribute.String("route", getRoutePattern(r)),
			attribute.Int("status_code", statusCode),
		}

		m.metrics.HTTPRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
		m.metrics.HTTPRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))

		if statusCode >= 500 {
			m.logger.WarnContext(ctx, "HTTP request failed",
				slog.String("method", r.Method),
				slog.String("route", getRoutePattern(r)),
				slog.Int("status_code", statusCode),
				slog.Duration("duration", duration),
				slog.String("remote_addr", GetRealIP(r)),
				slog.Int64("bytes_written", ww.bytesWritten),
			)
		}
	})
}

// responseWriter wraps http.ResponseWriter to capture response details
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

// getRoutePattern extracts the route pattern from request context
func getRoutePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return r.URL.Path
}

// GetRealIP extracts the real IP address from the request
func GetRealIP(r *http.Request) string {
	// Check for forwarded headers
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		// X-Forwarded-For may contain a chain, take the first hop
		if idx := strings.Index(ip, ","); idx > 0 {
			return strings.TrimSpace(ip[:idx])
		}
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
