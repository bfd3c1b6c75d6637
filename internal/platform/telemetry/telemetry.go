package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// ShutdownFunc releases telemetry resources.
type ShutdownFunc func(ctx context.Context) error

// Setup initializes OpenTelemetry with a Prometheus exporter.
// Returns a shutdown function that must be called on exit.
func Setup(ctx context.Context, serviceName string) (ShutdownFunc, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	return provider.Shutdown, nil
}

// MetricsHandler returns an http.Handler that serves Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// AuthMetrics holds all OTel instruments for the identity resolution layer.
type AuthMetrics struct {
	httpRequestsTotal   otelmetric.Int64Counter
	httpRequestDuration otelmetric.Float64Histogram
	resolutionsTotal    otelmetric.Int64Counter
	resolutionDuration  otelmetric.Float64Histogram
	rejectionsTotal     otelmetric.Int64Counter
}

// NewAuthMetrics creates and registers all resolution-layer metrics.
func NewAuthMetrics() (*AuthMetrics, error) {
	meter := otel.Meter("portal")
	m := &AuthMetrics{}
	var err error

	latencyBuckets := otelmetric.WithExplicitBucketBoundaries(
		0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0,
	)

	if m.httpRequestsTotal, err = meter.Int64Counter("portal_http_requests_total",
		otelmetric.WithDescription("Total HTTP requests")); err != nil {
		return nil, fmt.Errorf("creating http_requests_total: %w", err)
	}
	if m.httpRequestDuration, err = meter.Float64Histogram("portal_http_request_duration_seconds",
		otelmetric.WithDescription("HTTP request duration"), latencyBuckets); err != nil {
		return nil, fmt.Errorf("creating http_request_duration: %w", err)
	}
	if m.resolutionsTotal, err = meter.Int64Counter("portal_auth_resolutions_total",
		otelmetric.WithDescription("Total identity resolutions")); err != nil {
		return nil, fmt.Errorf("creating auth_resolutions_total: %w", err)
	}
	if m.resolutionDuration, err = meter.Float64Histogram("portal_auth_resolution_duration_seconds",
		otelmetric.WithDescription("Identity resolution duration"), latencyBuckets); err != nil {
		return nil, fmt.Errorf("creating auth_resolution_duration: %w", err)
	}
	if m.rejectionsTotal, err = meter.Int64Counter("portal_auth_rejections_total",
		otelmetric.WithDescription("Total categorized rejections")); err != nil {
		return nil, fmt.Errorf("creating auth_rejections_total: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request metric.
func (m *AuthMetrics) RecordHTTPRequest(ctx context.Context, method, path string, status int, durationSec float64) {
	attrs := otelmetric.WithAttributes(
		methodAttr(method),
		pathAttr(path),
		statusAttr(status),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, durationSec, attrs)
}

// RecordResolution records one identity resolution and its duration.
// provider is the accepting provider name, or "none" for rejections.
func (m *AuthMetrics) RecordResolution(ctx context.Context, provider, result string, durationSec float64) {
	attrs := otelmetric.WithAttributes(
		providerAttr(provider),
		resultAttr(result),
	)
	m.resolutionsTotal.Add(ctx, 1, attrs)
	m.resolutionDuration.Record(ctx, durationSec, attrs)
}

// RecordRejection records a categorized rejection.
func (m *AuthMetrics) RecordRejection(ctx context.Context, kind string) {
	m.rejectionsTotal.Add(ctx, 1, otelmetric.WithAttributes(kindAttr(kind)))
}
