// internal/common/observability/metrics.go
package observability

import (
	"context"
	"log"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
)

// Observability owns the OTel meter and tracer providers for one process.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	jobCounter    otelmetric.Int64Counter
	jobDuration   otelmetric.Float64Histogram
	rankCounter   otelmetric.Int64Counter
	rankDuration  otelmetric.Float64Histogram

	tracing *tracing
	tracer  trace.Tracer
}

// New wires metrics to the default Prometheus registry and traces to Jaeger
// when jaegerEndpoint is set. It never fails; broken exporters are logged and
// skipped.
func New(serviceName, jaegerEndpoint string) *Observability {
	return newWithRegisterer(serviceName, jaegerEndpoint, promclient.DefaultRegisterer)
}

func newWithRegisterer(serviceName, jaegerEndpoint string, reg promclient.Registerer) *Observability {
	o := &Observability{}

	tr, err := newTracing(serviceName, jaegerEndpoint)
	if err != nil {
		log.Printf("Failed to create tracer provider: %v", err)
	} else {
		o.tracing = tr
	}
	o.tracer = otel.Tracer(serviceName)
	if o.tracing != nil {
		o.tracer = o.tracing.provider.Tracer(serviceName)
	}

	exporter, err := prometheus.New(prometheus.WithRegisterer(reg))
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return o
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	o.jobCounter, _ = meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)
	o.jobDuration, _ = meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)
	o.rankCounter, _ = meter.Int64Counter(
		"rankings.produced",
		otelmetric.WithDescription("Number of rankings produced"),
	)
	o.rankDuration, _ = meter.Float64Histogram(
		"rankings.duration",
		otelmetric.WithDescription("Ranking duration"),
		otelmetric.WithUnit("ms"),
	)
	o.meterProvider = provider
	o.meter = meter

	return o
}

// StartSpan starts a span on the process tracer. Callers must End it.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := o.tracer
	if tracer == nil {
		tracer = otel.Tracer("freelance-matcher")
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordJobProcessed(ctx context.Context, status string) {
	if o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordJobDuration(ctx context.Context, duration time.Duration, status string) {
	if o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

// RecordRanking counts one finished ranking.
func (o *Observability) RecordRanking(ctx context.Context, direction, mode string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("direction", direction),
		attribute.String("mode", mode),
	)
	if o.rankCounter != nil {
		o.rankCounter.Add(ctx, 1, attrs)
	}
	if o.rankDuration != nil {
		o.rankDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracing != nil {
		o.tracing.shutdown(ctx)
	}
}
