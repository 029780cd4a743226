package observability

import (
	"context"
	"time"

	"soc-dashboard/internal/common/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Observability owns the otel meter and tracer providers for the process.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer
	reportCounter  otelmetric.Int64Counter
	reportDuration otelmetric.Float64Histogram
	logger         *zap.Logger
}

// New wires the prometheus-backed meter and, when enabled, a Jaeger tracer.
// Exporter failures degrade to no-op instruments rather than failing startup.
func New(serviceName string, tracing config.TracingConfig, logger *zap.Logger) *Observability {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Observability{logger: logger}

	exporter, err := prometheus.New()
	if err != nil {
		logger.Warn("failed to create prometheus exporter", zap.Error(err))
	} else {
		o.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter))
		otel.SetMeterProvider(o.meterProvider)
	}

	if tracing.Enabled {
		tp, err := newTracerProvider(serviceName, tracing.JaegerEndpoint)
		if err != nil {
			logger.Warn("failed to create jaeger exporter", zap.Error(err))
		} else {
			o.tracerProvider = tp
			otel.SetTracerProvider(tp)
		}
	}

	o.meter = otel.GetMeterProvider().Meter(serviceName)
	o.tracer = otel.GetTracerProvider().Tracer(serviceName)

	o.reportCounter, _ = o.meter.Int64Counter(
		"reports.served",
		otelmetric.WithDescription("Number of report requests served"),
	)

	o.reportDuration, _ = o.meter.Float64Histogram(
		"reports.duration",
		otelmetric.WithDescription("Report request duration"),
		otelmetric.WithUnit("ms"),
	)

	return o
}

func newTracerProvider(serviceName, endpoint string) (*sdktrace.TracerProvider, error) {
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
	if err != nil {
		return nil, err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	)

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	), nil
}

// StartSpan starts a span on the process tracer. Without tracing enabled the
// global provider is a no-op.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := o.tracer
	if tracer == nil {
		tracer = otel.Tracer("soc-dashboard")
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordReport(ctx context.Context, report, status string) {
	if o.reportCounter != nil {
		o.reportCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("report", report),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordReportDuration(ctx context.Context, report string, duration time.Duration) {
	if o.reportDuration != nil {
		o.reportDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("report", report),
		))
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			o.logger.Warn("tracer provider shutdown failed", zap.Error(err))
		}
	}
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil {
			o.logger.Warn("meter provider shutdown failed", zap.Error(err))
		}
	}
}
