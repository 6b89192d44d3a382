// Package tracing exports psrs job and phase spans over OpenTelemetry (OTLP/gRPC).
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package tracing

import (
	"context"
	"net/http"
	"os"

	"github.com/regsample/psrs/cmn/nlog"
	"github.com/regsample/psrs/config"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
)

var tp *trace.TracerProvider

func IsEnabled() bool { return tp != nil }

// Init installs the global tracer provider; a no-op unless conf.Enabled.
func Init(conf *config.TracingConf, version string) error {
	if conf == nil || !conf.Enabled {
		return nil
	}
	exp, err := newExporter(conf)
	if err != nil {
		return err
	}
	initProvider(exp, conf.SampleRatio, conf.ServiceName, version)
	nlog.Infof("tracing: exporting to %s (sample ratio %v)", conf.Endpoint, conf.SampleRatio)
	return nil
}

func newExporter(conf *config.TracingConf) (trace.SpanExporter, error) {
	options := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(conf.Endpoint),
		otlptracegrpc.WithRetry(otlptracegrpc.RetryConfig{Enabled: true}),
	}
	if conf.Insecure {
		options = append(options, otlptracegrpc.WithInsecure())
	}
	return otlptracegrpc.New(context.Background(), options...)
}

func newResource(serviceName, version string) *resource.Resource {
	host, _ := os.Hostname()
	r, _ := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", serviceName),
			attribute.String("version", version),
			attribute.String("host", host),
		),
	)
	return r
}

func initProvider(exp trace.SpanExporter, ratio float64, serviceName, version string) {
	tp = trace.NewTracerProvider(
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(ratio))),
		trace.WithBatcher(exp),
		trace.WithResource(newResource(serviceName, version)),
	)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)
	otel.SetTracerProvider(tp)
}

// Shutdown flushes pending spans.
func Shutdown(ctx context.Context) error {
	if tp == nil {
		return nil
	}
	err := tp.Shutdown(ctx)
	tp = nil
	return err
}

func NewTraceableHandler(handler http.Handler, operation string) http.Handler {
	if !IsEnabled() {
		return handler
	}
	return otelhttp.NewHandler(handler, operation)
}
