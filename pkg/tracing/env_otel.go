// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build otel

// When built with -tags=otel, this file provides OpenTelemetry initialization
// from the OTEL_EXPORTER_OTLP_ENDPOINT environment variable. Without the
// build tag, InitFromEnv (env.go) is a no-op and OtelTracer is absent from
// the binary.

package tracing

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// InitFromEnv configures a global OpenTelemetry TracerProvider exporting via
// OTLP/HTTP when OTEL_EXPORTER_OTLP_ENDPOINT is set, and installs the
// resulting tracer as the package-global Tracer. If the environment
// variable is absent, InitFromEnv is a no-op and the no-op tracer remains
// installed. Returns a shutdown function that should be deferred by the
// caller (typically main) to flush pending spans.
func InitFromEnv(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceNameKey.String(serviceName),
	))
	if err != nil {
		return nil, fmt.Errorf("building resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	SetTracer(&OtelTracer{tracer: otel.Tracer(serviceName)})

	return provider.Shutdown, nil
}

// OtelTracer adapts an OpenTelemetry tracer to the Tracer interface.
// Installed by InitFromEnv once the process has configured an OpenTelemetry
// TracerProvider.
type OtelTracer struct {
	tracer oteltrace.Tracer
}

// Start starts a new OpenTelemetry span.
func (t *OtelTracer) Start(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name)
	return ctx, &otelSpan{span: span}
}

type otelSpan struct {
	span oteltrace.Span
}

func (s *otelSpan) SetAttribute(key string, value interface{}) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", v)))
	}
}

func (s *otelSpan) End() {
	s.span.End()
}

// RecordSpanError marks the span as failed with OpenTelemetry's error
// status in addition to attaching err, giving RecordError's default
// attribute-only behavior a richer backend-specific rendering.
func (s *otelSpan) RecordSpanError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(otelcodes.Error, err.Error())
}
