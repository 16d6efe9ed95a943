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

// Package tracing provides an abstraction for distributed tracing. By
// default a no-op tracer is used; when a real Tracer is installed via
// SetTracer (typically one backed by OpenTelemetry, see env_otel.go), spans are
// recorded for each network-bound step of the signing pipeline (TUF
// refresh, OIDC exchange, CA issuance, transparency-log submission). This
// keeps the default build free of any tracing overhead while allowing
// operators to opt into full observability.
package tracing

import "context"

// Span represents a single operation in a trace. Call End when the
// operation completes. SetAttribute can be used to add key-value
// attributes.
type Span interface {
	SetAttribute(key string, value interface{})
	End()
}

// Tracer creates spans for named operations. When tracing is not
// configured, a no-op implementation is used so callers can always use the
// same API.
type Tracer interface {
	Start(ctx context.Context, name string) (context.Context, Span)
}

var globalTracer Tracer = NoopTracer{}

// SetTracer sets the global tracer used by Start. If nil is passed, the
// no-op tracer is used.
func SetTracer(t Tracer) {
	if t == nil {
		globalTracer = NoopTracer{}
		return
	}
	globalTracer = t
}

// Start starts a new span using the globally installed tracer.
func Start(ctx context.Context, name string) (context.Context, Span) {
	return globalTracer.Start(ctx, name)
}

// Run executes fn inside a span named name, ending the span when fn returns
// (even on panic-free early return via error). If fn returns a non-nil
// error, it is recorded on the span before End.
func Run(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := Start(ctx, name)
	defer span.End()
	err := fn(ctx)
	RecordError(span, err)
	return err
}

// errorRecorder is implemented by spans that support a richer error
// rendering than a plain attribute, e.g. OpenTelemetry's span status.
type errorRecorder interface {
	RecordSpanError(err error)
}

// RecordError marks span as failed. Backends that implement errorRecorder
// get their own status rendering; otherwise err is attached as a plain
// "error" attribute.
func RecordError(span Span, err error) {
	if err == nil {
		return
	}
	if r, ok := span.(errorRecorder); ok {
		r.RecordSpanError(err)
		return
	}
	span.SetAttribute("error", err.Error())
}
