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

//go:build !otel

// This file provides the default InitFromEnv, compiled when the package is
// built without -tags=otel. When built with -tags=otel, env_otel.go is
// compiled instead and this file is excluded, so the default binary carries
// no OpenTelemetry dependency.

package tracing

import "context"

// InitFromEnv is a no-op in the default build: the no-op tracer installed
// by tracer.go remains in place, and the returned shutdown function does
// nothing.
func InitFromEnv(_ context.Context, _ string) (shutdown func(context.Context) error, err error) {
	return func(context.Context) error { return nil }, nil
}
