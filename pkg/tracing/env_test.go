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

package tracing

import (
	"context"
	"testing"
)

func TestInitFromEnvDefaultBuildIsNoop(t *testing.T) {
	shutdown, err := InitFromEnv(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("InitFromEnv: %v", err)
	}
	if shutdown == nil {
		t.Fatal("InitFromEnv returned a nil shutdown func")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if _, ok := globalTracer.(NoopTracer); !ok {
		t.Fatalf("globalTracer = %T, want NoopTracer after no-op InitFromEnv", globalTracer)
	}
}
