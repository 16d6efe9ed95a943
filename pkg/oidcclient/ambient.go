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

package oidcclient

import "os"

// ambientEnvVars is the detection order for ambient identity tokens:
// an explicitly injected Sigstore token takes precedence over a GitHub
// Actions OIDC request token.
var ambientEnvVars = []string{"SIGSTORE_ID_TOKEN", "ACTIONS_ID_TOKEN_REQUEST_TOKEN"}

// ambientToken returns the first ambient identity token found in the
// environment, or "" if none is present.
func ambientToken() string {
	for _, name := range ambientEnvVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
