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

// Token is the OIDC client's narrow contract: a signed identity JWT and the
// subject claim extracted from it. The orchestrator does not otherwise
// interpret the token; it passes RawToken opaquely to the CA client.
type Token struct {
	RawToken string
	Subject  string
}
