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

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// unverifiedSubject extracts the "email" or "sub" claim from a JWT's
// payload segment without verifying its signature. It is used for tokens
// that did not come from an interactive flow: an explicitly configured
// identity token and ambient tokens (e.g. from GitHub Actions' OIDC token
// endpoint). Neither kind has its signature checked by this client.
func unverifiedSubject(rawToken string) (string, error) {
	parts := strings.Split(rawToken, ".")
	if len(parts) != 3 {
		return "", wrapError("malformed JWT: expected three dot-separated segments", nil)
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", wrapError("decoding JWT payload", err)
	}
	var claims struct {
		Email string `json:"email"`
		Sub   string `json:"sub"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", wrapError("unmarshaling JWT claims", err)
	}
	if claims.Email != "" {
		return claims.Email, nil
	}
	return claims.Sub, nil
}
