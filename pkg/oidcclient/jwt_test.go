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
	"testing"
)

func fakeJWT(t *testing.T, claims interface{}) string {
	t.Helper()
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshaling claims: %v", err)
	}
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	body := base64.RawURLEncoding.EncodeToString(payload)
	return header + "." + body + ".signature"
}

func TestUnverifiedSubjectPrefersEmail(t *testing.T) {
	token := fakeJWT(t, map[string]string{"email": "signer@example.com", "sub": "1234"})
	subject, err := unverifiedSubject(token)
	if err != nil {
		t.Fatalf("unverifiedSubject: %v", err)
	}
	if subject != "signer@example.com" {
		t.Fatalf("subject = %q, want %q", subject, "signer@example.com")
	}
}

func TestUnverifiedSubjectFallsBackToSub(t *testing.T) {
	token := fakeJWT(t, map[string]string{"sub": "1234"})
	subject, err := unverifiedSubject(token)
	if err != nil {
		t.Fatalf("unverifiedSubject: %v", err)
	}
	if subject != "1234" {
		t.Fatalf("subject = %q, want %q", subject, "1234")
	}
}

func TestUnverifiedSubjectMalformedToken(t *testing.T) {
	if _, err := unverifiedSubject("not-a-jwt"); err == nil {
		t.Fatal("unverifiedSubject must reject a token without three segments")
	}
}
