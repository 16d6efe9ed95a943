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

package ca

import (
	"context"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sigstore/keyless-signing/pkg/oidcclient"
)

func pemCert(der []byte) string {
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
}

func TestSignCertificateHappyPath(t *testing.T) {
	tc := buildTestChain(t)
	root := trustRootFor(t, tc)

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req signingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		if req.CertificateSigningRequest == "" {
			t.Error("signing request carried no CSR")
		}

		resp := signingResponse{}
		resp.SignedCertificateEmbeddedSct.Chain.Certificates = []string{
			pemCert(tc.leaf.Raw),
			pemCert(tc.intermediate.Raw),
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL})
	chain, err := client.SignCertificate(context.Background(), oidcclient.Token{RawToken: "test-token", Subject: "signer@example.com"}, tc.leafKey, root)
	if err != nil {
		t.Fatalf("SignCertificate: %v", err)
	}
	if len(chain) != 2 {
		t.Fatalf("chain length = %d, want 2", len(chain))
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("Authorization header = %q, want %q", gotAuth, "Bearer test-token")
	}
}

func TestSignCertificateRejectsMismatchedLeaf(t *testing.T) {
	tc := buildTestChain(t)
	other := buildTestChain(t)
	root := trustRootFor(t, tc)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := signingResponse{}
		// The CA returns a leaf bound to a different ephemeral key than the
		// one the caller submitted proof-of-possession for.
		resp.SignedCertificateEmbeddedSct.Chain.Certificates = []string{
			pemCert(other.leaf.Raw),
			pemCert(other.intermediate.Raw),
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL})
	_, err := client.SignCertificate(context.Background(), oidcclient.Token{RawToken: "test-token", Subject: "signer@example.com"}, tc.leafKey, root)
	if err == nil {
		t.Fatal("SignCertificate must reject a chain whose leaf key does not match the submitted ephemeral key")
	}
}

func TestSignCertificatePropagatesServerError(t *testing.T) {
	tc := buildTestChain(t)
	root := trustRootFor(t, tc)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL})
	_, err := client.SignCertificate(context.Background(), oidcclient.Token{RawToken: "test-token", Subject: "signer@example.com"}, tc.leafKey, root)
	if err == nil {
		t.Fatal("SignCertificate must propagate a CA server error")
	}
}
