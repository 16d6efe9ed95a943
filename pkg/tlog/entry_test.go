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

package tlog

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/sigstore/keyless-signing/pkg/xcrypto"
)

func selfSignedLeaf(t *testing.T) (*x509.Certificate, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("ecdsa.GenerateKey: %v", err)
	}
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "signer@example.com"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("ParseCertificate: %v", err)
	}
	return cert, key
}

func TestCanonicalBodyIsDeterministic(t *testing.T) {
	leaf, _ := selfSignedLeaf(t)
	digest := xcrypto.DigestBytes([]byte("artifact"))
	body := buildEntryBody(leaf, digest, []byte{0x01, 0x02, 0x03})

	a, err := canonicalBody(body)
	if err != nil {
		t.Fatalf("canonicalBody: %v", err)
	}
	b, err := canonicalBody(body)
	if err != nil {
		t.Fatalf("canonicalBody: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("canonicalBody must be deterministic for the same input")
	}
}

func TestEntryUUIDMatchesSHA256OfCanonicalBody(t *testing.T) {
	leaf, _ := selfSignedLeaf(t)
	digest := xcrypto.DigestBytes([]byte("artifact"))
	body := buildEntryBody(leaf, digest, []byte{0x01, 0x02, 0x03})

	canonical, err := canonicalBody(body)
	if err != nil {
		t.Fatalf("canonicalBody: %v", err)
	}
	uuid := entryUUID(canonical)
	want := xcrypto.DigestBytes(canonical).Hex()
	if uuid != want {
		t.Fatalf("entryUUID = %s, want %s", uuid, want)
	}
	if len(uuid) != 64 {
		t.Fatalf("entryUUID length = %d, want 64 (hex-encoded sha256)", len(uuid))
	}
}

func TestBuildEntryBodyFields(t *testing.T) {
	leaf, _ := selfSignedLeaf(t)
	digest := xcrypto.DigestBytes([]byte("artifact"))
	sig := []byte{0xaa, 0xbb}
	body := buildEntryBody(leaf, digest, sig)

	if body.APIVersion != entryAPIVersion || body.Kind != entryKind {
		t.Fatalf("unexpected envelope fields: %+v", body)
	}
	if body.Spec.Data.Hash.Algorithm != "sha256" || body.Spec.Data.Hash.Value != digest.Hex() {
		t.Fatalf("unexpected hash fields: %+v", body.Spec.Data.Hash)
	}
	if body.Spec.Signature.Format != "x509" {
		t.Fatalf("Signature.Format = %s, want x509", body.Spec.Signature.Format)
	}
}
