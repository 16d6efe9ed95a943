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
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"

	"github.com/secure-systems-lab/go-securesystemslib/cjson"
	"github.com/sigstore/keyless-signing/pkg/xcrypto"
)

// entryBody is the canonical log-entry body submitted to putEntry, with
// deterministic field ordering enforced by cjson at serialization time
// rather than by struct field order (JSON object key order is otherwise
// unspecified by encoding/json).
type entryBody struct {
	APIVersion string       `json:"apiVersion"`
	Kind       string       `json:"kind"`
	Spec       entryBodySpec `json:"spec"`
}

type entryBodySpec struct {
	Data      entryData      `json:"data"`
	Signature entrySignature `json:"signature"`
}

type entryData struct {
	Hash entryHash `json:"hash"`
}

type entryHash struct {
	Algorithm string `json:"algorithm"`
	Value     string `json:"value"`
}

type entrySignature struct {
	Format    string          `json:"format"`
	Content   string          `json:"content"`
	PublicKey entryPublicKey  `json:"publicKey"`
}

type entryPublicKey struct {
	Content string `json:"content"`
}

const (
	entryAPIVersion = "0.0.1"
	entryKind       = "hashedrekord"
)

// buildEntryBody constructs the canonical entry body for a leaf's public
// key, an artifact digest, and the detached signature over that digest.
func buildEntryBody(leaf *x509.Certificate, digest xcrypto.Digest, signature []byte) entryBody {
	leafPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: leaf.Raw})
	return entryBody{
		APIVersion: entryAPIVersion,
		Kind:       entryKind,
		Spec: entryBodySpec{
			Data: entryData{
				Hash: entryHash{
					Algorithm: digest.Algorithm(),
					Value:     digest.Hex(),
				},
			},
			Signature: entrySignature{
				Format:  "x509",
				Content: base64.StdEncoding.EncodeToString(signature),
				PublicKey: entryPublicKey{
					Content: base64.StdEncoding.EncodeToString(leafPEM),
				},
			},
		},
	}
}

// canonicalBody serializes an entryBody with deterministic field
// ordering, matching the encoding a Rekor-style log expects for the
// body's SHA-256-derived entry UUID and for SET verification.
func canonicalBody(body entryBody) ([]byte, error) {
	encoded, err := cjson.EncodeCanonical(body)
	if err != nil {
		return nil, newError(KindMalformedResponse, "canonicalizing entry body", err)
	}
	return encoded, nil
}

// entryUUID computes the log entry's UUID as the SHA-256 digest of the
// canonical body, matching how the reference log derives an entry's
// identifier from its content rather than assigning one server-side.
func entryUUID(canonical []byte) string {
	return xcrypto.DigestBytes(canonical).Hex()
}
