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

package tuf

import (
	"crypto"
	"encoding/hex"
	"encoding/json"
	"strconv"

	"github.com/secure-systems-lab/go-securesystemslib/cjson"

	"github.com/sigstore/keyless-signing/pkg/xcrypto"
)

// publicKeyFromTUFKey decodes a role key's "keyval.public" field, trying a
// raw hex encoding (the common form for ed25519 keys) before falling back
// to PEM (the common form for ecdsa/rsa keys).
func publicKeyFromTUFKey(k Key) (crypto.PublicKey, error) {
	if raw, err := hex.DecodeString(k.Value.Public); err == nil {
		if key, err := xcrypto.NewTUFPublicKey(tufScheme(k.Scheme), raw); err == nil {
			return key, nil
		}
	}
	return xcrypto.ParsePublicKeyPEM([]byte(k.Value.Public))
}

func tufScheme(scheme string) xcrypto.TUFKeyScheme {
	switch scheme {
	case string(xcrypto.SchemeEd25519):
		return xcrypto.SchemeEd25519
	default:
		return xcrypto.SchemeECDSASHA2NistP256
	}
}

// canonicalSignedBytes re-serializes a metadata file's "signed" body under
// OLPC canonical JSON, the encoding TUF signatures are computed over.
func canonicalSignedBytes(signed json.RawMessage) ([]byte, error) {
	var obj interface{}
	if err := json.Unmarshal(signed, &obj); err != nil {
		return nil, err
	}
	return cjson.EncodeCanonical(obj)
}

// verifyThreshold checks that at least role.Threshold of the signatures in
// sigs, made by distinct key-ids named in role.KeyIDs, are valid signatures
// by keys over signed's canonical bytes.
func verifyThreshold(signed json.RawMessage, sigs []Signature, keys map[string]Key, role Role, roleName string) error {
	canonical, err := canonicalSignedBytes(signed)
	if err != nil {
		return wrapError(KindMalformedMetadata, roleName, "canonicalizing signed body", err)
	}
	message := xcrypto.NewDigest("raw", canonical)

	authorized := make(map[string]bool, len(role.KeyIDs))
	for _, id := range role.KeyIDs {
		authorized[id] = true
	}

	valid := 0
	seen := make(map[string]bool)
	for _, sig := range sigs {
		if seen[sig.KeyID] || !authorized[sig.KeyID] {
			continue
		}
		key, ok := keys[sig.KeyID]
		if !ok {
			continue
		}
		pub, err := publicKeyFromTUFKey(key)
		if err != nil {
			continue
		}
		sigBytes, err := hex.DecodeString(sig.Sig)
		if err != nil {
			continue
		}
		if err := xcrypto.Verify(pub, message, sigBytes); err == nil {
			valid++
			seen[sig.KeyID] = true
		}
	}

	if valid < role.Threshold {
		return &RefreshError{
			Kind:     KindSignatureThresholdNotMet,
			Role:     roleName,
			Message:  "insufficient valid signatures",
			Expected: itoa(role.Threshold),
			Actual:   itoa(valid),
		}
	}
	return nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
