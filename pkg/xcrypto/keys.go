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

package xcrypto

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/sigstore/sigstore/pkg/cryptoutils"
)

// ParsePublicKeyPEM parses a PEM-encoded public key of any kind
// cryptoutils.UnmarshalPEMToPublicKey supports (PKIX SubjectPublicKeyInfo,
// or a PKCS#1 "RSA PUBLIC KEY" block).
func ParsePublicKeyPEM(pemBytes []byte) (crypto.PublicKey, error) {
	key, err := cryptoutils.UnmarshalPEMToPublicKey(pemBytes)
	if err != nil {
		return nil, newError(KindInvalidKeySpec, "parsing PEM public key", err)
	}
	return key, nil
}

// ParsePublicKeyDER parses a DER-encoded SubjectPublicKeyInfo, falling back
// to PKCS#1 for RSA keys that were encoded without the SPKI wrapper.
func ParsePublicKeyDER(der []byte) (crypto.PublicKey, error) {
	if key, err := x509.ParsePKIXPublicKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS1PublicKey(der); err == nil {
		return key, nil
	}
	return nil, newError(KindInvalidKeySpec, "parsing DER public key: not a recognized SPKI or PKCS#1 encoding", nil)
}

// TUFKeyScheme identifies the signing scheme named in a TUF key's "scheme"
// field. Only the schemes the trust root's protobuf key encoding can carry
// for this client are supported; anything else is UnsupportedAlgorithm.
type TUFKeyScheme string

const (
	SchemeEd25519          TUFKeyScheme = "ed25519"
	SchemeECDSASHA2NistP256 TUFKeyScheme = "ecdsa-sha2-nistp256"
)

// NewTUFPublicKey constructs a crypto.PublicKey from a TUF-style raw key
// value and scheme name, as found in root/timestamp/snapshot/targets role
// key entries.
func NewTUFPublicKey(scheme TUFKeyScheme, keyValue []byte) (crypto.PublicKey, error) {
	switch scheme {
	case SchemeEd25519:
		if len(keyValue) != ed25519.PublicKeySize {
			return nil, newError(KindInvalidKeySpec, fmt.Sprintf("ed25519 key must be %d bytes, got %d", ed25519.PublicKeySize, len(keyValue)), nil)
		}
		return ed25519.PublicKey(keyValue), nil
	case SchemeECDSASHA2NistP256:
		x, y := elliptic.Unmarshal(elliptic.P256(), keyValue)
		if x == nil {
			// keyValue may already be PEM/DER-encoded rather than a raw point.
			key, err := ParsePublicKeyPEM(keyValue)
			if err != nil {
				key, err = ParsePublicKeyDER(keyValue)
			}
			if err != nil {
				return nil, newError(KindInvalidKeySpec, "decoding ecdsa-sha2-nistp256 key", err)
			}
			ecKey, ok := key.(*ecdsa.PublicKey)
			if !ok {
				return nil, newError(KindInvalidKeySpec, "ecdsa-sha2-nistp256 key did not decode to an ECDSA key", nil)
			}
			return ecKey, nil
		}
		return &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}, nil
	default:
		return nil, newError(KindUnsupportedAlgorithm, fmt.Sprintf("unsupported TUF key scheme %q", scheme), nil)
	}
}

// GenerateEphemeralKeyPair generates a fresh ECDSA P-256 keypair for a single
// signing operation. The private key must be zeroized by the caller via
// ZeroizePrivateKey once no longer needed.
func GenerateEphemeralKeyPair() (*ecdsa.PrivateKey, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, newError(KindInvalidKeySpec, "generating ephemeral ECDSA P-256 keypair", err)
	}
	return key, nil
}

// ZeroizePrivateKey overwrites the private scalar of an ephemeral ECDSA key
// so it does not linger in memory past the end of a signing operation.
func ZeroizePrivateKey(key *ecdsa.PrivateKey) {
	if key == nil || key.D == nil {
		return
	}
	bits := key.D.Bits()
	for i := range bits {
		bits[i] = 0
	}
	key.D.SetInt64(0)
}

// MarshalPublicKeyPEM encodes pub as a PEM SubjectPublicKeyInfo block, the
// form embedded in a certificate signing request.
func MarshalPublicKeyPEM(pub crypto.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, newError(KindInvalidKeySpec, "marshaling public key", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}
