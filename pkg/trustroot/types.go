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

package trustroot

import (
	"crypto"
	"crypto/x509"
)

// PublicKeyAlgorithm tags the key material carried by a trust-root entry.
type PublicKeyAlgorithm string

const (
	AlgorithmECDSAP256 PublicKeyAlgorithm = "ecdsa-p256-sha256"
	AlgorithmEd25519   PublicKeyAlgorithm = "ed25519"
	AlgorithmRSA       PublicKeyAlgorithm = "rsa"
)

// TrustedKey is trust-root key material: the decoded key handle, its
// algorithm tag, and the window during which it is authoritative.
type TrustedKey struct {
	Key       crypto.PublicKey
	Algorithm PublicKeyAlgorithm
	Validity  ValidityWindow
}

// TLog is a binary-artifact transparency log entry in the trust root.
type TLog struct {
	LogID         LogID
	BaseURL       string
	PublicKey     TrustedKey
	HashAlgorithm string
	Operator      string
}

// CTLog is a certificate-transparency log entry in the trust root.
type CTLog struct {
	LogID         LogID
	BaseURL       string
	PublicKey     TrustedKey
	HashAlgorithm string
	Operator      string
}

// CertificateAuthority is a root+intermediate chain a signer's leaf
// certificate must chain to, together with the window during which the CA
// is authoritative.
type CertificateAuthority struct {
	URI      string
	Subject  string
	Chain    []*x509.Certificate
	Validity ValidityWindow
	Operator string
}

// Root returns the last certificate in the chain, which by construction
// (subject-to-root ordering) is the self-signed root.
func (ca CertificateAuthority) Root() *x509.Certificate {
	if len(ca.Chain) == 0 {
		return nil
	}
	return ca.Chain[len(ca.Chain)-1]
}

// Intermediates returns every certificate in the chain except the root.
func (ca CertificateAuthority) Intermediates() []*x509.Certificate {
	if len(ca.Chain) <= 1 {
		return nil
	}
	return ca.Chain[:len(ca.Chain)-1]
}
