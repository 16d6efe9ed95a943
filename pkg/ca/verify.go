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
	"crypto/ecdsa"
	"crypto/x509"
	"time"

	"github.com/sigstore/keyless-signing/pkg/trustroot"
)

// VerifyChain checks a candidate chain returned by the CA against root:
// the chain must validate against one of root's certificate authorities
// whose validity window includes the leaf's notBefore, the leaf's public
// key must equal ephemeralPub bit-for-bit, and the leaf's validity period
// must cover the current time. When requireSCT is set, the leaf must also
// carry a Signed Certificate Timestamp verifiable against the CTLog whose
// log-id matches the SCT's and whose validity window covers the SCT's
// timestamp.
func VerifyChain(chain []*x509.Certificate, root *trustroot.TrustedRoot, ephemeralPub *ecdsa.PublicKey, requireSCT bool) error {
	if len(chain) == 0 {
		return newError(KindCAVerificationFailed, "empty certificate chain", nil)
	}
	leaf := chain[0]

	leafECDSA, ok := leaf.PublicKey.(*ecdsa.PublicKey)
	if !ok || !leafECDSA.Equal(ephemeralPub) {
		return newError(KindPublicKeyMismatch, "leaf certificate public key does not match the submitted ephemeral key", nil)
	}

	now := time.Now()
	if now.Before(leaf.NotBefore) {
		return newError(KindNotYetValid, "leaf certificate is not yet valid", nil)
	}
	if now.After(leaf.NotAfter) {
		return newError(KindExpired, "leaf certificate has expired", nil)
	}

	if err := verifyAgainstAnyCA(chain, root, leaf.NotBefore); err != nil {
		return err
	}

	if requireSCT {
		if err := verifyEmbeddedSCT(leaf, root); err != nil {
			return err
		}
	}

	return nil
}

func verifyAgainstAnyCA(chain []*x509.Certificate, root *trustroot.TrustedRoot, at time.Time) error {
	leaf := chain[0]

	var lastErr error
	for _, candidate := range root.CAsValidAt(at) {
		roots := x509.NewCertPool()
		for _, c := range candidate.Chain {
			roots.AddCert(c)
		}
		combinedIntermediates := x509.NewCertPool()
		for _, c := range chain[1:] {
			combinedIntermediates.AddCert(c)
		}
		for _, c := range candidate.Intermediates() {
			combinedIntermediates.AddCert(c)
		}

		opts := x509.VerifyOptions{
			Roots:         roots,
			Intermediates: combinedIntermediates,
			CurrentTime:   at,
			KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageCodeSigning, x509.ExtKeyUsageAny},
		}
		if _, err := leaf.Verify(opts); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	return newError(KindCAVerificationFailed, "chain does not verify against any trust-root certificate authority", lastErr)
}
