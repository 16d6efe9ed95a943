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
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
)

// BuildCSR forms a certificate-signing request binding subject to
// ephemeralKey's public half and signs it with ephemeralKey, providing
// proof-of-possession of the private key the CA is being asked to certify.
func BuildCSR(ephemeralKey *ecdsa.PrivateKey, subject string) ([]byte, error) {
	template := &x509.CertificateRequest{
		Subject:            pkix.Name{CommonName: subject},
		SignatureAlgorithm: x509.ECDSAWithSHA256,
		EmailAddresses:     emailAddressesFor(subject),
	}

	der, err := x509.CreateCertificateRequest(rand.Reader, template, ephemeralKey)
	if err != nil {
		return nil, newError(KindCAVerificationFailed, "creating certificate signing request", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE REQUEST", Bytes: der}), nil
}

// emailAddressesFor treats an "@"-containing subject as an email SAN, the
// common case for OIDC subjects issued by identity providers Fulcio
// recognizes (Google, GitHub Actions workflow identities, etc.).
func emailAddressesFor(subject string) []string {
	for i := range subject {
		if subject[i] == '@' {
			return []string{subject}
		}
	}
	return nil
}
