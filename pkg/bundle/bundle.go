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

// Package bundle defines the signing pipeline's output type: an
// artifact digest, the certificate chain that signed it, the raw
// signature bytes, and the transparency-log entry anchoring the
// signature, opaque beyond those fields to the orchestrator that
// produces it.
package bundle

import (
	"crypto/x509"
	"encoding/pem"

	"github.com/sigstore/keyless-signing/pkg/tlog"
	"github.com/sigstore/keyless-signing/pkg/xcrypto"
)

// Bundle is one completed signing operation's verifiable artifact.
type Bundle struct {
	Digest    xcrypto.Digest
	Chain     []*x509.Certificate
	Signature []byte
	Entry     *tlog.Entry
}

// LeafCertificate returns the bundle's end-entity certificate.
func (b Bundle) LeafCertificate() *x509.Certificate {
	if len(b.Chain) == 0 {
		return nil
	}
	return b.Chain[0]
}

// ChainPEM renders the certificate chain as concatenated PEM blocks,
// leaf first, the form a bundle is typically persisted or transmitted in.
func (b Bundle) ChainPEM() []byte {
	var out []byte
	for _, cert := range b.Chain {
		out = append(out, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})...)
	}
	return out
}
