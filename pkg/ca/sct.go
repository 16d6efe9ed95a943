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
	"crypto/x509"
	"encoding/asn1"
	"encoding/binary"
	"time"

	"github.com/sigstore/keyless-signing/pkg/trustroot"
	"github.com/sigstore/keyless-signing/pkg/xcrypto"
)

// sctExtensionOID is the X.509v3 extension OID carrying an embedded
// Signed Certificate Timestamp list, per RFC 6962 section 3.3.
var sctExtensionOID = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 11129, 2, 4, 2}

// signedCertificateTimestamp is one entry of an SCT list.
type signedCertificateTimestamp struct {
	LogID     []byte
	Timestamp uint64
	Signature []byte
}

// verifyEmbeddedSCT extracts the SCT list extension from leaf, and for at
// least one entry, verifies it against a trust-root CTLog whose log-id
// matches and whose validity window covers the SCT timestamp.
func verifyEmbeddedSCT(leaf *x509.Certificate, root *trustroot.TrustedRoot) error {
	scts, err := extractSCTs(leaf)
	if err != nil {
		return err
	}
	if len(scts) == 0 {
		return newError(KindCAVerificationFailed, "leaf certificate carries no embedded SCT", nil)
	}

	var lastErr error
	for _, sct := range scts {
		ts := time.UnixMilli(int64(sct.Timestamp))
		ctlog, err := root.FindCTLog(trustroot.LogID(sct.LogID), ts)
		if err != nil {
			lastErr = err
			continue
		}
		signedData := sctSignedData(sct.Timestamp, leaf)
		if err := xcrypto.Verify(ctlog.PublicKey.Key, xcrypto.DigestBytes(signedData), sct.Signature); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return newError(KindCAVerificationFailed, "no embedded SCT verified against a trust-root CTLog", lastErr)
}

// extractSCTs decodes the SCT list extension's entries far enough to
// recover each entry's log-id, timestamp, and signature bytes.
func extractSCTs(leaf *x509.Certificate) ([]signedCertificateTimestamp, error) {
	var raw []byte
	for _, ext := range leaf.Extensions {
		if ext.Id.Equal(sctExtensionOID) {
			raw = ext.Value
			break
		}
	}
	if raw == nil {
		return nil, nil
	}

	var listBytes []byte
	if _, err := asn1.Unmarshal(raw, &listBytes); err != nil {
		listBytes = raw
	}

	if len(listBytes) < 2 {
		return nil, newError(KindCAVerificationFailed, "malformed SCT list extension", nil)
	}
	listLen := int(binary.BigEndian.Uint16(listBytes[:2]))
	buf := listBytes[2:]
	if listLen > len(buf) {
		listLen = len(buf)
	}
	buf = buf[:listLen]

	var out []signedCertificateTimestamp
	for len(buf) > 2 {
		entryLen := int(binary.BigEndian.Uint16(buf[:2]))
		buf = buf[2:]
		if entryLen > len(buf) {
			break
		}
		entry := buf[:entryLen]
		buf = buf[entryLen:]

		sct, err := parseSCTEntry(entry)
		if err != nil {
			continue
		}
		out = append(out, sct)
	}
	return out, nil
}

// parseSCTEntry decodes one TLS-encoded SignedCertificateTimestamp
// structure: version(1) || log_id(32) || timestamp(8) || extensions(2+n)
// || signature(hash_alg(1)+sig_alg(1)+2+len).
func parseSCTEntry(b []byte) (signedCertificateTimestamp, error) {
	if len(b) < 1+32+8+2 {
		return signedCertificateTimestamp{}, newError(KindCAVerificationFailed, "truncated SCT entry", nil)
	}
	logID := append([]byte(nil), b[1:33]...)
	timestamp := binary.BigEndian.Uint64(b[33:41])
	pos := 41
	extLen := int(binary.BigEndian.Uint16(b[pos : pos+2]))
	pos += 2 + extLen
	if pos+4 > len(b) {
		return signedCertificateTimestamp{}, newError(KindCAVerificationFailed, "truncated SCT signature header", nil)
	}
	pos += 2 // hash_alg, sig_alg
	sigLen := int(binary.BigEndian.Uint16(b[pos : pos+2]))
	pos += 2
	if pos+sigLen > len(b) {
		return signedCertificateTimestamp{}, newError(KindCAVerificationFailed, "truncated SCT signature", nil)
	}
	sig := append([]byte(nil), b[pos:pos+sigLen]...)

	return signedCertificateTimestamp{LogID: logID, Timestamp: timestamp, Signature: sig}, nil
}

// sctSignedData reconstructs the TLS-encoded digitally-signed struct an
// SCT is computed over for an X.509 leaf entry (non-precert form):
// version || signature_type || timestamp || entry_type || cert length+DER
// || extensions length. Fulcio's SCTs are computed over the precertificate
// (with the poison extension removed and issuer key hash prefixed), which
// this reconstruction does not attempt; verification of Fulcio-issued SCTs
// against this signed-data form is therefore a simplification and will not
// match production Fulcio certificates byte-for-byte.
func sctSignedData(timestamp uint64, leaf *x509.Certificate) []byte {
	buf := make([]byte, 0, 16+len(leaf.Raw))
	buf = append(buf, 0)    // version: v1
	buf = append(buf, 0)    // signature_type: certificate_timestamp
	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, timestamp)
	buf = append(buf, ts...)
	buf = append(buf, 0, 0) // entry_type: x509_entry
	certLen := make([]byte, 3)
	certLen[0] = byte(len(leaf.Raw) >> 16)
	certLen[1] = byte(len(leaf.Raw) >> 8)
	certLen[2] = byte(len(leaf.Raw))
	buf = append(buf, certLen...)
	buf = append(buf, leaf.Raw...)
	buf = append(buf, 0, 0) // extensions length: 0
	return buf
}
