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
	"crypto/x509"
	"strings"

	commonpb "github.com/sigstore/protobuf-specs/gen/pb-go/common/v1"
	trustrootpb "github.com/sigstore/protobuf-specs/gen/pb-go/trustroot/v1"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/sigstore/keyless-signing/pkg/xcrypto"
)

// ParseJSON decodes a JSON-encoded TrustedRoot protobuf message and builds
// the in-memory TrustedRoot from it. Unknown fields in the wire message are
// ignored.
func ParseJSON(data []byte) (*TrustedRoot, error) {
	var msg trustrootpb.TrustedRoot
	if err := (protojson.UnmarshalOptions{DiscardUnknown: true}).Unmarshal(data, &msg); err != nil {
		return nil, newError(KindMalformed, "unmarshaling TrustedRoot protobuf JSON", err)
	}
	return fromProto(&msg)
}

func fromProto(msg *trustrootpb.TrustedRoot) (*TrustedRoot, error) {
	cas, err := casFromProto(msg.GetCertificateAuthorities())
	if err != nil {
		return nil, err
	}
	tlogs, err := tlogsFromProto(msg.GetTlogs())
	if err != nil {
		return nil, err
	}
	ctlogs, err := ctlogsFromProto(msg.GetCtlogs())
	if err != nil {
		return nil, err
	}
	return New(cas, tlogs, ctlogs)
}

func casFromProto(entries []*trustrootpb.CertificateAuthority) ([]CertificateAuthority, error) {
	out := make([]CertificateAuthority, 0, len(entries))
	for _, e := range entries {
		chain, err := chainFromProto(e.GetCertChain())
		if err != nil {
			return nil, err
		}
		out = append(out, CertificateAuthority{
			URI:      e.GetUri(),
			Subject:  distinguishedName(e.GetSubject()),
			Chain:    chain,
			Validity: validityFromProto(e.GetValidFor()),
			Operator: e.GetOperator(),
		})
	}
	return out, nil
}

func chainFromProto(chain *commonpb.X509CertificateChain) ([]*x509.Certificate, error) {
	if chain == nil {
		return nil, newError(KindMalformed, "certificate authority missing cert_chain", nil)
	}
	certs := make([]*x509.Certificate, 0, len(chain.GetCertificates()))
	for _, c := range chain.GetCertificates() {
		cert, err := x509.ParseCertificate(c.GetRawBytes())
		if err != nil {
			return nil, newError(KindMalformed, "parsing chain certificate", err)
		}
		certs = append(certs, cert)
	}
	return certs, nil
}

func distinguishedName(dn *commonpb.DistinguishedName) string {
	if dn == nil {
		return ""
	}
	if dn.GetCommonName() != "" {
		return dn.GetCommonName()
	}
	return dn.GetOrganization()
}

func tlogsFromProto(entries []*trustrootpb.TransparencyLogInstance) ([]TLog, error) {
	out := make([]TLog, 0, len(entries))
	for _, e := range entries {
		key, err := trustedKeyFromProto(e.GetPublicKey())
		if err != nil {
			return nil, err
		}
		out = append(out, TLog{
			LogID:         LogID(e.GetLogId().GetKeyId()),
			BaseURL:       e.GetBaseUrl(),
			PublicKey:     key,
			HashAlgorithm: e.GetHashAlgorithm().String(),
			Operator:      e.GetOperator(),
		})
	}
	return out, nil
}

func ctlogsFromProto(entries []*trustrootpb.TransparencyLogInstance) ([]CTLog, error) {
	out := make([]CTLog, 0, len(entries))
	for _, e := range entries {
		key, err := trustedKeyFromProto(e.GetPublicKey())
		if err != nil {
			return nil, err
		}
		out = append(out, CTLog{
			LogID:         LogID(e.GetLogId().GetKeyId()),
			BaseURL:       e.GetBaseUrl(),
			PublicKey:     key,
			HashAlgorithm: e.GetHashAlgorithm().String(),
			Operator:      e.GetOperator(),
		})
	}
	return out, nil
}

func trustedKeyFromProto(pk *commonpb.PublicKey) (TrustedKey, error) {
	if pk == nil {
		return TrustedKey{}, newError(KindMalformed, "log instance missing public_key", nil)
	}
	key, err := xcrypto.ParsePublicKeyDER(pk.GetRawBytes())
	if err != nil {
		key, err = xcrypto.ParsePublicKeyPEM(pk.GetRawBytes())
		if err != nil {
			return TrustedKey{}, newError(KindMalformed, "decoding log public key", err)
		}
	}
	return TrustedKey{
		Key:       key,
		Algorithm: algorithmFromDetails(pk.GetKeyDetails()),
		Validity:  validityFromProto(pk.GetValidFor()),
	}, nil
}

// algorithmFromDetails classifies a PublicKeyDetails enum by its name rather
// than matching specific constants, since the enum carries many
// curve/hash-size variants per algorithm family and the trust-root model
// only needs the coarse family.
func algorithmFromDetails(details commonpb.PublicKeyDetails) PublicKeyAlgorithm {
	name := details.String()
	switch {
	case strings.Contains(name, "ED25519"):
		return AlgorithmEd25519
	case strings.Contains(name, "RSA"):
		return AlgorithmRSA
	default:
		return AlgorithmECDSAP256
	}
}

func validityFromProto(tr *commonpb.TimeRange) ValidityWindow {
	if tr == nil || tr.GetStart() == nil {
		return ValidityWindow{}
	}
	window := ValidityWindow{Start: tr.GetStart().AsTime()}
	if tr.GetEnd() != nil {
		end := tr.GetEnd().AsTime()
		window.End = &end
	}
	return window
}
