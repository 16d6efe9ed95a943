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

// signingRequest is the JSON body submitted to the CA: a PEM-encoded CSR.
// The caller's OIDC identity token is not part of the body; it travels in
// the request's Authorization header.
type signingRequest struct {
	CertificateSigningRequest string `json:"certificateSigningRequest"`
}

// signingResponse is the JSON response: a PEM chain of certificates, leaf
// first. The reference CA nests this under a "signedCertificateEmbeddedSct"
// or "signedCertificateDetachedSct" key depending on whether the SCT is
// embedded in the leaf or returned alongside it; this client only handles
// the embedded-SCT form, which is the default for the public-good instance.
type signingResponse struct {
	SignedCertificateEmbeddedSct struct {
		Chain struct {
			Certificates []string `json:"certificates"`
		} `json:"chain"`
	} `json:"signedCertificateEmbeddedSct"`
}
