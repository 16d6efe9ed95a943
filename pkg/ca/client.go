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
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"net/http"

	"github.com/sigstore/keyless-signing/internal/retry"
	"github.com/sigstore/keyless-signing/pkg/logging"
	"github.com/sigstore/keyless-signing/pkg/oidcclient"
	"github.com/sigstore/keyless-signing/pkg/trustroot"
)

// Config configures a Client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	RequireSCT bool
	Logger     logging.Logger
}

// Client submits certificate signing requests to a Fulcio-style CA and
// verifies the returned chain against a trust root.
type Client struct {
	cfg Config
}

// New builds a Client from cfg, defaulting HTTPClient and Logger.
func New(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	cfg.Logger = logging.EnsureLogger(cfg.Logger)
	return &Client{cfg: cfg}
}

// SignCertificate submits a CSR proving possession of ephemeralKey, bound
// to idToken's subject, and returns a chain verified against root's
// certificate authorities whose validity window includes the leaf's
// notBefore (see VerifyChain).
func (c *Client) SignCertificate(ctx context.Context, idToken oidcclient.Token, ephemeralKey *ecdsa.PrivateKey, root *trustroot.TrustedRoot) ([]*x509.Certificate, error) {
	csrPEM, err := BuildCSR(ephemeralKey, idToken.Subject)
	if err != nil {
		return nil, err
	}

	reqBody, err := json.Marshal(signingRequest{CertificateSigningRequest: string(csrPEM)})
	if err != nil {
		return nil, newError(KindCAVerificationFailed, "marshaling signing request", err)
	}

	var respBody []byte
	err = retry.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/v2/signingCert", bytes.NewReader(reqBody))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+idToken.RawToken)

		resp, err := c.cfg.HTTPClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
			return &retry.StatusError{StatusCode: resp.StatusCode, Body: string(b)}
		}
		respBody = b
		return nil
	})
	if err != nil {
		return nil, newError(KindCAVerificationFailed, "submitting certificate signing request", err)
	}

	var parsed signingResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, newError(KindCAVerificationFailed, "unmarshaling signing response", err)
	}

	certs := parsed.SignedCertificateEmbeddedSct.Chain.Certificates
	if len(certs) == 0 {
		return nil, newError(KindCAVerificationFailed, "signing response contained no certificates", nil)
	}

	chain, err := parseChain(certs)
	if err != nil {
		return nil, err
	}

	if err := VerifyChain(chain, root, &ephemeralKey.PublicKey, c.cfg.RequireSCT); err != nil {
		return nil, err
	}

	if c.cfg.RequireSCT {
		c.cfg.Logger.Debugln("leaf certificate SCT verified")
	}
	fingerprint := certFingerprint(chain[0])
	c.cfg.Logger.Debug("issued leaf certificate fingerprint sha256:%x", fingerprint)

	return chain, nil
}

func parseChain(pemCerts []string) ([]*x509.Certificate, error) {
	chain := make([]*x509.Certificate, 0, len(pemCerts))
	for _, p := range pemCerts {
		block, _ := pem.Decode([]byte(p))
		if block == nil {
			return nil, newError(KindCAVerificationFailed, "decoding chain certificate PEM", nil)
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, newError(KindCAVerificationFailed, "parsing chain certificate", err)
		}
		chain = append(chain, cert)
	}
	return chain, nil
}

func certFingerprint(cert *x509.Certificate) [32]byte {
	return sha256.Sum256(cert.Raw)
}
