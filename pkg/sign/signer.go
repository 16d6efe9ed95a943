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

// Package sign composes the crypto, trust-root, TUF, OIDC, CA, and
// transparency-log packages into the single- and batch-artifact signing
// operations that produce a verifiable bundle.Bundle.
package sign

import (
	"context"
	"crypto/x509"
	"net/http"
	"os"

	"github.com/sigstore/keyless-signing/pkg/bundle"
	"github.com/sigstore/keyless-signing/pkg/ca"
	"github.com/sigstore/keyless-signing/pkg/logging"
	"github.com/sigstore/keyless-signing/pkg/oidcclient"
	"github.com/sigstore/keyless-signing/pkg/tlog"
	"github.com/sigstore/keyless-signing/pkg/tracing"
	"github.com/sigstore/keyless-signing/pkg/trustroot"
	"github.com/sigstore/keyless-signing/pkg/tuf"
	"github.com/sigstore/keyless-signing/pkg/xcrypto"
)

// trustedRootTargetName is the TUF target that carries the trust root's
// serialized TrustedRoot protobuf message, per the reference deployment's
// naming convention.
const trustedRootTargetName = "trusted_root.json"

// Signer performs full-pipeline signing against one configured Fulcio,
// Rekor, and TUF-distributed trust root. It is immutable after
// construction: the trust root loaded at NewSigner time is used for the
// signer's whole lifetime, per the "trust roots are immutable for the
// signer's lifetime" contract. It is safe for concurrent Sign* calls iff
// cfg.HTTPClient is concurrency-safe.
type Signer struct {
	cfg  Config
	root *trustroot.TrustedRoot
	oidc *oidcclient.Client
	ca   *ca.Client
	tlog *tlog.Client
	log  logging.Logger
}

// NewSigner opens (or creates) the local TUF store, refreshes it to the
// latest consistent state, extracts the trust root target, and builds
// the OIDC, CA, and transparency-log clients bound to cfg's endpoints.
func NewSigner(ctx context.Context, cfg Config) (*Signer, error) {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	cfg.Logger = logging.EnsureLogger(cfg.Logger)

	store, err := tuf.OpenStore(cfg.TUFCacheDir)
	if err != nil {
		return nil, err
	}
	fetcher := tuf.NewHTTPFetcher(cfg.TUFRootURL, cfg.HTTPClient)
	tufClient, err := tuf.NewClient(fetcher, store, cfg.TUFInitialRoot, tuf.WithLogger(cfg.Logger))
	if err != nil {
		return nil, err
	}
	if err := tufClient.Update(ctx); err != nil {
		return nil, err
	}

	rootBytes, err := tufClient.GetTargetBytes(ctx, trustedRootTargetName)
	if err != nil {
		return nil, err
	}
	root, err := trustroot.ParseJSON(rootBytes)
	if err != nil {
		return nil, err
	}

	return &Signer{
		cfg:  cfg,
		root: root,
		oidc: oidcclient.New(cfg.OIDC),
		ca: ca.New(ca.Config{
			BaseURL:    cfg.FulcioURL,
			HTTPClient: cfg.HTTPClient,
			RequireSCT: cfg.RequireSCT,
			Logger:     cfg.Logger,
		}),
		tlog: tlog.New(tlog.Config{
			BaseURL:    cfg.RekorURL,
			HTTPClient: cfg.HTTPClient,
			Logger:     cfg.Logger,
		}),
		log: cfg.Logger,
	}, nil
}

// TrustedRoot returns the trust root the signer was constructed with.
func (s *Signer) TrustedRoot() *trustroot.TrustedRoot { return s.root }

// Sign runs the full pipeline for a single digest.
func (s *Signer) Sign(ctx context.Context, digest xcrypto.Digest) (*bundle.Bundle, error) {
	bundles, err := s.SignBatch(ctx, []xcrypto.Digest{digest})
	if err != nil {
		return nil, err
	}
	return bundles[0], nil
}

// SignBatch signs every digest, reusing one OIDC identity token and one
// ephemeral keypair across all of them, and preserves input ordering in
// the returned slice. An empty input returns an empty result with no
// network calls. The batch fails atomically at the first failing digest;
// no partial result is returned. The ephemeral private key is zeroized
// on every exit path.
func (s *Signer) SignBatch(ctx context.Context, digests []xcrypto.Digest) ([]*bundle.Bundle, error) {
	if len(digests) == 0 {
		return nil, nil
	}

	var bundles []*bundle.Bundle
	err := tracing.Run(ctx, "sign.SignBatch", func(ctx context.Context) error {
		var idToken oidcclient.Token
		if err := tracing.Run(ctx, "sign.obtainIdentity", func(ctx context.Context) error {
			token, err := s.oidc.Obtain(ctx)
			idToken = token
			return err
		}); err != nil {
			return err
		}

		ephemeralKey, err := xcrypto.GenerateEphemeralKeyPair()
		if err != nil {
			return err
		}
		defer xcrypto.ZeroizePrivateKey(ephemeralKey)

		var chain []*x509.Certificate
		if err := tracing.Run(ctx, "sign.issueCertificate", func(ctx context.Context) error {
			c, err := s.ca.SignCertificate(ctx, idToken, ephemeralKey, s.root)
			chain = c
			return err
		}); err != nil {
			return err
		}
		leaf := chain[0]

		bundles = make([]*bundle.Bundle, len(digests))
		for i, digest := range digests {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			err := tracing.Run(ctx, "sign.signAndLog", func(ctx context.Context) error {
				signature, err := xcrypto.Sign(ephemeralKey, digest)
				if err != nil {
					return err
				}

				entry, err := s.tlog.PutEntry(ctx, leaf, digest, signature, s.root)
				if err != nil {
					return err
				}

				bundles[i] = &bundle.Bundle{
					Digest:    digest,
					Chain:     chain,
					Signature: signature,
					Entry:     entry,
				}
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return bundles, nil
}

// SignFile reads path, computes its SHA-256 digest, and delegates to Sign.
func (s *Signer) SignFile(ctx context.Context, path string) (*bundle.Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	digest, err := xcrypto.DigestReader(f)
	if err != nil {
		return nil, err
	}
	return s.Sign(ctx, digest)
}

// SignFiles digests each distinct path in paths and delegates to
// SignBatch, rekeying results by path. Duplicate paths collapse to one
// signing operation; the caller still sees one entry per distinct path.
func (s *Signer) SignFiles(ctx context.Context, paths []string) (map[string]*bundle.Bundle, error) {
	order := make([]string, 0, len(paths))
	digests := make(map[string]xcrypto.Digest, len(paths))
	for _, p := range paths {
		if _, seen := digests[p]; seen {
			continue
		}
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		digest, err := xcrypto.DigestReader(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		digests[p] = digest
		order = append(order, p)
	}

	batch := make([]xcrypto.Digest, len(order))
	for i, p := range order {
		batch[i] = digests[p]
	}

	bundles, err := s.SignBatch(ctx, batch)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*bundle.Bundle, len(order))
	for i, p := range order {
		out[p] = bundles[i]
	}
	return out, nil
}
