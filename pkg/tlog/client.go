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

package tlog

import (
	"bytes"
	"context"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/sigstore/keyless-signing/internal/retry"
	"github.com/sigstore/keyless-signing/pkg/logging"
	"github.com/sigstore/keyless-signing/pkg/trustroot"
	"github.com/sigstore/keyless-signing/pkg/xcrypto"
)

// Config configures a Client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     logging.Logger
}

// Client submits and verifies transparency-log entries against a
// Rekor-style log.
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

// PutEntry constructs a canonical log-entry body for leaf, digest and
// signature, submits it, treats a 409 as idempotent success by fetching
// the pre-existing entry by its computed UUID, then verifies the SET and
// the inclusion proof before returning the entry to the caller.
func (c *Client) PutEntry(ctx context.Context, leaf *x509.Certificate, digest xcrypto.Digest, signature []byte, root *trustroot.TrustedRoot) (*Entry, error) {
	body := buildEntryBody(leaf, digest, signature)
	canonical, err := canonicalBody(body)
	if err != nil {
		return nil, err
	}
	uuid := entryUUID(canonical)

	resp, err := c.submit(ctx, canonical, uuid)
	if err != nil {
		return nil, err
	}

	entry, err := parseEntryResponse(resp, canonical)
	if err != nil {
		return nil, err
	}

	if err := verifySET(entry, root); err != nil {
		return nil, err
	}
	if err := verifyInclusionProof(entry); err != nil {
		return nil, err
	}

	c.cfg.Logger.Debug("transparency-log entry verified: index=%d integratedTime=%d", entry.LogIndex, entry.IntegratedTime)
	return entry, nil
}

// submit posts the canonical body to the log and returns the raw
// response JSON, falling back to a GET-by-UUID on a 409 Conflict.
func (c *Client) submit(ctx context.Context, canonical []byte, uuid string) ([]byte, error) {
	var respBody []byte
	err := retry.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/v1/log/entries", bytes.NewReader(canonical))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.cfg.HTTPClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		switch resp.StatusCode {
		case http.StatusCreated, http.StatusOK:
			respBody = b
			return nil
		case http.StatusConflict:
			c.cfg.Logger.Debug("transparency-log entry already exists, fetching by uuid %s", uuid)
			existing, err := c.getByUUID(ctx, uuid)
			if err != nil {
				return err
			}
			respBody = existing
			return nil
		default:
			return &retry.StatusError{StatusCode: resp.StatusCode, Body: string(b)}
		}
	})
	if err != nil {
		return nil, newError(KindSubmissionFailed, "submitting transparency-log entry", err)
	}
	return respBody, nil
}

func (c *Client) getByUUID(ctx context.Context, uuid string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/api/v1/log/entries/"+uuid, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &retry.StatusError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	return b, nil
}

// parseEntryResponse unmarshals a top-level {uuid: entryResponse} object
// (the reference log's response shape) into an Entry.
func parseEntryResponse(raw []byte, canonical []byte) (*Entry, error) {
	var byUUID map[string]entryResponse
	if err := json.Unmarshal(raw, &byUUID); err != nil {
		return nil, newError(KindMalformedResponse, "unmarshaling log entry response", err)
	}
	if len(byUUID) != 1 {
		return nil, newError(KindMalformedResponse, "expected exactly one entry in log response", nil)
	}
	var wire entryResponse
	for _, v := range byUUID {
		wire = v
	}

	logID, err := hex.DecodeString(wire.LogID)
	if err != nil {
		return nil, newError(KindMalformedResponse, "decoding logID", err)
	}
	set, err := base64.StdEncoding.DecodeString(wire.Verification.SignedEntryTimestamp)
	if err != nil {
		return nil, newError(KindMalformedResponse, "decoding signedEntryTimestamp", err)
	}
	rootHash, err := hex.DecodeString(wire.Verification.InclusionProof.RootHash)
	if err != nil {
		return nil, newError(KindMalformedResponse, "decoding inclusion proof root hash", err)
	}
	hashes := make([][]byte, 0, len(wire.Verification.InclusionProof.Hashes))
	for _, h := range wire.Verification.InclusionProof.Hashes {
		b, err := hex.DecodeString(h)
		if err != nil {
			return nil, newError(KindMalformedResponse, "decoding inclusion proof audit path entry", err)
		}
		hashes = append(hashes, b)
	}

	return &Entry{
		LogIndex:       wire.LogIndex,
		IntegratedTime: wire.IntegratedTime,
		LogID:          logID,
		Body:           canonical,
		InclusionProof: InclusionProof{
			LogIndex:   wire.Verification.InclusionProof.LogIndex,
			RootHash:   rootHash,
			TreeSize:   wire.Verification.InclusionProof.TreeSize,
			Hashes:     hashes,
			Checkpoint: wire.Verification.InclusionProof.Checkpoint,
		},
		SignedEntryTimestamp: set,
	}, nil
}
