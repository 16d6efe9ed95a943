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

package tuf

import (
	"bytes"
	"context"
	"encoding/json"
)

// fetchTimestamp fetches and verifies timestamp.json under root's
// timestamp-role keys, enforcing rollback protection against the client's
// currently stored timestamp (if any) and a future expiry.
func (c *Client) fetchTimestamp(ctx context.Context, root *RootSigned) (*TimestampSigned, []byte, error) {
	raw, err := c.fetcher.Fetch(ctx, "timestamp.json")
	if err != nil {
		return nil, nil, wrapError(KindMalformedMetadata, "timestamp", "fetching timestamp.json", err)
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, nil, wrapError(KindMalformedMetadata, "timestamp", "unmarshaling envelope", err)
	}
	var ts TimestampSigned
	if err := json.Unmarshal(env.Signed, &ts); err != nil {
		return nil, nil, wrapError(KindMalformedMetadata, "timestamp", "unmarshaling signed body", err)
	}

	role, ok := root.Roles["timestamp"]
	if !ok {
		return nil, nil, newError(KindMalformedMetadata, "timestamp", "trusted root has no timestamp role")
	}
	if err := verifyThreshold(env.Signed, env.Signatures, root.Keys, role, "timestamp"); err != nil {
		return nil, nil, err
	}

	if c.timestamp != nil {
		if ts.Version < c.timestamp.Version {
			return nil, nil, &RefreshError{
				Kind:     KindRollbackDetected,
				Role:     "timestamp",
				Message:  "fetched timestamp version is older than the stored version",
				Expected: itoa(int(c.timestamp.Version)),
				Actual:   itoa(int(ts.Version)),
			}
		}
		if ts.Version == c.timestamp.Version && !bytes.Equal(raw, c.timestampRaw) {
			return nil, nil, &RefreshError{
				Kind:    KindRollbackDetected,
				Role:    "timestamp",
				Message: "fetched timestamp has the stored version but different bytes",
			}
		}
	}

	if !ts.Expires.After(c.clock()) {
		return nil, nil, newError(KindExpiredMetadata, "timestamp", "timestamp has expired")
	}

	return &ts, raw, nil
}

// fetchSnapshot fetches and verifies snapshot.json against root's
// snapshot-role keys and the version/length/hash timestamp declared for it,
// enforcing that every named target-metadata file's version does not
// regress relative to the client's currently stored snapshot.
func (c *Client) fetchSnapshot(ctx context.Context, root *RootSigned, timestamp *TimestampSigned) (*SnapshotSigned, []byte, error) {
	meta, ok := timestamp.Meta["snapshot.json"]
	if !ok {
		return nil, nil, newError(KindMalformedMetadata, "snapshot", "timestamp does not declare snapshot.json")
	}

	raw, err := c.fetcher.Fetch(ctx, "snapshot.json")
	if err != nil {
		return nil, nil, wrapError(KindMalformedMetadata, "snapshot", "fetching snapshot.json", err)
	}
	if err := checkFileMeta("snapshot", meta, raw); err != nil {
		return nil, nil, err
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, nil, wrapError(KindMalformedMetadata, "snapshot", "unmarshaling envelope", err)
	}
	var sn SnapshotSigned
	if err := json.Unmarshal(env.Signed, &sn); err != nil {
		return nil, nil, wrapError(KindMalformedMetadata, "snapshot", "unmarshaling signed body", err)
	}

	role, ok := root.Roles["snapshot"]
	if !ok {
		return nil, nil, newError(KindMalformedMetadata, "snapshot", "trusted root has no snapshot role")
	}
	if err := verifyThreshold(env.Signed, env.Signatures, root.Keys, role, "snapshot"); err != nil {
		return nil, nil, err
	}

	if meta.Version != 0 && sn.Version != meta.Version {
		return nil, nil, &RefreshError{
			Kind:     KindVersionMismatch,
			Role:     "snapshot",
			Message:  "snapshot version does not match timestamp's declared version",
			Expected: itoa(int(meta.Version)),
			Actual:   itoa(int(sn.Version)),
		}
	}

	if c.snapshot != nil {
		for name, oldMeta := range c.snapshot.Meta {
			newMeta, ok := sn.Meta[name]
			if !ok {
				continue
			}
			if newMeta.Version < oldMeta.Version {
				return nil, nil, &RefreshError{
					Kind:     KindRollbackDetected,
					Role:     "snapshot",
					Message:  "target-metadata version regressed for " + name,
					Expected: itoa(int(oldMeta.Version)),
					Actual:   itoa(int(newMeta.Version)),
				}
			}
		}
	}

	if !sn.Expires.After(c.clock()) {
		return nil, nil, newError(KindExpiredMetadata, "snapshot", "snapshot has expired")
	}

	return &sn, raw, nil
}

// checkFileMeta validates a fetched metadata file's length and hashes
// against a FileMeta declared by its parent role, reusing the same
// TargetLengthMismatch/TargetHashMismatch kinds the target-fetch path uses:
// the check is identical whether the file in question is a target or a
// role's metadata file.
func checkFileMeta(role string, meta FileMeta, data []byte) error {
	if meta.Length != 0 && int64(len(data)) != meta.Length {
		return &RefreshError{
			Kind:     KindTargetLengthMismatch,
			Role:     role,
			Message:  "declared length does not match fetched length",
			Expected: itoa(int(meta.Length)),
			Actual:   itoa(len(data)),
		}
	}
	for alg, want := range meta.Hashes {
		got, err := hashHex(alg, data)
		if err != nil {
			return wrapError(KindMalformedMetadata, role, "computing hash for verification", err)
		}
		if got != want {
			return &RefreshError{
				Kind:     KindTargetHashMismatch,
				Role:     role,
				Message:  "declared hash does not match fetched content (" + alg + ")",
				Expected: want,
				Actual:   got,
			}
		}
	}
	return nil
}
