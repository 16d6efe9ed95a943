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
	"context"
	"encoding/json"
)

// rotateRoot implements root rotation: starting from the client's currently
// trusted root, repeatedly fetch {N+1}.root.json until a 404, requiring
// each fetched root to verify under both the previous root's and its own
// root-role keys, and to strictly increment the version by one.
func (c *Client) rotateRoot(ctx context.Context) (*RootSigned, []byte, error) {
	current := c.root
	currentRaw := c.rootRaw

	for {
		next := current.Version + 1
		raw, err := c.fetcher.Fetch(ctx, rootFileName(next))
		if err != nil {
			if IsNotFound(err) {
				break
			}
			return nil, nil, wrapError(KindMalformedMetadata, "root", "fetching next root version", err)
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, nil, wrapError(KindMalformedMetadata, "root", "unmarshaling root envelope", err)
		}
		var candidate RootSigned
		if err := json.Unmarshal(env.Signed, &candidate); err != nil {
			return nil, nil, wrapError(KindMalformedMetadata, "root", "unmarshaling root signed body", err)
		}

		if candidate.Version != next {
			return nil, nil, &RefreshError{
				Kind:     KindVersionMismatch,
				Role:     "root",
				Message:  "fetched root version does not match expected next version",
				Expected: itoa(int(next)),
				Actual:   itoa(int(candidate.Version)),
			}
		}

		oldRootRole, ok := current.Roles["root"]
		if !ok {
			return nil, nil, newError(KindMalformedMetadata, "root", "trusted root has no root role")
		}
		if err := verifyThreshold(env.Signed, env.Signatures, current.Keys, oldRootRole, "root"); err != nil {
			return nil, nil, err
		}

		newRootRole, ok := candidate.Roles["root"]
		if !ok {
			return nil, nil, newError(KindMalformedMetadata, "root", "fetched root has no root role")
		}
		if err := verifyThreshold(env.Signed, env.Signatures, candidate.Keys, newRootRole, "root"); err != nil {
			return nil, nil, err
		}

		current = candidate
		currentRaw = raw
	}

	return &current, currentRaw, nil
}
