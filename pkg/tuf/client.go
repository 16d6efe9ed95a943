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
	"sync"
	"time"

	"github.com/sigstore/keyless-signing/pkg/logging"
	"github.com/sigstore/keyless-signing/pkg/tracing"
)

// Client is a TUF client bound to one remote repository and one local
// Store. Update holds the client's mutex for the whole refresh, so
// concurrent Update calls on one Client run one after another; separate
// Clients sharing one Store are not coordinated and must serialize
// refreshes themselves, per the local store's single-writer contract.
type Client struct {
	fetcher Fetcher
	store   *Store
	clock   func() time.Time
	log     logging.Logger

	mu      sync.Mutex
	state   State
	reason  error
	root    RootSigned
	rootRaw []byte

	timestamp    *TimestampSigned
	timestampRaw []byte
	snapshot     *SnapshotSigned
	snapshotRaw  []byte
	targets      *TargetsSigned
	targetsRaw   []byte

	// allTargets merges the top-level targets role with every delegated
	// role's targets, so GetTargetBytes need not know the delegation tree.
	allTargets map[string]FileMeta
	roleRaw    map[string][]byte
}

// Option configures a Client at construction.
type Option func(*Client)

// WithClock overrides the source of the current time, for deterministic
// expiry testing.
func WithClock(clock func() time.Time) Option {
	return func(c *Client) { c.clock = clock }
}

// WithLogger attaches a logger; the default is logging.Default().
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient constructs a Client, seeding its trusted root from the local
// store if present, or from initialRoot (the root.json shipped with the
// binary as the initial trust anchor) otherwise. initialRoot is trusted
// unconditionally: root-of-trust bootstrap is a configuration concern, not
// something the client verifies against itself.
func NewClient(fetcher Fetcher, store *Store, initialRoot []byte, opts ...Option) (*Client, error) {
	c := &Client{
		fetcher: fetcher,
		store:   store,
		clock:   time.Now,
		log:     logging.Default(),
		state:   Idle,
		roleRaw: map[string][]byte{},
	}
	for _, opt := range opts {
		opt(c)
	}

	rootRaw, err := store.ReadRole("root.json")
	if err != nil {
		return nil, err
	}
	if rootRaw == nil {
		rootRaw = initialRoot
	}
	if rootRaw == nil {
		return nil, newError(KindMalformedMetadata, "root", "no cached root and no initial root supplied")
	}
	root, err := decodeRoot(rootRaw)
	if err != nil {
		return nil, err
	}
	c.root = *root
	c.rootRaw = rootRaw

	if raw, err := store.ReadRole("timestamp.json"); err == nil && raw != nil {
		if ts, err := decodeTimestamp(raw); err == nil {
			c.timestamp = ts
			c.timestampRaw = raw
		}
	}
	if raw, err := store.ReadRole("snapshot.json"); err == nil && raw != nil {
		if sn, err := decodeSnapshot(raw); err == nil {
			c.snapshot = sn
			c.snapshotRaw = raw
		}
	}
	if raw, err := store.ReadRole("targets.json"); err == nil && raw != nil {
		if tg, err := decodeTargets(raw); err == nil {
			c.targets = tg
			c.targetsRaw = raw
			c.allTargets = map[string]FileMeta{}
			for name, m := range tg.Targets {
				c.allTargets[name] = m
			}
		}
	}

	return c, nil
}

// State returns the client's current position in the refresh state machine.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func decodeRoot(raw []byte) (*RootSigned, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, wrapError(KindMalformedMetadata, "root", "unmarshaling envelope", err)
	}
	var root RootSigned
	if err := json.Unmarshal(env.Signed, &root); err != nil {
		return nil, wrapError(KindMalformedMetadata, "root", "unmarshaling signed body", err)
	}
	return &root, nil
}

func decodeTimestamp(raw []byte) (*TimestampSigned, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, wrapError(KindMalformedMetadata, "timestamp", "unmarshaling envelope", err)
	}
	var ts TimestampSigned
	if err := json.Unmarshal(env.Signed, &ts); err != nil {
		return nil, wrapError(KindMalformedMetadata, "timestamp", "unmarshaling signed body", err)
	}
	return &ts, nil
}

func decodeSnapshot(raw []byte) (*SnapshotSigned, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, wrapError(KindMalformedMetadata, "snapshot", "unmarshaling envelope", err)
	}
	var sn SnapshotSigned
	if err := json.Unmarshal(env.Signed, &sn); err != nil {
		return nil, wrapError(KindMalformedMetadata, "snapshot", "unmarshaling signed body", err)
	}
	return &sn, nil
}

func decodeTargets(raw []byte) (*TargetsSigned, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, wrapError(KindMalformedMetadata, "targets", "unmarshaling envelope", err)
	}
	var tg TargetsSigned
	if err := json.Unmarshal(env.Signed, &tg); err != nil {
		return nil, wrapError(KindMalformedMetadata, "targets", "unmarshaling signed body", err)
	}
	return &tg, nil
}

// Update brings the local store to the latest consistent state anchored on
// the trusted root, following root rotation, then timestamp, snapshot, and
// targets verification in that order. On any failure the client's state
// becomes Failed and the in-memory trusted state does not change. Nothing
// is written to the store until every step of the pipeline has verified,
// so a verification failure leaves the store untouched. The role files are
// then replaced one at a time, each atomically; the set of files is not
// replaced as a unit, so a write error partway through leaves the files
// written before it already replaced.
func (c *Client) Update(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return tracing.Run(ctx, "tuf.Update", c.update)
}

func (c *Client) update(ctx context.Context) error {
	c.state = RootRotating
	newRoot, newRootRaw, err := c.rotateRoot(ctx)
	if err != nil {
		c.state = Failed
		c.reason = err
		return err
	}
	if !newRoot.Expires.After(c.clock()) {
		err := newError(KindExpiredMetadata, "root", "trusted root has expired")
		c.state = Failed
		c.reason = err
		return err
	}

	c.state = TimestampVerifying
	newTimestamp, newTimestampRaw, err := c.fetchTimestamp(ctx, newRoot)
	if err != nil {
		c.state = Failed
		c.reason = err
		return err
	}

	c.state = SnapshotVerifying
	newSnapshot, newSnapshotRaw, err := c.fetchSnapshot(ctx, newRoot, newTimestamp)
	if err != nil {
		c.state = Failed
		c.reason = err
		return err
	}

	c.state = TargetsVerifying
	newTargets, newTargetsRaw, allTargets, delegatedRaw, err := c.fetchTargets(ctx, newRoot, newSnapshot)
	if err != nil {
		c.state = Failed
		c.reason = err
		return err
	}

	if err := c.store.WriteRole("root.json", newRootRaw); err != nil {
		c.state = Failed
		c.reason = err
		return err
	}
	if err := c.store.WriteRole("timestamp.json", newTimestampRaw); err != nil {
		c.state = Failed
		c.reason = err
		return err
	}
	if err := c.store.WriteRole("snapshot.json", newSnapshotRaw); err != nil {
		c.state = Failed
		c.reason = err
		return err
	}
	if err := c.store.WriteRole("targets.json", newTargetsRaw); err != nil {
		c.state = Failed
		c.reason = err
		return err
	}
	for name, raw := range delegatedRaw {
		if err := c.store.WriteRole(name+".json", raw); err != nil {
			c.state = Failed
			c.reason = err
			return err
		}
	}

	c.root = *newRoot
	c.rootRaw = newRootRaw
	c.timestamp = newTimestamp
	c.timestampRaw = newTimestampRaw
	c.snapshot = newSnapshot
	c.snapshotRaw = newSnapshotRaw
	c.targets = newTargets
	c.targetsRaw = newTargetsRaw
	c.allTargets = allTargets
	c.roleRaw = delegatedRaw
	c.state = Ready
	c.reason = nil

	c.log.Debug("tuf refresh complete: root version %d, targets version %d", newRoot.Version, newTargets.Version)
	return nil
}
