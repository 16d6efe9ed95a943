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
	"encoding/json"
	"time"
)

// Key is a TUF role key: a scheme name and the raw key value it signs
// with, keyed in a role's key map by its key-id.
type Key struct {
	KeyType string `json:"keytype"`
	Scheme  string `json:"scheme"`
	Value   struct {
		Public string `json:"public"`
	} `json:"keyval"`
}

// Role names the key-ids authorized to sign for a role and the signature
// threshold required to trust an update to it.
type Role struct {
	KeyIDs    []string `json:"keyids"`
	Threshold int      `json:"threshold"`
}

// RootSigned is the "signed" body of root.json: the full key/role map that
// governs every other role, plus whether the repository publishes
// consistent (hash-prefixed) snapshots.
type RootSigned struct {
	Type               string          `json:"_type"`
	SpecVersion        string          `json:"spec_version"`
	Version            int64           `json:"version"`
	Expires            time.Time       `json:"expires"`
	Keys               map[string]Key  `json:"keys"`
	Roles              map[string]Role `json:"roles"`
	ConsistentSnapshot bool            `json:"consistent_snapshot"`
}

// FileMeta describes a role or target file's declared length and
// multi-algorithm hash map, as embedded in timestamp/snapshot/targets
// metadata.
type FileMeta struct {
	Version int64             `json:"version,omitempty"`
	Length  int64             `json:"length,omitempty"`
	Hashes  map[string]string `json:"hashes,omitempty"`
}

// TimestampSigned is the "signed" body of timestamp.json.
type TimestampSigned struct {
	Type    string              `json:"_type"`
	Version int64               `json:"version"`
	Expires time.Time           `json:"expires"`
	Meta    map[string]FileMeta `json:"meta"`
}

// SnapshotSigned is the "signed" body of snapshot.json.
type SnapshotSigned struct {
	Type    string              `json:"_type"`
	Version int64               `json:"version"`
	Expires time.Time           `json:"expires"`
	Meta    map[string]FileMeta `json:"meta"`
}

// DelegatedRole names a targets sub-role delegated authority over a subset
// of target paths.
type DelegatedRole struct {
	Name      string   `json:"name"`
	KeyIDs    []string `json:"keyids"`
	Threshold int      `json:"threshold"`
	Paths     []string `json:"paths,omitempty"`
}

// Delegations holds the keys and roles a targets file delegates to.
type Delegations struct {
	Keys  map[string]Key  `json:"keys"`
	Roles []DelegatedRole `json:"roles"`
}

// TargetsSigned is the "signed" body of targets.json (or a delegated
// targets role file).
type TargetsSigned struct {
	Type        string              `json:"_type"`
	Version     int64               `json:"version"`
	Expires     time.Time           `json:"expires"`
	Targets     map[string]FileMeta `json:"targets"`
	Delegations *Delegations        `json:"delegations,omitempty"`
}

// Signature is one entry in a metadata file's "signatures" array.
type Signature struct {
	KeyID string `json:"keyid"`
	Sig   string `json:"sig"`
}

// Envelope is the on-wire shape shared by every TUF role file: a raw
// "signed" body (kept as json.RawMessage so its bytes can be re-serialized
// exactly for canonical signature verification) plus its signatures.
type Envelope struct {
	Signed     json.RawMessage `json:"signed"`
	Signatures []Signature     `json:"signatures"`
}
