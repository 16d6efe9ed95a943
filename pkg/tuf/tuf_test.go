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
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/secure-systems-lab/go-securesystemslib/cjson"

	"github.com/sigstore/keyless-signing/pkg/xcrypto"
)

// testRepo builds a minimal single-key TUF repository (one ed25519 key
// authorized for every role) and serves it over an httptest.Server,
// mirroring a real TUF mirror closely enough to exercise the client's
// rotation, rollback, and target-verification logic.
type testRepo struct {
	pub     ed25519.PublicKey
	priv    ed25519.PrivateKey
	keyID   string
	files   map[string][]byte
	server  *httptest.Server
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("ed25519.GenerateKey: %v", err)
	}
	r := &testRepo{pub: pub, priv: priv, keyID: "testkey", files: map[string][]byte{}}
	r.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		path := req.URL.Path
		if len(path) > 0 && path[0] == '/' {
			path = path[1:]
		}
		data, ok := r.files[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}))
	return r
}

func (r *testRepo) close() { r.server.Close() }

func (r *testRepo) key() Key {
	k := Key{KeyType: "ed25519", Scheme: "ed25519"}
	k.Value.Public = hex.EncodeToString(r.pub)
	return k
}

func (r *testRepo) role() Role {
	return Role{KeyIDs: []string{r.keyID}, Threshold: 1}
}

// sign canonicalizes signed the same way verifyThreshold recomputes it, and
// produces an envelope raw JSON byte slice ready to serve at a repo path.
func (r *testRepo) sign(t *testing.T, signed interface{}) []byte {
	t.Helper()
	rawSigned, err := json.Marshal(signed)
	if err != nil {
		t.Fatalf("marshaling signed body: %v", err)
	}
	var obj interface{}
	if err := json.Unmarshal(rawSigned, &obj); err != nil {
		t.Fatalf("unmarshaling signed body: %v", err)
	}
	canonical, err := cjson.EncodeCanonical(obj)
	if err != nil {
		t.Fatalf("cjson.EncodeCanonical: %v", err)
	}
	sig, err := xcrypto.Sign(r.priv, xcrypto.NewDigest("raw", canonical))
	if err != nil {
		t.Fatalf("signing: %v", err)
	}
	env := Envelope{
		Signed:     rawSigned,
		Signatures: []Signature{{KeyID: r.keyID, Sig: hex.EncodeToString(sig)}},
	}
	out, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshaling envelope: %v", err)
	}
	return out
}

func (r *testRepo) rootSigned(version int64) RootSigned {
	role := r.role()
	return RootSigned{
		Type:        "root",
		SpecVersion: "1.0",
		Version:     version,
		Expires:     time.Now().Add(24 * time.Hour),
		Keys:        map[string]Key{r.keyID: r.key()},
		Roles: map[string]Role{
			"root":      role,
			"timestamp": role,
			"snapshot":  role,
			"targets":   role,
		},
	}
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func TestUpdateAndGetTargetBytesHappyPath(t *testing.T) {
	repo := newTestRepo(t)
	defer repo.close()

	targetContent := []byte("trust root contents")
	targetsSigned := TargetsSigned{
		Type:    "targets",
		Version: 1,
		Expires: time.Now().Add(24 * time.Hour),
		Targets: map[string]FileMeta{
			"trusted_root.json": {
				Length: int64(len(targetContent)),
				Hashes: map[string]string{"sha256": sha256Hex(targetContent)},
			},
		},
	}
	targetsRaw := repo.sign(t, targetsSigned)

	snapshotSigned := SnapshotSigned{
		Type:    "snapshot",
		Version: 1,
		Expires: time.Now().Add(24 * time.Hour),
		Meta:    map[string]FileMeta{"targets.json": {Version: 1}},
	}
	snapshotRaw := repo.sign(t, snapshotSigned)

	timestampSigned := TimestampSigned{
		Type:    "timestamp",
		Version: 1,
		Expires: time.Now().Add(24 * time.Hour),
		Meta:    map[string]FileMeta{"snapshot.json": {Version: 1}},
	}
	timestampRaw := repo.sign(t, timestampSigned)

	rootRaw := repo.sign(t, repo.rootSigned(1))

	repo.files["root.json"] = rootRaw
	repo.files["timestamp.json"] = timestampRaw
	repo.files["snapshot.json"] = snapshotRaw
	repo.files["targets.json"] = targetsRaw
	repo.files["targets/trusted_root.json"] = targetContent

	store, err := OpenStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	fetcher := NewHTTPFetcher(repo.server.URL, repo.server.Client())
	client, err := NewClient(fetcher, store, rootRaw)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if err := client.Update(context.Background()); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := client.State(); got != Ready {
		t.Fatalf("State() = %s, want Ready", got)
	}

	data, err := client.GetTargetBytes(context.Background(), "trusted_root.json")
	if err != nil {
		t.Fatalf("GetTargetBytes: %v", err)
	}
	if string(data) != string(targetContent) {
		t.Fatalf("GetTargetBytes returned %q, want %q", data, targetContent)
	}
}

func TestGetTargetBytesMissingTarget(t *testing.T) {
	repo := newTestRepo(t)
	defer repo.close()

	targetsSigned := TargetsSigned{
		Type:    "targets",
		Version: 1,
		Expires: time.Now().Add(24 * time.Hour),
		Targets: map[string]FileMeta{}, // trusted_root.json intentionally absent
	}
	targetsRaw := repo.sign(t, targetsSigned)
	snapshotRaw := repo.sign(t, SnapshotSigned{
		Type: "snapshot", Version: 1, Expires: time.Now().Add(24 * time.Hour),
		Meta: map[string]FileMeta{"targets.json": {Version: 1}},
	})
	timestampRaw := repo.sign(t, TimestampSigned{
		Type: "timestamp", Version: 1, Expires: time.Now().Add(24 * time.Hour),
		Meta: map[string]FileMeta{"snapshot.json": {Version: 1}},
	})
	rootRaw := repo.sign(t, repo.rootSigned(1))

	repo.files["root.json"] = rootRaw
	repo.files["timestamp.json"] = timestampRaw
	repo.files["snapshot.json"] = snapshotRaw
	repo.files["targets.json"] = targetsRaw

	store, err := OpenStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	client, err := NewClient(NewHTTPFetcher(repo.server.URL, repo.server.Client()), store, rootRaw)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if err := client.Update(context.Background()); err != nil {
		t.Fatalf("Update: %v", err)
	}

	_, err = client.GetTargetBytes(context.Background(), "trusted_root.json")
	var refreshErr *RefreshError
	if err == nil {
		t.Fatal("GetTargetBytes must fail for a target absent from targets metadata")
	}
	if !asRefreshError(err, &refreshErr) || refreshErr.Kind != KindTargetMissing {
		t.Fatalf("GetTargetBytes error = %v, want KindTargetMissing", err)
	}
}

func TestGetTargetBytesTamperedLength(t *testing.T) {
	repo := newTestRepo(t)
	defer repo.close()

	declaredContent := make([]byte, 120)
	actualContent := make([]byte, 121)

	targetsSigned := TargetsSigned{
		Type:    "targets",
		Version: 1,
		Expires: time.Now().Add(24 * time.Hour),
		Targets: map[string]FileMeta{
			"trusted_root.json": {
				Length: int64(len(declaredContent)),
				Hashes: map[string]string{"sha256": sha256Hex(declaredContent)},
			},
		},
	}
	targetsRaw := repo.sign(t, targetsSigned)
	snapshotRaw := repo.sign(t, SnapshotSigned{
		Type: "snapshot", Version: 1, Expires: time.Now().Add(24 * time.Hour),
		Meta: map[string]FileMeta{"targets.json": {Version: 1}},
	})
	timestampRaw := repo.sign(t, TimestampSigned{
		Type: "timestamp", Version: 1, Expires: time.Now().Add(24 * time.Hour),
		Meta: map[string]FileMeta{"snapshot.json": {Version: 1}},
	})
	rootRaw := repo.sign(t, repo.rootSigned(1))

	repo.files["root.json"] = rootRaw
	repo.files["timestamp.json"] = timestampRaw
	repo.files["snapshot.json"] = snapshotRaw
	repo.files["targets.json"] = targetsRaw
	repo.files["targets/trusted_root.json"] = actualContent // 121 bytes vs declared 120

	store, err := OpenStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	client, err := NewClient(NewHTTPFetcher(repo.server.URL, repo.server.Client()), store, rootRaw)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if err := client.Update(context.Background()); err != nil {
		t.Fatalf("Update: %v", err)
	}

	_, err = client.GetTargetBytes(context.Background(), "trusted_root.json")
	var refreshErr *RefreshError
	if err == nil {
		t.Fatal("GetTargetBytes must fail on a length mismatch")
	}
	if !asRefreshError(err, &refreshErr) || refreshErr.Kind != KindTargetLengthMismatch {
		t.Fatalf("GetTargetBytes error = %v, want KindTargetLengthMismatch", err)
	}
	if refreshErr.Expected != "120" || refreshErr.Actual != "121" {
		t.Fatalf("RefreshError expected/actual = %s/%s, want 120/121", refreshErr.Expected, refreshErr.Actual)
	}

	cached, _ := store.ReadTarget("trusted_root.json")
	if cached != nil {
		t.Fatal("a failed target fetch must not populate the local cache")
	}
}

func TestUpdateRollbackTimestamp(t *testing.T) {
	repo := newTestRepo(t)
	defer repo.close()

	rootRaw := repo.sign(t, repo.rootSigned(1))
	repo.files["root.json"] = rootRaw

	store, err := OpenStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}

	// Pre-populate the store with a trusted timestamp at version 10.
	staleSnapshotRaw := repo.sign(t, SnapshotSigned{
		Type: "snapshot", Version: 10, Expires: time.Now().Add(24 * time.Hour),
		Meta: map[string]FileMeta{"targets.json": {Version: 1}},
	})
	_ = staleSnapshotRaw
	storedTimestampRaw := repo.sign(t, TimestampSigned{
		Type: "timestamp", Version: 10, Expires: time.Now().Add(24 * time.Hour),
		Meta: map[string]FileMeta{"snapshot.json": {Version: 10}},
	})
	if err := store.WriteRole("root.json", rootRaw); err != nil {
		t.Fatalf("WriteRole root: %v", err)
	}
	if err := store.WriteRole("timestamp.json", storedTimestampRaw); err != nil {
		t.Fatalf("WriteRole timestamp: %v", err)
	}

	// The remote now serves an older timestamp, version 9.
	remoteTimestampRaw := repo.sign(t, TimestampSigned{
		Type: "timestamp", Version: 9, Expires: time.Now().Add(24 * time.Hour),
		Meta: map[string]FileMeta{"snapshot.json": {Version: 9}},
	})
	repo.files["timestamp.json"] = remoteTimestampRaw

	client, err := NewClient(NewHTTPFetcher(repo.server.URL, repo.server.Client()), store, rootRaw)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	err = client.Update(context.Background())
	var refreshErr *RefreshError
	if err == nil {
		t.Fatal("Update must fail when the fetched timestamp version regresses")
	}
	if !asRefreshError(err, &refreshErr) || refreshErr.Kind != KindRollbackDetected {
		t.Fatalf("Update error = %v, want KindRollbackDetected", err)
	}
	if refreshErr.Expected != "10" || refreshErr.Actual != "9" {
		t.Fatalf("RefreshError expected/actual = %s/%s, want 10/9", refreshErr.Expected, refreshErr.Actual)
	}
	if client.State() != Failed {
		t.Fatalf("State() = %s, want Failed", client.State())
	}

	// The store must retain the pre-call trusted timestamp untouched.
	stillStored, err := store.ReadRole("timestamp.json")
	if err != nil {
		t.Fatalf("ReadRole timestamp: %v", err)
	}
	if string(stillStored) != string(storedTimestampRaw) {
		t.Fatal("a failed Update must leave the local store in its pre-call state")
	}
}

func asRefreshError(err error, target **RefreshError) bool {
	if re, ok := err.(*RefreshError); ok {
		*target = re
		return true
	}
	return false
}
