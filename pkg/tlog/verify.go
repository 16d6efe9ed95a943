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
	"encoding/binary"
	"time"

	"github.com/transparency-dev/merkle/proof"
	"github.com/transparency-dev/merkle/rfc6962"

	"github.com/sigstore/keyless-signing/pkg/trustroot"
	"github.com/sigstore/keyless-signing/pkg/xcrypto"
)

// verifySET checks the log's Signed Entry Timestamp: the canonical
// concatenation of (body, integratedTime, logIndex, logID) must verify
// against the trust root's TLog whose log-id matches entry.LogID, at
// time=integratedTime.
func verifySET(entry *Entry, root *trustroot.TrustedRoot) error {
	at := time.UnixMilli(entry.IntegratedTime * 1000)
	tl, err := root.FindTLog(trustroot.LogID(entry.LogID), at)
	if err != nil {
		return newError(KindSETInvalid, "no trust-root tlog matches the entry's log-id at its integrated time", err)
	}

	signedData := setSignedData(entry)
	if err := xcrypto.Verify(tl.PublicKey.Key, xcrypto.DigestBytes(signedData), entry.SignedEntryTimestamp); err != nil {
		return newError(KindSETInvalid, "signed entry timestamp does not verify against the trust-root tlog key", err)
	}
	return nil
}

// setSignedData serializes an entry's key fields in the fixed order the
// log signs over: canonical body, big-endian integratedTime, big-endian
// logIndex, then the raw logID bytes.
func setSignedData(entry *Entry) []byte {
	buf := make([]byte, 0, len(entry.Body)+16+len(entry.LogID))
	buf = append(buf, entry.Body...)
	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(entry.IntegratedTime))
	buf = append(buf, ts...)
	idx := make([]byte, 8)
	binary.BigEndian.PutUint64(idx, uint64(entry.InclusionProof.LogIndex))
	buf = append(buf, idx...)
	buf = append(buf, entry.LogID...)
	return buf
}

// verifyInclusionProof recomputes the Merkle tree root from the entry's
// leaf hash (RFC 6962 leaf hash over the canonical body) and its audit
// path, and compares it against the checkpoint root hash the log
// declared in the same response.
func verifyInclusionProof(entry *Entry) error {
	hasher := rfc6962.DefaultHasher
	leafHash := hasher.HashLeaf(entry.Body)

	err := proof.VerifyInclusion(
		hasher,
		uint64(entry.InclusionProof.LogIndex),
		uint64(entry.InclusionProof.TreeSize),
		leafHash,
		entry.InclusionProof.Hashes,
		entry.InclusionProof.RootHash,
	)
	if err != nil {
		return newError(KindInclusionProofInvalid, "inclusion proof does not recompute to the declared root hash", err)
	}
	return nil
}
