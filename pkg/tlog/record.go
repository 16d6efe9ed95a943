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

// InclusionProof is a Merkle audit path anchoring a log entry to a
// checkpoint root hash.
type InclusionProof struct {
	LogIndex   int64
	RootHash   []byte
	TreeSize   int64
	Hashes     [][]byte
	Checkpoint string
}

// Entry is a verified transparency-log record for one signing operation.
type Entry struct {
	LogIndex             int64
	IntegratedTime        int64
	LogID                 []byte
	Body                  []byte // canonical entry body bytes
	InclusionProof        InclusionProof
	SignedEntryTimestamp  []byte
}
