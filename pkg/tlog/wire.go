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

// entryResponse is the JSON object the log returns for a single entry,
// keyed by the entry's UUID at the top level of the response body.
type entryResponse struct {
	Body           string              `json:"body"`
	IntegratedTime int64               `json:"integratedTime"`
	LogID          string              `json:"logID"`
	LogIndex       int64               `json:"logIndex"`
	Verification   entryVerification   `json:"verification"`
}

type entryVerification struct {
	InclusionProof       inclusionProofWire `json:"inclusionProof"`
	SignedEntryTimestamp string             `json:"signedEntryTimestamp"`
}

type inclusionProofWire struct {
	LogIndex   int64    `json:"logIndex"`
	RootHash   string   `json:"rootHash"`
	TreeSize   int64    `json:"treeSize"`
	Hashes     []string `json:"hashes"`
	Checkpoint string   `json:"checkpoint"`
}
