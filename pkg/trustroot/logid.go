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

package trustroot

import "crypto/subtle"

// LogID is the opaque byte identifier of a transparency log, typically
// SHA-256 of the log's DER-encoded public key.
type LogID []byte

// Equal compares two log-ids in constant time, per the lookup semantics
// that require a byte-equality check not vulnerable to timing side
// channels when comparing attacker-influenced log-ids.
func (id LogID) Equal(other LogID) bool {
	if len(id) != len(other) {
		return false
	}
	return subtle.ConstantTimeCompare(id, other) == 1
}
