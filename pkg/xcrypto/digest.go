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

package xcrypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// Digest is an immutable SHA-256 digest over a signing artifact's raw bytes.
// Fields are unexported; constructors and accessors defensively copy so a
// Digest cannot be mutated after construction.
type Digest struct {
	algorithm string
	value     []byte
}

// NewDigest wraps a precomputed digest value under the given algorithm name.
func NewDigest(algorithm string, value []byte) Digest {
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	return Digest{algorithm: algorithm, value: valueCopy}
}

// DigestBytes computes the SHA-256 digest of data.
func DigestBytes(data []byte) Digest {
	sum := sha256.Sum256(data)
	return NewDigest("sha256", sum[:])
}

// DigestReader streams r through SHA-256 without buffering the whole input.
func DigestReader(r io.Reader) (Digest, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return Digest{}, newError(KindInvalidKeySpec, "reading artifact for digest", err)
	}
	return NewDigest("sha256", h.Sum(nil)), nil
}

// Algorithm returns the hash algorithm name, e.g. "sha256".
func (d Digest) Algorithm() string { return d.algorithm }

// Value returns a defensive copy of the raw digest bytes.
func (d Digest) Value() []byte {
	valueCopy := make([]byte, len(d.value))
	copy(valueCopy, d.value)
	return valueCopy
}

// Hex returns the lowercase hex encoding of the digest bytes.
func (d Digest) Hex() string {
	return hex.EncodeToString(d.value)
}

// String renders the digest as "algorithm:hex", the form used in bundle
// records and log messages.
func (d Digest) String() string {
	return fmt.Sprintf("%s:%s", d.algorithm, d.Hex())
}

// Equal reports whether two digests share an algorithm and value, using a
// constant-time-length comparison loop rather than bytes.Equal so digest
// comparisons in the verification path do not short-circuit on a byte
// prefix match.
func (d Digest) Equal(other Digest) bool {
	if d.algorithm != other.algorithm || len(d.value) != len(other.value) {
		return false
	}
	var diff byte
	for i := range d.value {
		diff |= d.value[i] ^ other.value[i]
	}
	return diff == 0
}
