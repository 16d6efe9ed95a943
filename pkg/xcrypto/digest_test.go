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
	"bytes"
	"encoding/hex"
	"strings"
	"testing"
)

func TestDigestBytesEmptyArtifact(t *testing.T) {
	d := DigestBytes([]byte{})
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := d.Hex(); got != want {
		t.Fatalf("DigestBytes([]byte{}).Hex() = %s, want %s", got, want)
	}
	if d.Algorithm() != "sha256" {
		t.Fatalf("Algorithm() = %s, want sha256", d.Algorithm())
	}
}

func TestDigestBytesHelloWorld(t *testing.T) {
	hello := DigestBytes([]byte("hello"))
	world := DigestBytes([]byte("world"))
	if hello.Equal(world) {
		t.Fatal("digests of distinct inputs must not be equal")
	}

	wantHello := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got := hello.Hex(); got != wantHello {
		t.Fatalf("sha256(\"hello\") = %s, want %s", got, wantHello)
	}
}

func TestDigestReader(t *testing.T) {
	d, err := DigestReader(bytes.NewReader([]byte("hello")))
	if err != nil {
		t.Fatalf("DigestReader: %v", err)
	}
	want := DigestBytes([]byte("hello"))
	if !d.Equal(want) {
		t.Fatalf("DigestReader produced %s, want %s", d, want)
	}
}

func TestDigestValueIsDefensiveCopy(t *testing.T) {
	d := DigestBytes([]byte("hello"))
	v := d.Value()
	v[0] ^= 0xff
	if !d.Equal(DigestBytes([]byte("hello"))) {
		t.Fatal("mutating Value()'s result must not affect the Digest")
	}
}

func TestDigestString(t *testing.T) {
	d := NewDigest("sha256", mustHex(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"))
	if !strings.HasPrefix(d.String(), "sha256:") {
		t.Fatalf("String() = %s, want sha256: prefix", d.String())
	}
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("hex.DecodeString: %v", err)
	}
	return b
}
