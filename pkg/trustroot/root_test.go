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

import (
	"testing"
	"time"
)

func currentWindow(start time.Time) ValidityWindow {
	return ValidityWindow{Start: start}
}

func closedWindow(start, end time.Time) ValidityWindow {
	return ValidityWindow{Start: start, End: &end}
}

func TestNewRejectsMultipleCurrentCAs(t *testing.T) {
	now := time.Now()
	cas := []CertificateAuthority{
		{URI: "a", Validity: currentWindow(now)},
		{URI: "b", Validity: currentWindow(now)},
	}
	if _, err := New(cas, nil, nil); err == nil {
		t.Fatal("New must reject more than one current CA")
	}
}

func TestNewAllowsOneCurrentCAAndClosedWindows(t *testing.T) {
	now := time.Now()
	cas := []CertificateAuthority{
		{URI: "old", Validity: closedWindow(now.Add(-48*time.Hour), now.Add(-24*time.Hour))},
		{URI: "current", Validity: currentWindow(now.Add(-1 * time.Hour))},
	}
	root, err := New(cas, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := root.CurrentCA()
	if err != nil {
		t.Fatalf("CurrentCA: %v", err)
	}
	if got.URI != "current" {
		t.Fatalf("CurrentCA() = %q, want %q", got.URI, "current")
	}
}

func TestFindTLogByLogIDAndTime(t *testing.T) {
	now := time.Now()
	id := LogID([]byte{0xde, 0xad, 0xbe, 0xef})
	tlogs := []TLog{
		{
			LogID: id,
			PublicKey: TrustedKey{
				Algorithm: AlgorithmECDSAP256,
				Validity:  closedWindow(now.Add(-48*time.Hour), now.Add(-24*time.Hour)),
			},
		},
		{
			LogID: id,
			PublicKey: TrustedKey{
				Algorithm: AlgorithmECDSAP256,
				Validity:  currentWindow(now.Add(-1 * time.Hour)),
			},
		},
	}
	root, err := New(nil, tlogs, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	found, err := root.FindTLog(id, now)
	if err != nil {
		t.Fatalf("FindTLog: %v", err)
	}
	if !found.PublicKey.Validity.Current() {
		t.Fatal("FindTLog at the current time should return the open-ended entry (first match)")
	}

	if _, err := root.FindTLog(LogID([]byte{1, 2, 3}), now); err == nil {
		t.Fatal("FindTLog must fail for an unknown log-id")
	}
}

func TestValidityWindowContains(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	w := closedWindow(start, end)

	if w.Contains(start.Add(-time.Second)) {
		t.Fatal("Contains must reject a time before Start")
	}
	if !w.Contains(start) {
		t.Fatal("Contains must accept Start itself")
	}
	if !w.Contains(end) {
		t.Fatal("Contains must accept End itself (inclusive)")
	}
	if w.Contains(end.Add(time.Second)) {
		t.Fatal("Contains must reject a time after End")
	}
}

func TestLogIDEqualConstantTime(t *testing.T) {
	a := LogID([]byte{1, 2, 3, 4})
	b := LogID([]byte{1, 2, 3, 4})
	c := LogID([]byte{1, 2, 3, 5})
	if !a.Equal(b) {
		t.Fatal("identical log-ids must compare equal")
	}
	if a.Equal(c) {
		t.Fatal("distinct log-ids must not compare equal")
	}
	if a.Equal(LogID([]byte{1, 2, 3})) {
		t.Fatal("log-ids of different length must not compare equal")
	}
}
