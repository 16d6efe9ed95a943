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

import "time"

// TrustedRoot is the in-memory representation of the CAs and transparency
// logs a signer considers authoritative, per the parsed TrustedRoot proto
// message. Fields are unexported flat slices; the set of entries is small
// (a few dozen at most) so lookups are plain linear scans, never a tree
// walk or an index structure.
type TrustedRoot struct {
	cas    []CertificateAuthority
	tlogs  []TLog
	ctlogs []CTLog
}

// New builds a TrustedRoot from its constituent entries, checking the
// at-most-one-current invariant for each of CAs, TLogs, and CTLogs.
func New(cas []CertificateAuthority, tlogs []TLog, ctlogs []CTLog) (*TrustedRoot, error) {
	if n := countCurrentCAs(cas); n > 1 {
		return nil, newError(KindStructuralInvariant, "more than one current certificate authority", nil)
	}
	if n := countCurrentTLogs(tlogs); n > 1 {
		return nil, newError(KindStructuralInvariant, "more than one current tlog", nil)
	}
	if n := countCurrentCTLogs(ctlogs); n > 1 {
		return nil, newError(KindStructuralInvariant, "more than one current ctlog", nil)
	}
	return &TrustedRoot{cas: cas, tlogs: tlogs, ctlogs: ctlogs}, nil
}

func countCurrentCAs(cas []CertificateAuthority) int {
	n := 0
	for _, ca := range cas {
		if ca.Validity.Current() {
			n++
		}
	}
	return n
}

func countCurrentTLogs(tlogs []TLog) int {
	n := 0
	for _, t := range tlogs {
		if t.PublicKey.Validity.Current() {
			n++
		}
	}
	return n
}

func countCurrentCTLogs(ctlogs []CTLog) int {
	n := 0
	for _, t := range ctlogs {
		if t.PublicKey.Validity.Current() {
			n++
		}
	}
	return n
}

// CAsValidAt returns every certificate authority whose validity window
// contains t, in the order they appear in the trust root.
func (r *TrustedRoot) CAsValidAt(t time.Time) []CertificateAuthority {
	var out []CertificateAuthority
	for _, ca := range r.cas {
		if ca.Validity.Contains(t) {
			out = append(out, ca)
		}
	}
	return out
}

// CurrentCA returns the trust root's unique open-ended CA. It fails loudly
// if the count of current CAs is not exactly one.
func (r *TrustedRoot) CurrentCA() (CertificateAuthority, error) {
	var found *CertificateAuthority
	for i := range r.cas {
		if r.cas[i].Validity.Current() {
			if found != nil {
				return CertificateAuthority{}, newError(KindStructuralInvariant, "multiple current certificate authorities", nil)
			}
			found = &r.cas[i]
		}
	}
	if found == nil {
		return CertificateAuthority{}, newError(KindNotFound, "no current certificate authority", nil)
	}
	return *found, nil
}

// FindTLog returns the first TLog whose log-id matches id and whose
// validity window contains t.
func (r *TrustedRoot) FindTLog(id LogID, t time.Time) (TLog, error) {
	for _, tl := range r.tlogs {
		if tl.LogID.Equal(id) && tl.PublicKey.Validity.Contains(t) {
			return tl, nil
		}
	}
	return TLog{}, newError(KindNotFound, "no tlog matches log-id at the given time", nil)
}

// CurrentTLog returns the trust root's unique open-ended TLog.
func (r *TrustedRoot) CurrentTLog() (TLog, error) {
	var found *TLog
	for i := range r.tlogs {
		if r.tlogs[i].PublicKey.Validity.Current() {
			if found != nil {
				return TLog{}, newError(KindStructuralInvariant, "multiple current tlogs", nil)
			}
			found = &r.tlogs[i]
		}
	}
	if found == nil {
		return TLog{}, newError(KindNotFound, "no current tlog", nil)
	}
	return *found, nil
}

// FindCTLog returns the first CTLog whose log-id matches id and whose
// validity window contains t.
func (r *TrustedRoot) FindCTLog(id LogID, t time.Time) (CTLog, error) {
	for _, cl := range r.ctlogs {
		if cl.LogID.Equal(id) && cl.PublicKey.Validity.Contains(t) {
			return cl, nil
		}
	}
	return CTLog{}, newError(KindNotFound, "no ctlog matches log-id at the given time", nil)
}

// CurrentCTLog returns the trust root's unique open-ended CTLog.
func (r *TrustedRoot) CurrentCTLog() (CTLog, error) {
	var found *CTLog
	for i := range r.ctlogs {
		if r.ctlogs[i].PublicKey.Validity.Current() {
			if found != nil {
				return CTLog{}, newError(KindStructuralInvariant, "multiple current ctlogs", nil)
			}
			found = &r.ctlogs[i]
		}
	}
	if found == nil {
		return CTLog{}, newError(KindNotFound, "no current ctlog", nil)
	}
	return *found, nil
}
