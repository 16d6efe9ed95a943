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

// ValidityWindow is a (start, optional end) instant pair. A window with no
// end is "current": it remains authoritative until superseded.
type ValidityWindow struct {
	Start time.Time
	End   *time.Time
}

// Current reports whether the window has no end instant.
func (w ValidityWindow) Current() bool {
	return w.End == nil
}

// Contains reports whether t falls within [Start, End] (End inclusive, or
// unbounded if absent).
func (w ValidityWindow) Contains(t time.Time) bool {
	if t.Before(w.Start) {
		return false
	}
	if w.End != nil && t.After(*w.End) {
		return false
	}
	return true
}
