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

package oidcclient

import "fmt"

// Error is the IdentityError of the taxonomy: any OIDC flow failure.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("oidcclient: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("oidcclient: %s", e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func wrapError(message string, cause error) *Error {
	return &Error{Message: message, Cause: cause}
}
