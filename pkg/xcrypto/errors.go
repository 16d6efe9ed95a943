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

import "fmt"

// ErrorKind categorizes a CryptoError, per the CryptoError taxonomy.
type ErrorKind int

const (
	// KindInvalidKeySpec indicates malformed or unparsable key material.
	KindInvalidKeySpec ErrorKind = iota
	// KindUnsupportedAlgorithm indicates a key or scheme outside the
	// supported closed set (RSA, ECDSA, Ed25519 for parsing;
	// ed25519/ecdsa-sha2-nistp256 for TUF key construction).
	KindUnsupportedAlgorithm
	// KindSignatureFailure indicates a signing or verification operation
	// failed.
	KindSignatureFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidKeySpec:
		return "InvalidKeySpec"
	case KindUnsupportedAlgorithm:
		return "UnsupportedAlgorithm"
	case KindSignatureFailure:
		return "SignatureFailure"
	default:
		return "Unknown"
	}
}

// Error is a typed, wrapped error for every failure mode of the crypto
// primitives component.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func newError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}
