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
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"fmt"

	sigstoresig "github.com/sigstore/sigstore/pkg/signature"
	sigopts "github.com/sigstore/sigstore/pkg/signature/options"
)

// Sign signs digest with privateKey, dispatching on key type the way a
// signing client that must support whatever key material a caller brings
// needs to. The signing pipeline's own ephemeral keys are always ECDSA
// P-256, but Sign accepts the wider set so xcrypto stays reusable outside
// the sigstore-flow, e.g. for verifying externally supplied signatures
// during tests.
//
// ed25519 keys always sign digest's bytes as the message directly (pure
// ed25519 has no internal hash step). For ECDSA and RSA, a digest tagged
// "raw" carries an unhashed message, which the underlying signature.Signer
// hashes exactly once; any other tag names an already-computed digest
// value, which is signed directly without rehashing.
func Sign(privateKey crypto.PrivateKey, digest Digest) ([]byte, error) {
	signer, hashFunc, err := loadSigner(privateKey)
	if err != nil {
		return nil, err
	}
	sig, err := signWithHasher(signer, hashFunc, digest)
	if err != nil {
		return nil, newError(KindSignatureFailure, "signing failed", err)
	}
	return sig, nil
}

// Verify checks that signature is a valid signature by publicKey over
// digest, using the same raw-vs-precomputed dispatch as Sign.
func Verify(publicKey crypto.PublicKey, digest Digest, signature []byte) error {
	verifier, hashFunc, err := loadVerifier(publicKey)
	if err != nil {
		return err
	}
	if err := verifyWithHasher(verifier, hashFunc, digest, signature); err != nil {
		return newError(KindSignatureFailure, "signature verification failed", err)
	}
	return nil
}

// loadSigner wraps privateKey in a sigstore signature.Signer, returning the
// crypto.Hash it hashes messages with (crypto.Hash(0) for ed25519, which
// never hashes).
func loadSigner(privateKey crypto.PrivateKey) (sigstoresig.Signer, crypto.Hash, error) {
	switch key := privateKey.(type) {
	case *ecdsa.PrivateKey:
		hf := ecdsaHashFunc(key.Curve.Params().BitSize)
		if hf == 0 {
			return nil, 0, newError(KindUnsupportedAlgorithm, fmt.Sprintf("unsupported ECDSA curve size: %d bits", key.Curve.Params().BitSize), nil)
		}
		signer, err := sigstoresig.LoadECDSASigner(key, hf)
		if err != nil {
			return nil, 0, newError(KindInvalidKeySpec, "loading ecdsa signer", err)
		}
		return signer, hf, nil
	case *rsa.PrivateKey:
		signer, err := sigstoresig.LoadRSAPKCS1v15Signer(key, crypto.SHA256)
		if err != nil {
			return nil, 0, newError(KindInvalidKeySpec, "loading rsa signer", err)
		}
		return signer, crypto.SHA256, nil
	case ed25519.PrivateKey:
		signer, err := sigstoresig.LoadED25519Signer(key)
		if err != nil {
			return nil, 0, newError(KindInvalidKeySpec, "loading ed25519 signer", err)
		}
		return signer, crypto.Hash(0), nil
	default:
		return nil, 0, newError(KindUnsupportedAlgorithm, fmt.Sprintf("unsupported private key type %T", privateKey), nil)
	}
}

// loadVerifier is loadSigner's verification-side counterpart.
func loadVerifier(publicKey crypto.PublicKey) (sigstoresig.Verifier, crypto.Hash, error) {
	switch key := publicKey.(type) {
	case *ecdsa.PublicKey:
		hf := ecdsaHashFunc(key.Curve.Params().BitSize)
		if hf == 0 {
			return nil, 0, newError(KindUnsupportedAlgorithm, fmt.Sprintf("unsupported ECDSA curve size: %d bits", key.Curve.Params().BitSize), nil)
		}
		verifier, err := sigstoresig.LoadECDSAVerifier(key, hf)
		if err != nil {
			return nil, 0, newError(KindInvalidKeySpec, "loading ecdsa verifier", err)
		}
		return verifier, hf, nil
	case *rsa.PublicKey:
		verifier, err := sigstoresig.LoadRSAPKCS1v15Verifier(key, crypto.SHA256)
		if err != nil {
			return nil, 0, newError(KindInvalidKeySpec, "loading rsa verifier", err)
		}
		return verifier, crypto.SHA256, nil
	case ed25519.PublicKey:
		verifier, err := sigstoresig.LoadED25519Verifier(key)
		if err != nil {
			return nil, 0, newError(KindInvalidKeySpec, "loading ed25519 verifier", err)
		}
		return verifier, crypto.Hash(0), nil
	default:
		return nil, 0, newError(KindUnsupportedAlgorithm, fmt.Sprintf("unsupported public key type %T", publicKey), nil)
	}
}

// ecdsaHashFunc selects the hash algorithm matching an ECDSA curve's bit
// size, per NIST's curve/hash pairing (P-256/SHA-256, P-384/SHA-384,
// P-521/SHA-512). It returns 0 for an unrecognized bit size.
func ecdsaHashFunc(bitSize int) crypto.Hash {
	switch bitSize {
	case 256:
		return crypto.SHA256
	case 384:
		return crypto.SHA384
	case 521:
		return crypto.SHA512
	default:
		return 0
	}
}

// signWithHasher signs digest with signer. ed25519 (hashFunc == 0) always
// signs digest's bytes as the message directly, since pure ed25519 has no
// internal hashing step to dispatch on. For ECDSA/RSA, a "raw" digest is
// passed through as the message so the signer hashes it internally exactly
// once; any other digest is treated as an already-computed hash and signed
// directly via options.WithDigest, bypassing the signer's internal hashing
// so the value is never hashed twice.
func signWithHasher(signer sigstoresig.Signer, hashFunc crypto.Hash, digest Digest) ([]byte, error) {
	if hashFunc == 0 || digest.Algorithm() == "raw" {
		return signer.SignMessage(bytes.NewReader(digest.Value()))
	}
	return signer.SignMessage(nil, sigopts.WithDigest(digest.Value()), sigopts.WithCryptoSignerOpts(hashFunc))
}

// verifyWithHasher is signWithHasher's verification-side counterpart.
func verifyWithHasher(verifier sigstoresig.Verifier, hashFunc crypto.Hash, digest Digest, signature []byte) error {
	if hashFunc == 0 || digest.Algorithm() == "raw" {
		return verifier.VerifySignature(bytes.NewReader(signature), bytes.NewReader(digest.Value()))
	}
	return verifier.VerifySignature(bytes.NewReader(signature), nil, sigopts.WithDigest(digest.Value()), sigopts.WithCryptoSignerOpts(hashFunc))
}
