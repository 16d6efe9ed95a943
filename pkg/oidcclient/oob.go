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

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/sigstore/sigstore/pkg/cryptoutils"
	"github.com/sigstore/sigstore/pkg/oauthflow"
	"golang.org/x/oauth2"
)

// oobTokenGetter implements the out-of-band OAuth flow: it prints the
// authorization URL instead of launching a browser and reads the
// verification code from stdin, for environments with no local callback
// server (headless CI, remote shells).
type oobTokenGetter struct{}

func (o *oobTokenGetter) GetIDToken(p *oidc.Provider, cfg oauth2.Config) (*oauthflow.OIDCIDToken, error) {
	cfg.RedirectURL = "urn:ietf:wg:oauth:2.0:oob"

	pkce, err := oauthflow.NewPKCE(p)
	if err != nil {
		return nil, err
	}

	state := randomString(128)
	nonce := randomString(128)

	opts := append(pkce.AuthURLOpts(), oauth2.AccessTypeOnline, oidc.Nonce(nonce))
	authURL := cfg.AuthCodeURL(state, opts...)

	fmt.Println("Go to the following link in a browser:")
	fmt.Printf("\n\t%s\n\n", authURL)
	fmt.Print("Enter verification code: ")

	var code string
	if _, err := fmt.Scanln(&code); err != nil {
		return nil, fmt.Errorf("reading verification code: %w", err)
	}

	token, err := cfg.Exchange(context.Background(), code, append(pkce.TokenURLOpts(), oidc.Nonce(nonce))...)
	if err != nil {
		return nil, fmt.Errorf("exchanging code for token: %w", err)
	}

	idToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("id_token not present in token response")
	}

	verifier := p.Verifier(&oidc.Config{ClientID: cfg.ClientID})
	parsed, err := verifier.Verify(context.Background(), idToken)
	if err != nil {
		return nil, fmt.Errorf("verifying id token: %w", err)
	}
	if parsed.Nonce != nonce {
		return nil, errors.New("nonce mismatch")
	}
	if parsed.AccessTokenHash != "" {
		if err := parsed.VerifyAccessToken(token.AccessToken); err != nil {
			return nil, fmt.Errorf("verifying access token: %w", err)
		}
	}

	subject, err := oauthflow.SubjectFromToken(parsed)
	if err != nil {
		return nil, err
	}

	return &oauthflow.OIDCIDToken{RawString: idToken, Subject: subject}, nil
}

func randomString(length int) string {
	return cryptoutils.GenerateRandomURLSafeString(uint(length))
}
