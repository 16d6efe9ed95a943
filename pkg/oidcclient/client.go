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

	"github.com/sigstore/sigstore/pkg/oauthflow"
)

// Client obtains identity tokens according to a Config's selected flow.
type Client struct {
	cfg Config
}

// New builds a Client bound to cfg.
func New(cfg Config) *Client {
	return &Client{cfg: cfg}
}

// Obtain returns an identity token per the configured flow: an explicit
// IdentityToken if set, an ambient environment token, an out-of-band
// device/browser exchange, or the default interactive flow with a local
// callback server. FlowDeviceCode has no dedicated implementation and also
// resolves to the interactive flow; see FlowDeviceCode's doc comment.
func (c *Client) Obtain(ctx context.Context) (Token, error) {
	if c.cfg.IdentityToken != "" {
		subject, err := unverifiedSubject(c.cfg.IdentityToken)
		if err != nil {
			return Token{}, err
		}
		return Token{RawToken: c.cfg.IdentityToken, Subject: subject}, nil
	}

	switch c.cfg.Flow {
	case FlowAmbient:
		return c.obtainAmbient()
	case FlowOutOfBand:
		return c.obtainInteractive(&oobTokenGetter{})
	default:
		return c.obtainInteractive(oauthflow.DefaultIDTokenGetter)
	}
}

func (c *Client) obtainAmbient() (Token, error) {
	raw := ambientToken()
	if raw == "" {
		return Token{}, wrapError("ambient flow requested but no SIGSTORE_ID_TOKEN or ACTIONS_ID_TOKEN_REQUEST_TOKEN found", nil)
	}
	subject, err := unverifiedSubject(raw)
	if err != nil {
		return Token{}, err
	}
	return Token{RawToken: raw, Subject: subject}, nil
}

func (c *Client) obtainInteractive(getter oauthflow.TokenGetter) (Token, error) {
	clientID := c.cfg.ClientID
	if clientID == "" {
		clientID = DefaultClientID
	}
	token, err := oauthflow.OIDConnect(c.cfg.IssuerURL, clientID, c.cfg.ClientSecret, "", getter)
	if err != nil {
		return Token{}, wrapError("running OIDC flow", err)
	}
	return Token{RawToken: token.RawString, Subject: token.Subject}, nil
}
