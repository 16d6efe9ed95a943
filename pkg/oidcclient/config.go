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

// FlowKind selects how an identity token is obtained.
type FlowKind string

const (
	FlowBrowserInteractive FlowKind = "browser-interactive"
	// FlowDeviceCode names the device-code flow kind but has no distinct
	// implementation: Client.Obtain has no device-code UI to drive, so a
	// Config with this Flow falls through to the same local-callback-server
	// interactive flow as FlowBrowserInteractive.
	FlowDeviceCode FlowKind = "device-code"
	FlowAmbient    FlowKind = "ambient"
	FlowOutOfBand  FlowKind = "oob"
)

// DefaultClientID is used when Config.ClientID is empty.
const DefaultClientID = "sigstore"

// Config is the OIDC client's typed configuration record: issuer URL,
// client-id, and flow kind, per the "small typed configuration record, not
// a fluent builder" design guidance.
type Config struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	Flow         FlowKind

	// IdentityToken, when set, is used verbatim and no flow runs.
	IdentityToken string
}

// PublicGoodConfig returns the well-known public-good Sigstore OIDC issuer
// configuration with an interactive browser flow.
func PublicGoodConfig() Config {
	return Config{
		IssuerURL: "https://oauth2.sigstore.dev/auth",
		ClientID:  DefaultClientID,
		Flow:      FlowBrowserInteractive,
	}
}

// StagingConfig returns the staging Sigstore OIDC issuer configuration.
func StagingConfig() Config {
	return Config{
		IssuerURL: "https://oauth2.sigstage.dev/auth",
		ClientID:  DefaultClientID,
		Flow:      FlowBrowserInteractive,
	}
}
