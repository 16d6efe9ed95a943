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

package sign

import (
	"net/http"

	"github.com/sigstore/keyless-signing/pkg/logging"
	"github.com/sigstore/keyless-signing/pkg/oidcclient"
)

// Config is the signing orchestrator's typed configuration record: the
// remote endpoints for TUF, the CA, and the transparency log, plus the
// OIDC flow used to obtain an identity token. Callers copy a preset
// (Default or StagingDefaults) and override individual fields rather
// than building one up through chained setters.
type Config struct {
	TUFRootURL     string
	TUFInitialRoot []byte
	TUFCacheDir    string

	FulcioURL string
	RekorURL  string

	OIDC       oidcclient.Config
	RequireSCT bool

	HTTPClient *http.Client
	Logger     logging.Logger
}

// Default returns the well-known public-good Sigstore instance endpoints:
// the production Fulcio CA, the production Rekor transparency log, the
// production TUF repository, and an interactive-browser OIDC flow against
// the public-good issuer.
func Default() Config {
	return Config{
		TUFRootURL: "https://tuf-repo-cdn.sigstore.dev",
		FulcioURL:  "https://fulcio.sigstore.dev",
		RekorURL:   "https://rekor.sigstore.dev",
		OIDC:       oidcclient.PublicGoodConfig(),
		RequireSCT: false,
	}
}

// StagingDefaults mirrors Default for the Sigstore staging instance, used
// for integration testing against non-production infrastructure.
func StagingDefaults() Config {
	return Config{
		TUFRootURL: "https://tuf-repo-cdn.sigstage.dev",
		FulcioURL:  "https://fulcio.sigstage.dev",
		RekorURL:   "https://rekor.sigstage.dev",
		OIDC:       oidcclient.StagingConfig(),
		RequireSCT: false,
	}
}
