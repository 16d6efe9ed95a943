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

package tuf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sigstore/keyless-signing/internal/retry"
)

// Fetcher retrieves raw bytes for a role or target file from the remote
// repository. The default implementation wraps an *http.Client; tests
// point it at an httptest.Server.
type Fetcher interface {
	// Fetch retrieves the byte content addressed by path relative to the
	// repository base URL. A missing file is reported as a
	// *retry.StatusError with StatusCode 404, which the caller
	// distinguishes with IsNotFound.
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// HTTPFetcher is the default Fetcher, issuing GET requests against a
// repository base URL.
type HTTPFetcher struct {
	BaseURL   string
	Client    *http.Client
	UserAgent string
}

// NewHTTPFetcher builds a Fetcher rooted at baseURL using client, or
// http.DefaultClient if nil.
func NewHTTPFetcher(baseURL string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{BaseURL: baseURL, Client: client, UserAgent: "keyless-signing-tuf-client"}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	url := f.BaseURL + "/" + path
	var body []byte
	err := retry.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", f.UserAgent)
		resp, err := f.Client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return &retry.StatusError{StatusCode: resp.StatusCode}
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			return &retry.StatusError{StatusCode: resp.StatusCode, Body: string(b)}
		}
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// IsNotFound reports whether err is the fetcher's 404 signal.
func IsNotFound(err error) bool {
	var statusErr *retry.StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.StatusCode == http.StatusNotFound
}

func rootFileName(version int64) string {
	return fmt.Sprintf("%d.root.json", version)
}
