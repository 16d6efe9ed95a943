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

// Package retry provides bounded exponential-backoff retry for the
// network-bound, retryable steps of the signing pipeline (TUF metadata
// fetches, CA submission, transparency-log submission). Per the error
// taxonomy, only IOError-classified failures and TransparencyLogError's
// SubmissionFailed subkind with a 5xx response are retryable; every other
// error kind is surfaced on first occurrence.
package retry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"

	"github.com/cenkalti/backoff/v5"
)

// MaxAttempts bounds the number of attempts to the initial try plus at
// most two retries.
const MaxAttempts = 3

// IsRetryable reports whether err represents a transient network failure:
// a timeout, a connection-level error, or (via StatusError) an HTTP 5xx.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500 && statusErr.StatusCode < 600
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	return false
}

// StatusError wraps a non-2xx HTTP response so callers can classify it
// without threading *http.Response through the call chain.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return "unexpected HTTP status " + http.StatusText(e.StatusCode)
}

// Do runs fn up to MaxAttempts times with exponential backoff, retrying
// only while IsRetryable(err) holds. It returns the last error if every
// attempt fails, or nil on the first success.
func Do(ctx context.Context, fn func(ctx context.Context) error) error {
	operation := func() (struct{}, error) {
		err := fn(ctx)
		if err == nil {
			return struct{}{}, nil
		}
		if !IsRetryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(MaxAttempts),
	)
	return err
}
