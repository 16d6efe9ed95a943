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
	"os"
	"path/filepath"
)

// Store is the persistent local TUF metadata directory: the most recently
// trusted root/timestamp/snapshot/targets files and downloaded target
// files under targets/, keyed by name. It is single-writer; callers sharing
// a Store across signer instances must serialize refreshes externally (a
// file lock, in the reference deployment).
type Store struct {
	dir string
}

// OpenStore returns a Store rooted at dir, creating it and its targets/
// subdirectory if absent.
func OpenStore(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, "targets"), 0o755); err != nil {
		return nil, wrapError(KindMalformedMetadata, "store", "creating local store directory", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) rolePath(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) targetPath(name string) string {
	return filepath.Join(s.dir, "targets", name)
}

// ReadRole returns the bytes of a locally cached role file, or nil with no
// error if the file has never been written.
func (s *Store) ReadRole(name string) ([]byte, error) {
	b, err := os.ReadFile(s.rolePath(name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError(KindMalformedMetadata, "store", "reading cached "+name, err)
	}
	return b, nil
}

// WriteRole atomically replaces a role file: it writes to a temp file in
// the same directory and renames over the destination, so a crash or
// cancellation mid-write leaves the previously trusted file intact.
func (s *Store) WriteRole(name string, data []byte) error {
	return atomicWrite(s.rolePath(name), data)
}

// ReadTarget returns the cached bytes of a previously fetched target, or
// nil with no error if it has not been fetched.
func (s *Store) ReadTarget(name string) ([]byte, error) {
	b, err := os.ReadFile(s.targetPath(name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError(KindMalformedMetadata, "store", "reading cached target "+name, err)
	}
	return b, nil
}

// WriteTarget atomically caches a fetched target's bytes.
func (s *Store) WriteTarget(name string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.targetPath(name)), 0o755); err != nil {
		return wrapError(KindMalformedMetadata, "store", "creating target directory", err)
	}
	return atomicWrite(s.targetPath(name), data)
}

func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return wrapError(KindMalformedMetadata, "store", "writing temp file for "+path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return wrapError(KindMalformedMetadata, "store", "renaming temp file into place for "+path, err)
	}
	return nil
}
