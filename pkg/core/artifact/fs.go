/*
Copyright 2025 The Rudder Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package artifact

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// fsStore keeps artifacts as plain files under root/<runID>/<name>, with the
// producing job recorded under root/<runID>/.meta/<name>.
type fsStore struct {
	root  string
	locks *keyLocks
}

func NewFsStore(root string) (Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "create artifact root")
	}
	return &fsStore{root: root, locks: newKeyLocks()}, nil
}

func (s *fsStore) path(runID, name string) string {
	return filepath.Join(s.root, runID, name)
}

func (s *fsStore) metaPath(runID, name string) string {
	return filepath.Join(s.root, runID, ".meta", name)
}

func (s *fsStore) Publish(ctx context.Context, runID, name, producer string, payload io.Reader) error {
	lock := s.locks.get(artifactKey(runID, name))
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(filepath.Join(s.root, runID, ".meta"), 0o755); err != nil {
		return errors.Wrap(err, "create run artifact dir")
	}

	// O_EXCL makes the first publisher win even across engine processes
	// sharing the same root.
	f, err := os.OpenFile(s.path(runID, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return &DuplicateArtifactError{RunID: runID, Name: name}
		}
		return errors.Wrapf(err, "create artifact %s", name)
	}
	defer f.Close()

	if _, err := io.Copy(f, payload); err != nil {
		return errors.Wrapf(err, "write artifact %s", name)
	}
	if err := os.WriteFile(s.metaPath(runID, name), []byte(producer), 0o644); err != nil {
		return errors.Wrapf(err, "record producer of artifact %s", name)
	}
	return nil
}

func (s *fsStore) Producer(ctx context.Context, runID, name string) (string, error) {
	lock := s.locks.get(artifactKey(runID, name))
	lock.Lock()
	defer lock.Unlock()

	b, err := os.ReadFile(s.metaPath(runID, name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", &ArtifactNotFoundError{RunID: runID, Name: name}
		}
		return "", errors.Wrapf(err, "read producer of artifact %s", name)
	}
	return string(b), nil
}

func (s *fsStore) Fetch(ctx context.Context, runID, name string, dest io.Writer) error {
	lock := s.locks.get(artifactKey(runID, name))
	lock.Lock()
	defer lock.Unlock()

	f, err := os.Open(s.path(runID, name))
	if err != nil {
		if os.IsNotExist(err) {
			return &ArtifactNotFoundError{RunID: runID, Name: name}
		}
		return errors.Wrapf(err, "open artifact %s", name)
	}
	defer f.Close()

	if _, err := io.Copy(dest, f); err != nil {
		return errors.Wrapf(err, "read artifact %s", name)
	}
	return nil
}

func (s *fsStore) List(ctx context.Context, runID string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, runID))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.Wrap(err, "list artifacts")
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
