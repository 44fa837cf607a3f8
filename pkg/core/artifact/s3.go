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
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"

	s3tool "github.com/rudderci/rudder/pkg/tool/s3"
)

// s3Store keeps artifacts as objects under <prefix>/<runID>/<name>, with the
// producing job recorded under <prefix>/<runID>/.meta/<name>. The duplicate
// check is head-then-put under a per-key lock, which is safe for a single
// engine instance owning the bucket prefix.
type s3Store struct {
	client *s3tool.Client
	bucket string
	prefix string
	locks  *keyLocks
}

func NewS3Store(client *s3tool.Client, bucket, prefix string) (Store, error) {
	if err := client.ValidateBucket(bucket); err != nil {
		return nil, err
	}
	return &s3Store{client: client, bucket: bucket, prefix: prefix, locks: newKeyLocks()}, nil
}

func (s *s3Store) key(runID, name string) string {
	parts := []string{runID, name}
	if s.prefix != "" {
		parts = append([]string{strings.Trim(s.prefix, "/")}, parts...)
	}
	return strings.Join(parts, "/")
}

func (s *s3Store) metaKey(runID, name string) string {
	return s.key(runID, ".meta/"+name)
}

func (s *s3Store) Publish(ctx context.Context, runID, name, producer string, payload io.Reader) error {
	lock := s.locks.get(artifactKey(runID, name))
	lock.Lock()
	defer lock.Unlock()

	key := s.key(runID, name)
	exists, err := s.client.Exists(s.bucket, key)
	if err != nil {
		return errors.Wrapf(err, "check artifact %s", name)
	}
	if exists {
		return &DuplicateArtifactError{RunID: runID, Name: name}
	}

	data, err := io.ReadAll(payload)
	if err != nil {
		return errors.Wrapf(err, "read artifact payload %s", name)
	}
	if err := s.client.Upload(s.bucket, key, data); err != nil {
		return errors.Wrapf(err, "upload artifact %s", name)
	}
	if err := s.client.Upload(s.bucket, s.metaKey(runID, name), []byte(producer)); err != nil {
		return errors.Wrapf(err, "record producer of artifact %s", name)
	}
	return nil
}

func (s *s3Store) Producer(ctx context.Context, runID, name string) (string, error) {
	lock := s.locks.get(artifactKey(runID, name))
	lock.Lock()
	defer lock.Unlock()

	var buf bytes.Buffer
	found, err := s.client.Download(s.bucket, s.metaKey(runID, name), &buf)
	if err != nil {
		return "", errors.Wrapf(err, "read producer of artifact %s", name)
	}
	if !found {
		return "", &ArtifactNotFoundError{RunID: runID, Name: name}
	}
	return buf.String(), nil
}

func (s *s3Store) Fetch(ctx context.Context, runID, name string, dest io.Writer) error {
	lock := s.locks.get(artifactKey(runID, name))
	lock.Lock()
	defer lock.Unlock()

	found, err := s.client.Download(s.bucket, s.key(runID, name), dest)
	if err != nil {
		return errors.Wrapf(err, "download artifact %s", name)
	}
	if !found {
		return &ArtifactNotFoundError{RunID: runID, Name: name}
	}
	return nil
}

func (s *s3Store) List(ctx context.Context, runID string) ([]string, error) {
	runPrefix := s.key(runID, "")
	keys, err := s.client.ListPrefix(s.bucket, runPrefix)
	if err != nil {
		return nil, errors.Wrap(err, "list artifacts")
	}

	names := make([]string, 0, len(keys))
	for _, key := range keys {
		name := strings.TrimPrefix(key, runPrefix)
		// producer records live under .meta/ and are not artifacts
		if strings.Contains(name, "/") {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
