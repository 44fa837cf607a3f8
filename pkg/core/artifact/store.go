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

// Package artifact brokers build outputs between jobs. Artifacts are keyed
// by (run, name); a name is written exactly once per run and readable by any
// downstream job.
package artifact

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// ArtifactNotFoundError means no artifact with that name has been published
// in the run, typically because the producing job has not completed
// successfully.
type ArtifactNotFoundError struct {
	RunID string
	Name  string
}

func (e *ArtifactNotFoundError) Error() string {
	return fmt.Sprintf("artifact %q not found in run %s", e.Name, e.RunID)
}

// DuplicateArtifactError rejects a concurrent or repeated publish under a
// name that already exists; artifacts are never silently overwritten.
type DuplicateArtifactError struct {
	RunID string
	Name  string
}

func (e *DuplicateArtifactError) Error() string {
	return fmt.Sprintf("artifact %q already published in run %s", e.Name, e.RunID)
}

// Store persists run artifacts. Publish records the producing job alongside
// the payload; consumers use Producer to refuse artifacts whose producer has
// not passed yet.
type Store interface {
	Publish(ctx context.Context, runID, name, producer string, payload io.Reader) error
	Fetch(ctx context.Context, runID, name string, dest io.Writer) error
	Producer(ctx context.Context, runID, name string) (string, error)
	List(ctx context.Context, runID string) ([]string, error)
}

// keyLocks serializes operations per (run, name) key so duplicate detection
// and the write are atomic with respect to concurrent publishers.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: map[string]*sync.Mutex{}}
}

func (k *keyLocks) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	return l
}

func artifactKey(runID, name string) string {
	return fmt.Sprintf("%s/%s", runID, name)
}
