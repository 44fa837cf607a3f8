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
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFsStoreRoundTrip(t *testing.T) {
	store, err := NewFsStore(t.TempDir())
	assert.NoError(t, err)

	ctx := context.Background()
	err = store.Publish(ctx, "run-1", "report.xml", "test", strings.NewReader("<suite/>"))
	assert.NoError(t, err)

	var out bytes.Buffer
	err = store.Fetch(ctx, "run-1", "report.xml", &out)
	assert.NoError(t, err)
	assert.Equal(t, "<suite/>", out.String())
}

func TestFsStoreDuplicatePublish(t *testing.T) {
	store, err := NewFsStore(t.TempDir())
	assert.NoError(t, err)

	ctx := context.Background()
	assert.NoError(t, store.Publish(ctx, "run-1", "bin", "test", strings.NewReader("v1")))

	err = store.Publish(ctx, "run-1", "bin", "test", strings.NewReader("v2"))
	assert.Error(t, err)

	var duplicate *DuplicateArtifactError
	assert.True(t, errors.As(err, &duplicate))
	assert.Equal(t, "bin", duplicate.Name)

	// the first payload survives
	var out bytes.Buffer
	assert.NoError(t, store.Fetch(ctx, "run-1", "bin", &out))
	assert.Equal(t, "v1", out.String())
}

func TestFsStoreSameNameDifferentRuns(t *testing.T) {
	store, err := NewFsStore(t.TempDir())
	assert.NoError(t, err)

	ctx := context.Background()
	assert.NoError(t, store.Publish(ctx, "run-1", "bin", "test", strings.NewReader("first")))
	assert.NoError(t, store.Publish(ctx, "run-2", "bin", "test", strings.NewReader("second")))

	var out bytes.Buffer
	assert.NoError(t, store.Fetch(ctx, "run-2", "bin", &out))
	assert.Equal(t, "second", out.String())
}

func TestFsStoreFetchUnknownArtifact(t *testing.T) {
	store, err := NewFsStore(t.TempDir())
	assert.NoError(t, err)

	var out bytes.Buffer
	err = store.Fetch(context.Background(), "run-1", "ghost", &out)
	assert.Error(t, err)

	var notFound *ArtifactNotFoundError
	assert.True(t, errors.As(err, &notFound))
	assert.Equal(t, "ghost", notFound.Name)
}

func TestFsStoreProducer(t *testing.T) {
	store, err := NewFsStore(t.TempDir())
	assert.NoError(t, err)

	ctx := context.Background()
	assert.NoError(t, store.Publish(ctx, "run-1", "image.tar", "build", strings.NewReader("layers")))

	producer, err := store.Producer(ctx, "run-1", "image.tar")
	assert.NoError(t, err)
	assert.Equal(t, "build", producer)

	_, err = store.Producer(ctx, "run-1", "ghost")
	var notFound *ArtifactNotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestFsStoreList(t *testing.T) {
	store, err := NewFsStore(t.TempDir())
	assert.NoError(t, err)

	ctx := context.Background()
	names, err := store.List(ctx, "run-1")
	assert.NoError(t, err)
	assert.Empty(t, names)

	assert.NoError(t, store.Publish(ctx, "run-1", "b.tar", "test", strings.NewReader("b")))
	assert.NoError(t, store.Publish(ctx, "run-1", "a.tar", "test", strings.NewReader("a")))

	names, err = store.List(ctx, "run-1")
	assert.NoError(t, err)
	assert.Equal(t, []string{"a.tar", "b.tar"}, names)
}
