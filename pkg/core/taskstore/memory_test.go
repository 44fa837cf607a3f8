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

package taskstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rudderci/rudder/pkg/config"
	"github.com/rudderci/rudder/pkg/types"
)

func TestMemoryStoreCreateAndFind(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	task := &types.WorkflowTask{
		RunID:        "run-1",
		WorkflowName: "release",
		Status:       config.StatusRunning,
	}
	assert.NoError(t, store.Create(ctx, task))

	found, err := store.Find(ctx, "run-1")
	assert.NoError(t, err)
	assert.Equal(t, "release", found.WorkflowName)

	// the store hands out copies, not the live task
	found.Status = config.StatusFailed
	again, err := store.Find(ctx, "run-1")
	assert.NoError(t, err)
	assert.Equal(t, config.StatusRunning, again.Status)
}

func TestMemoryStoreFindUnknownRun(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	_, err := store.Find(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestMemoryStoreUpdate(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	task := &types.WorkflowTask{RunID: "run-1", WorkflowName: "w", Status: config.StatusRunning}
	assert.NoError(t, store.Create(ctx, task))

	task.Status = config.StatusPassed
	assert.NoError(t, store.Update(ctx, task))

	found, err := store.Find(ctx, "run-1")
	assert.NoError(t, err)
	assert.Equal(t, config.StatusPassed, found.Status)
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	assert.NoError(t, store.Create(ctx, &types.WorkflowTask{RunID: "run-1", WorkflowName: "w", CreateTime: 100}))
	assert.NoError(t, store.Create(ctx, &types.WorkflowTask{RunID: "run-2", WorkflowName: "w", CreateTime: 300}))
	assert.NoError(t, store.Create(ctx, &types.WorkflowTask{RunID: "run-3", WorkflowName: "w", CreateTime: 200}))
	assert.NoError(t, store.Create(ctx, &types.WorkflowTask{RunID: "run-4", WorkflowName: "other", CreateTime: 400}))

	tasks, err := store.List(ctx, "w", 2)
	assert.NoError(t, err)
	assert.Len(t, tasks, 2)
	assert.Equal(t, "run-2", tasks[0].RunID)
	assert.Equal(t, "run-3", tasks[1].RunID)
}

func TestMemoryStoreNextTaskIDPerWorkflow(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	id, err := store.NextTaskID(ctx, "a")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), id)

	id, err = store.NextTaskID(ctx, "a")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), id)

	id, err = store.NextTaskID(ctx, "b")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), id)
}
