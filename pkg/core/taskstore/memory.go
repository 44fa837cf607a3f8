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
	"encoding/json"
	"sort"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	"github.com/rudderci/rudder/pkg/types"
)

// memoryStore keeps run reports in a TTL cache. Running tasks never expire;
// finished ones are retained for the configured window, which is the
// in-memory counterpart of archiving old tasks out of the database.
type memoryStore struct {
	retention time.Duration
	cache     *gocache.Cache

	mu       sync.Mutex
	sequence map[string]int64
}

func NewMemoryStore(retention time.Duration) Store {
	return &memoryStore{
		retention: retention,
		cache:     gocache.New(gocache.NoExpiration, 10*time.Minute),
		sequence:  map[string]int64{},
	}
}

// clone keeps store state isolated from the controller's live task, which
// mutates concurrently with readers.
func clone(task *types.WorkflowTask) (*types.WorkflowTask, error) {
	b, err := json.Marshal(task)
	if err != nil {
		return nil, errors.Wrap(err, "encode workflow task")
	}
	copied := &types.WorkflowTask{}
	if err := json.Unmarshal(b, copied); err != nil {
		return nil, errors.Wrap(err, "decode workflow task")
	}
	return copied, nil
}

func (s *memoryStore) set(task *types.WorkflowTask) error {
	copied, err := clone(task)
	if err != nil {
		return err
	}

	expiration := gocache.NoExpiration
	if copied.Status.Done() {
		expiration = s.retention
	}
	s.cache.Set(copied.RunID, copied, expiration)
	return nil
}

func (s *memoryStore) Create(ctx context.Context, task *types.WorkflowTask) error {
	return s.set(task)
}

func (s *memoryStore) Update(ctx context.Context, task *types.WorkflowTask) error {
	return s.set(task)
}

func (s *memoryStore) Find(ctx context.Context, runID string) (*types.WorkflowTask, error) {
	v, ok := s.cache.Get(runID)
	if !ok {
		return nil, ErrTaskNotFound
	}
	return clone(v.(*types.WorkflowTask))
}

func (s *memoryStore) List(ctx context.Context, workflowName string, limit int) ([]*types.WorkflowTask, error) {
	tasks := []*types.WorkflowTask{}
	for _, item := range s.cache.Items() {
		task := item.Object.(*types.WorkflowTask)
		if workflowName != "" && task.WorkflowName != workflowName {
			continue
		}
		copied, err := clone(task)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, copied)
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreateTime > tasks[j].CreateTime
	})
	if limit > 0 && len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

func (s *memoryStore) NextTaskID(ctx context.Context, workflowName string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequence[workflowName]++
	return s.sequence[workflowName], nil
}
