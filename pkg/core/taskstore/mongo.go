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

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rudderci/rudder/pkg/core/repository/models"
	"github.com/rudderci/rudder/pkg/core/repository/mongodb"
	"github.com/rudderci/rudder/pkg/types"
)

type mongoStore struct {
	coll *mongodb.WorkflowTaskColl
}

func NewMongoStore(ctx context.Context) (Store, error) {
	coll := mongodb.NewWorkflowTaskColl()
	if err := coll.EnsureIndex(ctx); err != nil {
		return nil, err
	}
	return &mongoStore{coll: coll}, nil
}

func (s *mongoStore) Create(ctx context.Context, task *types.WorkflowTask) error {
	return s.coll.Create(ctx, &models.WorkflowTask{WorkflowTask: *task})
}

func (s *mongoStore) Update(ctx context.Context, task *types.WorkflowTask) error {
	return s.coll.Update(ctx, &models.WorkflowTask{WorkflowTask: *task})
}

func (s *mongoStore) Find(ctx context.Context, runID string) (*types.WorkflowTask, error) {
	task, err := s.coll.Find(ctx, runID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	result := task.WorkflowTask
	return &result, nil
}

func (s *mongoStore) List(ctx context.Context, workflowName string, limit int) ([]*types.WorkflowTask, error) {
	tasks, err := s.coll.List(ctx, &mongodb.ListWorkflowTaskOption{WorkflowName: workflowName, Limit: limit})
	if err != nil {
		return nil, err
	}

	resp := make([]*types.WorkflowTask, 0, len(tasks))
	for _, task := range tasks {
		result := task.WorkflowTask
		resp = append(resp, &result)
	}
	return resp, nil
}

func (s *mongoStore) NextTaskID(ctx context.Context, workflowName string) (int64, error) {
	return s.coll.NextTaskID(ctx, workflowName)
}
