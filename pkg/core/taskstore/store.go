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

// Package taskstore persists run reports. The workflow controller writes
// through its ack callback; readers (API, CLI) only ever see store copies.
package taskstore

import (
	"context"
	"errors"

	"github.com/rudderci/rudder/pkg/types"
)

var ErrTaskNotFound = errors.New("workflow task not found")

type Store interface {
	Create(ctx context.Context, task *types.WorkflowTask) error
	Update(ctx context.Context, task *types.WorkflowTask) error
	Find(ctx context.Context, runID string) (*types.WorkflowTask, error)
	List(ctx context.Context, workflowName string, limit int) ([]*types.WorkflowTask, error)
	// NextTaskID hands out the per-workflow sequence number shown to users.
	NextTaskID(ctx context.Context, workflowName string) (int64, error)
}
