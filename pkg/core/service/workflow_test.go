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

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/rudderci/rudder/pkg/config"
	"github.com/rudderci/rudder/pkg/core/artifact"
	"github.com/rudderci/rudder/pkg/core/executor"
	"github.com/rudderci/rudder/pkg/core/taskstore"
	"github.com/rudderci/rudder/pkg/core/workflow"
)

func testService(t *testing.T) *WorkflowService {
	t.Helper()

	artifacts, err := artifact.NewFsStore(t.TempDir())
	assert.NoError(t, err)

	return NewWorkflowService(&Options{
		Store:         taskstore.NewMemoryStore(time.Hour),
		Artifacts:     artifacts,
		Executor:      executor.NewLocalExecutor(),
		WorkspaceRoot: t.TempDir(),
	}, zap.NewNop().Sugar())
}

const testWorkflowDoc = `
name: pipeline
jobs:
  - name: build
    steps:
      - name: emit
        type: action
        outputs: [artifact]
        spec:
          action: core/set-output
          inputs:
            name: artifact
            value: app.tar
  - name: verify
    needs: [build]
    steps:
      - name: check
        type: action
        spec:
          action: core/print
          inputs:
            message: verifying
`

func TestCreateWorkflowTaskAssignsIdentifiers(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	spec, err := workflow.ParseWorkflowSpec([]byte(testWorkflowDoc))
	assert.NoError(t, err)

	first, err := svc.CreateWorkflowTask(ctx, spec)
	assert.NoError(t, err)
	assert.NotEmpty(t, first.RunID)
	assert.Equal(t, int64(1), first.TaskID)
	assert.Equal(t, config.StatusPending, first.Status)
	assert.Len(t, first.Jobs, 2)

	second, err := svc.CreateWorkflowTask(ctx, spec)
	assert.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, int64(2), second.TaskID)
}

func TestCreateWorkflowTaskRejectsBrokenGraph(t *testing.T) {
	svc := testService(t)

	spec, err := workflow.ParseWorkflowSpec([]byte(`
name: cyclic
jobs:
  - name: a
    needs: [b]
    steps: [{name: s, type: action, spec: {action: core/print}}]
  - name: b
    needs: [a]
    steps: [{name: s, type: action, spec: {action: core/print}}]
`))
	assert.NoError(t, err)

	_, err = svc.CreateWorkflowTask(context.Background(), spec)
	assert.Error(t, err)
}

func TestRunWorkflowEndToEnd(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	spec, err := workflow.ParseWorkflowSpec([]byte(testWorkflowDoc))
	assert.NoError(t, err)

	task, err := svc.RunWorkflow(ctx, spec)
	assert.NoError(t, err)
	assert.Equal(t, config.StatusPassed, task.Status)
	assert.Equal(t, "app.tar", task.GlobalContext["job.build.outputs.artifact"])

	listed, err := svc.ListWorkflowTasks(ctx, "pipeline", 10)
	assert.NoError(t, err)
	assert.Len(t, listed, 1)
	assert.Equal(t, task.RunID, listed[0].RunID)
}

func TestRunWorkflowSecretResolutionFailureFailsRun(t *testing.T) {
	svc := testService(t)

	spec, err := workflow.ParseWorkflowSpec([]byte(`
name: secretive
secrets:
  - name: TOKEN
    from_env: RUDDER_TEST_NO_SUCH_VARIABLE
jobs:
  - name: build
    steps: [{name: s, type: action, spec: {action: core/print}}]
`))
	assert.NoError(t, err)

	task, err := svc.RunWorkflow(context.Background(), spec)
	assert.Error(t, err)
	assert.Equal(t, config.StatusFailed, task.Status)
	assert.Contains(t, task.Error, "TOKEN")

	// no job ever started
	for _, job := range task.Jobs {
		assert.Equal(t, config.StatusPending, job.Status)
	}
}
