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

package workflowcontroller

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/rudderci/rudder/pkg/config"
	"github.com/rudderci/rudder/pkg/core/artifact"
	"github.com/rudderci/rudder/pkg/core/executor"
	"github.com/rudderci/rudder/pkg/core/secret"
	"github.com/rudderci/rudder/pkg/core/taskstore"
	"github.com/rudderci/rudder/pkg/core/workflow"
	"github.com/rudderci/rudder/pkg/core/workflowcontroller/jobcontroller"
	"github.com/rudderci/rudder/pkg/types"
)

type testRun struct {
	task  *types.WorkflowTask
	store taskstore.Store
	ctl   *workflowCtl
}

func newTestRun(t *testing.T, doc string) *testRun {
	t.Helper()

	spec, err := workflow.ParseWorkflowSpec([]byte(doc))
	assert.NoError(t, err)

	graph, err := workflow.BuildRunGraph(spec)
	assert.NoError(t, err)

	jobs, err := jobcontroller.BuildJobTasks(spec)
	assert.NoError(t, err)

	broker, err := secret.NewBroker(spec.Secrets)
	assert.NoError(t, err)

	artifacts, err := artifact.NewFsStore(t.TempDir())
	assert.NoError(t, err)

	task := &types.WorkflowTask{
		RunID:         "test-run-" + t.Name(),
		WorkflowName:  spec.Name,
		TaskID:        1,
		Status:        config.StatusPending,
		FailFast:      spec.FailFast,
		GlobalContext: map[string]string{},
		Jobs:          jobs,
		CreateTime:    time.Now().Unix(),
	}

	store := NewTestStore(t)
	assert.NoError(t, store.Create(context.Background(), task))

	deps := &jobcontroller.RunDeps{
		Executor:      executor.NewLocalExecutor(),
		Artifacts:     artifacts,
		Secrets:       broker,
		Env:           spec.Env,
		WorkspaceRoot: t.TempDir(),
		ShellPath:     "/bin/bash",
	}

	return &testRun{
		task:  task,
		store: store,
		ctl:   NewWorkflowController(task, graph, deps, store, zap.NewNop().Sugar()),
	}
}

func NewTestStore(t *testing.T) taskstore.Store {
	t.Helper()
	return taskstore.NewMemoryStore(time.Hour)
}

func (r *testRun) job(name string) *types.JobTask {
	for _, job := range r.task.Jobs {
		if job.Name == name {
			return job
		}
	}
	return nil
}

func TestRunLinearPipelinePasses(t *testing.T) {
	run := newTestRun(t, `
name: linear
jobs:
  - name: build
    steps:
      - name: publish-image
        type: action
        outputs: [image]
        spec:
          action: core/set-output
          inputs:
            name: image
            value: registry/app:1
  - name: deploy
    needs: [build]
    if: 'output("build", "image") == "registry/app:1"'
    steps:
      - name: announce
        type: action
        spec:
          action: core/print
          inputs:
            message: deploying
`)

	run.ctl.Run(context.Background(), 2)

	assert.Equal(t, config.StatusPassed, run.task.Status)
	assert.Equal(t, config.StatusPassed, run.job("build").Status)
	assert.Equal(t, config.StatusPassed, run.job("deploy").Status)
	assert.Equal(t, "registry/app:1", run.job("build").Outputs["image"])
	assert.Equal(t, "passed", run.task.GlobalContext["job.build.status"])
	assert.Equal(t, "registry/app:1", run.task.GlobalContext["job.build.outputs.image"])

	stored, err := run.store.Find(context.Background(), run.task.RunID)
	assert.NoError(t, err)
	assert.Equal(t, config.StatusPassed, stored.Status)
	assert.NotZero(t, stored.EndTime)
}

func TestRunFailureSkipsDependentsOnly(t *testing.T) {
	run := newTestRun(t, `
name: branches
jobs:
  - name: broken
    steps:
      - name: explode
        type: action
        spec:
          action: core/does-not-exist
  - name: downstream
    needs: [broken]
    steps:
      - name: never
        type: action
        spec:
          action: core/print
  - name: indirect
    needs: [downstream]
    steps:
      - name: never
        type: action
        spec:
          action: core/print
  - name: independent
    steps:
      - name: fine
        type: action
        spec:
          action: core/print
          inputs:
            message: still here
`)

	run.ctl.Run(context.Background(), 2)

	assert.Equal(t, config.StatusFailed, run.task.Status)
	assert.Equal(t, config.StatusFailed, run.job("broken").Status)
	assert.Equal(t, config.StatusSkipped, run.job("downstream").Status)
	assert.Contains(t, run.job("downstream").Error, "broken")
	assert.Equal(t, config.StatusSkipped, run.job("indirect").Status)
	assert.Contains(t, run.job("indirect").Error, "downstream")
	assert.Equal(t, config.StatusPassed, run.job("independent").Status)
}

func TestRunOnDependencyFailure(t *testing.T) {
	run := newTestRun(t, `
name: cleanup-anyway
jobs:
  - name: broken
    steps:
      - name: explode
        type: action
        spec:
          action: core/does-not-exist
  - name: cleanup
    needs: [broken]
    run_on_dependency_failure: true
    steps:
      - name: sweep
        type: action
        spec:
          action: core/print
          inputs:
            message: cleaning up
`)

	run.ctl.Run(context.Background(), 2)

	assert.Equal(t, config.StatusFailed, run.task.Status)
	assert.Equal(t, config.StatusPassed, run.job("cleanup").Status)
}

func TestRunFailFastCancelsRunningJobs(t *testing.T) {
	run := newTestRun(t, `
name: fail-fast
fail_fast: true
jobs:
  - name: slow
    steps:
      - name: nap
        type: action
        spec:
          action: core/sleep
          inputs:
            seconds: "30"
  - name: broken
    steps:
      - name: explode
        type: action
        spec:
          action: core/does-not-exist
`)

	start := time.Now()
	run.ctl.Run(context.Background(), 2)

	assert.Less(t, time.Since(start), 10*time.Second)
	assert.Equal(t, config.StatusFailed, run.job("broken").Status)
	assert.Equal(t, config.StatusCancelled, run.job("slow").Status)
	// the run reports the failure that caused the abort
	assert.Equal(t, config.StatusFailed, run.task.Status)
}

func TestRunConditionSkipsJob(t *testing.T) {
	run := newTestRun(t, `
name: conditional
env:
  TARGET: staging
jobs:
  - name: deploy-prod
    if: 'env("TARGET") == "production"'
    steps:
      - name: never
        type: action
        spec:
          action: core/print
  - name: deploy-staging
    if: 'env("TARGET") == "staging"'
    steps:
      - name: go
        type: action
        spec:
          action: core/print
          inputs:
            message: staging it is
`)

	run.ctl.Run(context.Background(), 2)

	assert.Equal(t, config.StatusPassed, run.task.Status)
	assert.Equal(t, config.StatusSkipped, run.job("deploy-prod").Status)
	assert.Equal(t, config.StatusPassed, run.job("deploy-staging").Status)
}

func TestRunIgnoreErrorPolicyMakesJobUnstable(t *testing.T) {
	run := newTestRun(t, `
name: unstable
jobs:
  - name: flaky
    error_policy:
      policy: ignore_error
    steps:
      - name: explode
        type: action
        spec:
          action: core/does-not-exist
  - name: after
    needs: [flaky]
    steps:
      - name: go
        type: action
        spec:
          action: core/print
`)

	run.ctl.Run(context.Background(), 2)

	assert.Equal(t, config.StatusUnstable, run.job("flaky").Status)
	// unstable dependencies do not block dependents, and the run passes
	assert.Equal(t, config.StatusPassed, run.job("after").Status)
	assert.Equal(t, config.StatusPassed, run.task.Status)
}

func TestCancelWorkflowTask(t *testing.T) {
	run := newTestRun(t, `
name: cancellable
jobs:
  - name: slow
    steps:
      - name: nap
        type: action
        spec:
          action: core/sleep
          inputs:
            seconds: "30"
`)

	doneCh := make(chan struct{})
	go func() {
		run.ctl.Run(context.Background(), 1)
		close(doneCh)
	}()

	logger := zap.NewNop().Sugar()
	assert.Eventually(t, func() bool {
		stored, err := run.store.Find(context.Background(), run.task.RunID)
		return err == nil && stored.Status == config.StatusRunning
	}, 5*time.Second, 20*time.Millisecond)

	// the cancel handle registers right after the task turns running
	assert.Eventually(t, func() bool {
		return CancelWorkflowTask(context.Background(), "tester", run.task.RunID, run.store, logger) == nil
	}, 5*time.Second, 20*time.Millisecond)

	select {
	case <-doneCh:
	case <-time.After(10 * time.Second):
		t.Fatal("run did not stop after cancellation")
	}

	assert.Equal(t, config.StatusCancelled, run.task.Status)
	assert.Equal(t, config.StatusCancelled, run.job("slow").Status)

	stored, err := run.store.Find(context.Background(), run.task.RunID)
	assert.NoError(t, err)
	assert.Equal(t, "tester", stored.TaskRevoker)
	assert.Equal(t, config.StatusCancelled, stored.Status)
}

func TestCancelFinishedRunIsRejected(t *testing.T) {
	run := newTestRun(t, `
name: quick
jobs:
  - name: fast
    steps:
      - name: go
        type: action
        spec:
          action: core/print
`)

	run.ctl.Run(context.Background(), 1)
	assert.Equal(t, config.StatusPassed, run.task.Status)

	err := CancelWorkflowTask(context.Background(), "tester", run.task.RunID, run.store, zap.NewNop().Sugar())
	assert.Error(t, err)
}

func TestRunParallelJobsKeepConsistentState(t *testing.T) {
	// five independent jobs publish outputs concurrently while a fan-in job
	// waits on all of them; state transitions and acks from every goroutine
	// must land intact in the global context and the store
	run := newTestRun(t, `
name: fan-in
jobs:
  - name: p1
    steps:
      - name: emit
        type: action
        outputs: [tag]
        spec: {action: core/set-output, inputs: {name: tag, value: v1}}
  - name: p2
    steps:
      - name: emit
        type: action
        outputs: [tag]
        spec: {action: core/set-output, inputs: {name: tag, value: v2}}
  - name: p3
    steps:
      - name: emit
        type: action
        outputs: [tag]
        spec: {action: core/set-output, inputs: {name: tag, value: v3}}
  - name: p4
    steps:
      - name: emit
        type: action
        outputs: [tag]
        spec: {action: core/set-output, inputs: {name: tag, value: v4}}
  - name: p5
    steps:
      - name: emit
        type: action
        outputs: [tag]
        spec: {action: core/set-output, inputs: {name: tag, value: v5}}
  - name: gather
    needs: [p1, p2, p3, p4, p5]
    if: 'output("p1", "tag") == "v1"'
    steps:
      - name: done
        type: action
        spec: {action: core/print, inputs: {message: all in}}
`)

	run.ctl.Run(context.Background(), 4)

	assert.Equal(t, config.StatusPassed, run.task.Status)
	for i := 1; i <= 5; i++ {
		name := fmt.Sprintf("p%d", i)
		assert.Equal(t, config.StatusPassed, run.job(name).Status)
		assert.Equal(t, fmt.Sprintf("v%d", i), run.task.GlobalContext["job."+name+".outputs.tag"])
	}
	assert.Equal(t, config.StatusPassed, run.job("gather").Status)

	stored, err := run.store.Find(context.Background(), run.task.RunID)
	assert.NoError(t, err)
	assert.Equal(t, config.StatusPassed, stored.Status)
	for i := 1; i <= 5; i++ {
		assert.Equal(t, fmt.Sprintf("v%d", i), stored.GlobalContext[fmt.Sprintf("job.p%d.outputs.tag", i)])
	}
}

func TestRunConcurrencyIsBounded(t *testing.T) {
	run := newTestRun(t, `
name: bounded
jobs:
  - name: a
    steps:
      - name: nap
        type: action
        spec: {action: core/sleep, inputs: {seconds: "1"}}
  - name: b
    steps:
      - name: nap
        type: action
        spec: {action: core/sleep, inputs: {seconds: "1"}}
  - name: c
    steps:
      - name: nap
        type: action
        spec: {action: core/sleep, inputs: {seconds: "1"}}
`)

	start := time.Now()
	run.ctl.Run(context.Background(), 1)

	// three one-second jobs through a single slot cannot overlap
	assert.GreaterOrEqual(t, time.Since(start), 3*time.Second)
	assert.Equal(t, config.StatusPassed, run.task.Status)
}
