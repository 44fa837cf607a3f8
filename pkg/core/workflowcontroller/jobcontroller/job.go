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

package jobcontroller

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/rudderci/rudder/pkg/config"
	"github.com/rudderci/rudder/pkg/core/artifact"
	"github.com/rudderci/rudder/pkg/core/executor"
	"github.com/rudderci/rudder/pkg/core/expression"
	"github.com/rudderci/rudder/pkg/core/secret"
	"github.com/rudderci/rudder/pkg/core/workflowcontroller/stepcontroller"
	"github.com/rudderci/rudder/pkg/types"
)

// RunDeps bundles the collaborators a job needs at dispatch time. One value
// is shared by every job of a run; all fields are read-only during the run.
type RunDeps struct {
	Executor      executor.CmdExecutor
	Transport     executor.Transport
	Artifacts     artifact.Store
	Secrets       *secret.Broker
	Env           map[string]string
	WorkspaceRoot string
	ShellPath     string
	// Snapshot supplies the run state that job and step conditions evaluate
	// against.
	Snapshot func() (*expression.Context, error)
}

// RunJob drives one job to a terminal state: evaluates its run condition,
// prepares an isolated workspace, runs its steps, and applies the error
// policy. RunJob owns every write to the JobTask.
func RunJob(ctx context.Context, job *types.JobTask, workflowCtx *types.WorkflowTaskCtx, deps *RunDeps, logger *zap.SugaredLogger, ack func()) {
	// tasks built outside BuildJobTasks may carry zero statuses
	for _, step := range job.Steps {
		if step.Status == "" {
			step.Status = config.StatusPending
		}
	}

	defer func() {
		if err := recover(); err != nil {
			errMsg := fmt.Sprintf("job: %s panic: %v", job.Name, err)
			logger.Errorf(errMsg)
			debug.PrintStack()
			job.Status = config.StatusFailed
			job.Error = errMsg
		}
		job.EndTime = time.Now().Unix()
		setJobFinalContext(job, workflowCtx)
		logger.Infof("finish job: %s, status: %s", job.Name, job.Status)
		ack()
	}()

	if ok, err := jobConditionMet(job, deps); err != nil {
		job.Status = config.StatusFailed
		job.Error = err.Error()
		return
	} else if !ok {
		logger.Infof("skipping job: %s, run condition not met", job.Name)
		job.Status = config.StatusSkipped
		job.StartTime = time.Now().Unix()
		return
	}

	job.Status = config.StatusPrepare
	job.StartTime = time.Now().Unix()
	if job.Outputs == nil {
		job.Outputs = map[string]string{}
	}
	ack()
	logger.Infof("start job: %s, status: %s", job.Name, job.Status)

	job.Workspace = filepath.Join(deps.WorkspaceRoot, workflowCtx.RunID, job.Name)
	if err := os.MkdirAll(job.Workspace, 0o755); err != nil {
		job.Status = config.StatusFailed
		job.Error = fmt.Sprintf("prepare workspace: %v", err)
		return
	}

	runAttempt(ctx, job, workflowCtx, deps, logger, ack)

	if job.Status.Failed() && job.ErrorPolicy != nil {
		switch job.ErrorPolicy.Policy {
		case config.JobErrorPolicyStop:
		case config.JobErrorPolicyIgnoreError:
			job.Status = config.StatusUnstable
		case config.JobErrorPolicyRetry:
			retryJob(ctx, job, workflowCtx, deps, logger, ack)
		}
	}
}

// runAttempt executes the job's steps once and records the attempt.
func runAttempt(ctx context.Context, job *types.JobTask, workflowCtx *types.WorkflowTaskCtx, deps *RunDeps, logger *zap.SugaredLogger, ack func()) {
	attempt := &types.JobAttempt{
		Number:    len(job.Attempts) + 1,
		StartTime: time.Now().Unix(),
	}
	job.Attempts = append(job.Attempts, attempt)

	if job.TimeoutMinutes > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(job.TimeoutMinutes)*time.Minute)
		defer cancel()
	}

	job.Status = config.StatusRunning
	ack()

	stepcontroller.RunSteps(ctx, job, workflowCtx, &stepcontroller.StepDeps{
		Executor:  deps.Executor,
		Transport: deps.Transport,
		Artifacts: deps.Artifacts,
		Secrets:   deps.Secrets,
		Env:       deps.Env,
		ShellPath: deps.ShellPath,
		Snapshot:  deps.Snapshot,
	}, logger, ack)

	job.Status = jobStatusFromSteps(ctx, job)

	attempt.Status = job.Status
	attempt.Error = job.Error
	attempt.EndTime = time.Now().Unix()
	ack()
}

// retryJob re-dispatches a failed job with exponential backoff until it
// passes or the declared retry limit is exhausted.
func retryJob(ctx context.Context, job *types.JobTask, workflowCtx *types.WorkflowTaskCtx, deps *RunDeps, logger *zap.SugaredLogger, ack func()) {
	wait := backoff.NewExponentialBackOff()
	wait.InitialInterval = time.Second
	wait.MaxInterval = time.Minute
	wait.Reset()

	for retryCount := 1; retryCount <= job.ErrorPolicy.MaximumRetry; retryCount++ {
		select {
		case <-ctx.Done():
			job.Status = config.StatusCancelled
			job.Error = "run cancelled, giving up retries"
			return
		case <-time.After(wait.NextBackOff()):
		}

		logger.Infof("retrying job: %s, attempt %d of %d", job.Name, retryCount, job.ErrorPolicy.MaximumRetry)
		job.RetryCount = retryCount
		resetSteps(job)
		runAttempt(ctx, job, workflowCtx, deps, logger, ack)

		if job.Status == config.StatusPassed {
			return
		}
	}
}

func resetSteps(job *types.JobTask) {
	job.Error = ""
	for _, step := range job.Steps {
		step.Status = config.StatusPending
		step.Error = ""
		step.StartTime = 0
		step.EndTime = 0
	}
}

// jobStatusFromSteps folds step outcomes into the job status. Steps marked
// continue-on-error never fail the job.
func jobStatusFromSteps(ctx context.Context, job *types.JobTask) config.Status {
	if err := ctx.Err(); err != nil {
		if err == context.DeadlineExceeded {
			return config.StatusTimeout
		}
		return config.StatusCancelled
	}

	status := config.StatusPassed
	for _, step := range job.Steps {
		switch step.Status {
		case config.StatusFailed, config.StatusTimeout:
			if !step.ContinueOnError {
				job.Error = step.Error
				return config.StatusFailed
			}
		case config.StatusCancelled:
			return config.StatusCancelled
		}
	}
	return status
}

func jobConditionMet(job *types.JobTask, deps *RunDeps) (bool, error) {
	if job.If == "" {
		return true, nil
	}
	exprCtx, err := deps.Snapshot()
	if err != nil {
		return false, fmt.Errorf("snapshot run state for job %s: %v", job.Name, err)
	}
	return exprCtx.Evaluate(job.If)
}

// setJobFinalContext publishes the job's terminal status and outputs into
// the run's global context for downstream conditions.
func setJobFinalContext(job *types.JobTask, workflowCtx *types.WorkflowTaskCtx) {
	workflowCtx.GlobalContextSet(fmt.Sprintf("job.%s.status", job.Name), string(job.Status))
	for name, value := range job.Outputs {
		workflowCtx.GlobalContextSet(fmt.Sprintf("job.%s.outputs.%s", job.Name, name), value)
	}
}

// CleanWorkflowJobs removes job workspaces after the run reaches a terminal
// state. Artifacts have already been published; workspaces are scratch.
func CleanWorkflowJobs(ctx context.Context, task *types.WorkflowTask, logger *zap.SugaredLogger) {
	for _, job := range task.Jobs {
		if job.Workspace == "" {
			continue
		}
		if err := os.RemoveAll(job.Workspace); err != nil {
			logger.Warnf("clean workspace of job %s error: %v", job.Name, err)
		}
	}
}
