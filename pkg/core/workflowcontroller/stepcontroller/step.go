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

package stepcontroller

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rudderci/rudder/pkg/config"
	"github.com/rudderci/rudder/pkg/core/artifact"
	"github.com/rudderci/rudder/pkg/core/executor"
	"github.com/rudderci/rudder/pkg/core/expression"
	"github.com/rudderci/rudder/pkg/core/secret"
	"github.com/rudderci/rudder/pkg/types"
)

// StepDeps bundles what step controllers need from the surrounding job run.
type StepDeps struct {
	Executor  executor.CmdExecutor
	Transport executor.Transport
	Artifacts artifact.Store
	Secrets   *secret.Broker
	Env       map[string]string
	ShellPath string
	Snapshot  func() (*expression.Context, error)
}

// StepExecutionError identifies which step of which job failed. The cause
// keeps the underlying error reachable through Unwrap.
type StepExecutionError struct {
	Job   string
	Step  string
	Cause error
}

func (e *StepExecutionError) Error() string {
	return fmt.Sprintf("step %s of job %s failed: %v", e.Step, e.Job, e.Cause)
}

func (e *StepExecutionError) Unwrap() error { return e.Cause }

// StepCtl executes one concrete step type.
type StepCtl interface {
	Run(ctx context.Context) error
}

func instantiateStepCtl(step *types.StepTask, job *types.JobTask, workflowCtx *types.WorkflowTaskCtx, deps *StepDeps, logger *zap.SugaredLogger) (StepCtl, error) {
	switch step.StepType {
	case config.StepShell:
		return NewShellStepCtl(step, job, workflowCtx, deps, logger)
	case config.StepAction:
		return NewActionStepCtl(step, job, workflowCtx, deps, logger)
	case config.StepRemoteTransfer:
		return NewRemoteTransferStepCtl(step, job, deps, logger)
	case config.StepArchive:
		return NewArchiveStepCtl(step, job, workflowCtx, deps, logger)
	case config.StepDownloadArtifact:
		return NewDownloadArtifactStepCtl(step, job, workflowCtx, deps, logger)
	default:
		return nil, fmt.Errorf("step type: %s does not match any known type", step.StepType)
	}
}

// RunSteps executes a job's steps strictly in order. A step failure stops
// the sequence unless the step opted into continue_on_error; cancellation
// stops it and marks every step that never ran cancelled.
func RunSteps(ctx context.Context, job *types.JobTask, workflowCtx *types.WorkflowTaskCtx, deps *StepDeps, logger *zap.SugaredLogger, ack func()) {
	for _, step := range job.Steps {
		if step.Status == "" {
			step.Status = config.StatusPending
		}
	}

	for i, step := range job.Steps {
		select {
		case <-ctx.Done():
			cancelRemainingSteps(job.Steps[i:])
			return
		default:
		}

		if ok, err := stepConditionMet(step, deps); err != nil {
			step.Status = config.StatusFailed
			step.Error = err.Error()
			if !step.ContinueOnError {
				return
			}
			continue
		} else if !ok {
			logger.Infof("skipping step: %s, run condition not met", step.Name)
			step.Status = config.StatusSkipped
			continue
		}

		runStep(ctx, step, job, workflowCtx, deps, logger, ack)

		if step.Status == config.StatusCancelled {
			cancelRemainingSteps(job.Steps[i+1:])
			return
		}
		if step.Status.Failed() && !step.ContinueOnError {
			return
		}
	}
}

func cancelRemainingSteps(steps []*types.StepTask) {
	for _, step := range steps {
		if step.Status == config.StatusPending {
			step.Status = config.StatusCancelled
		}
	}
}

func runStep(ctx context.Context, step *types.StepTask, job *types.JobTask, workflowCtx *types.WorkflowTaskCtx, deps *StepDeps, logger *zap.SugaredLogger, ack func()) {
	step.Status = config.StatusRunning
	step.StartTime = time.Now().Unix()
	ack()
	logger.Infof("start step: %s/%s", job.Name, step.Name)

	defer func() {
		step.EndTime = time.Now().Unix()
		ack()
	}()

	stepCtx := ctx
	if step.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, time.Duration(step.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	ctl, err := instantiateStepCtl(step, job, workflowCtx, deps, logger)
	if err != nil {
		step.Status = config.StatusFailed
		step.Error = err.Error()
		return
	}

	if err := ctl.Run(stepCtx); err != nil {
		switch {
		case stepCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil:
			step.Status = config.StatusTimeout
		case ctx.Err() != nil:
			step.Status = config.StatusCancelled
		default:
			step.Status = config.StatusFailed
		}
		stepErr := &StepExecutionError{Job: job.Name, Step: step.Name, Cause: err}
		step.Error = deps.Secrets.Mask(stepErr.Error())
		return
	}
	step.Status = config.StatusPassed
}

func stepConditionMet(step *types.StepTask, deps *StepDeps) (bool, error) {
	if step.If == "" {
		return true, nil
	}
	exprCtx, err := deps.Snapshot()
	if err != nil {
		return false, fmt.Errorf("snapshot run state for step %s: %v", step.Name, err)
	}
	return exprCtx.Evaluate(step.If)
}
