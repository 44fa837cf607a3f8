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

// Package service exposes the engine's operations to its surfaces: the CLI,
// the HTTP API, and the cron trigger scheduler all go through here.
package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/rudderci/rudder/pkg/config"
	"github.com/rudderci/rudder/pkg/core/artifact"
	"github.com/rudderci/rudder/pkg/core/executor"
	"github.com/rudderci/rudder/pkg/core/secret"
	"github.com/rudderci/rudder/pkg/core/taskstore"
	"github.com/rudderci/rudder/pkg/core/workflow"
	"github.com/rudderci/rudder/pkg/core/workflowcontroller"
	"github.com/rudderci/rudder/pkg/core/workflowcontroller/jobcontroller"
	"github.com/rudderci/rudder/pkg/setting"
	"github.com/rudderci/rudder/pkg/types"
)

// WorkflowService is the engine facade. One instance serves all runs.
type WorkflowService struct {
	store     taskstore.Store
	artifacts artifact.Store
	executor  executor.CmdExecutor
	transport executor.Transport

	workspaceRoot string
	shellPath     string
	concurrency   int

	logger *zap.SugaredLogger
}

type Options struct {
	Store     taskstore.Store
	Artifacts artifact.Store
	Executor  executor.CmdExecutor
	// Transport may be nil; remote transfer steps then fail with a clear
	// error.
	Transport executor.Transport

	WorkspaceRoot string
	ShellPath     string
	// Concurrency caps jobs in flight per run when the workflow itself does
	// not set one.
	Concurrency int
}

func NewWorkflowService(opts *Options, logger *zap.SugaredLogger) *WorkflowService {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = setting.DefaultConcurrency
	}
	shellPath := opts.ShellPath
	if shellPath == "" {
		shellPath = "/bin/bash"
	}
	return &WorkflowService{
		store:         opts.Store,
		artifacts:     opts.Artifacts,
		executor:      opts.Executor,
		transport:     opts.Transport,
		workspaceRoot: opts.WorkspaceRoot,
		shellPath:     shellPath,
		concurrency:   concurrency,
		logger:        logger,
	}
}

// CreateWorkflowTask validates the spec, assigns run identifiers, and
// persists a pending run report. It does not start execution.
func (s *WorkflowService) CreateWorkflowTask(ctx context.Context, spec *types.WorkflowSpec) (*types.WorkflowTask, error) {
	if _, err := workflow.BuildRunGraph(spec); err != nil {
		return nil, err
	}

	jobs, err := jobcontroller.BuildJobTasks(spec)
	if err != nil {
		return nil, err
	}

	taskID, err := s.store.NextTaskID(ctx, spec.Name)
	if err != nil {
		return nil, errors.Wrap(err, "assign task id")
	}

	task := &types.WorkflowTask{
		RunID:         uuid.NewString(),
		WorkflowName:  spec.Name,
		DisplayName:   spec.DisplayName,
		TaskID:        taskID,
		Status:        config.StatusPending,
		FailFast:      spec.FailFast,
		Concurrency:   spec.Concurrency,
		GlobalContext: map[string]string{},
		Jobs:          jobs,
		CreateTime:    time.Now().Unix(),
	}

	if err := s.store.Create(ctx, task); err != nil {
		return nil, errors.Wrap(err, "persist workflow task")
	}
	return task, nil
}

// ExecuteWorkflowTask runs a created task to completion and returns its
// final report. Secrets are resolved here so a resolution failure is
// reported before any job starts.
func (s *WorkflowService) ExecuteWorkflowTask(ctx context.Context, spec *types.WorkflowSpec, task *types.WorkflowTask) (*types.WorkflowTask, error) {
	graph, err := workflow.BuildRunGraph(spec)
	if err != nil {
		return nil, err
	}

	broker, err := secret.NewBroker(spec.Secrets)
	if err != nil {
		task.Status = config.StatusFailed
		task.Error = err.Error()
		task.EndTime = time.Now().Unix()
		if updateErr := s.store.Update(ctx, task); updateErr != nil {
			s.logger.Errorf("persist failed run %s error: %v", task.RunID, updateErr)
		}
		return task, err
	}

	deps := &jobcontroller.RunDeps{
		Executor:      s.executor,
		Transport:     s.transport,
		Artifacts:     s.artifacts,
		Secrets:       broker,
		Env:           spec.Env,
		WorkspaceRoot: s.workspaceRoot,
		ShellPath:     s.shellPath,
	}

	concurrency := task.Concurrency
	if concurrency <= 0 {
		concurrency = s.concurrency
	}

	ctl := workflowcontroller.NewWorkflowController(task, graph, deps, s.store, s.logger)
	ctl.Run(ctx, concurrency)

	return s.store.Find(ctx, task.RunID)
}

// RunWorkflow is the one-shot entry used by the CLI and triggers: create
// then execute.
func (s *WorkflowService) RunWorkflow(ctx context.Context, spec *types.WorkflowSpec) (*types.WorkflowTask, error) {
	task, err := s.CreateWorkflowTask(ctx, spec)
	if err != nil {
		return nil, err
	}
	return s.ExecuteWorkflowTask(ctx, spec, task)
}

// CancelWorkflowTask aborts a running task on behalf of userName.
func (s *WorkflowService) CancelWorkflowTask(ctx context.Context, userName, runID string) error {
	return workflowcontroller.CancelWorkflowTask(ctx, userName, runID, s.store, s.logger)
}

// GetWorkflowTask returns the stored run report.
func (s *WorkflowService) GetWorkflowTask(ctx context.Context, runID string) (*types.WorkflowTask, error) {
	return s.store.Find(ctx, runID)
}

// ListWorkflowTasks returns recent run reports of one workflow, newest
// first.
func (s *WorkflowService) ListWorkflowTasks(ctx context.Context, workflowName string, limit int) ([]*types.WorkflowTask, error) {
	return s.store.List(ctx, workflowName, limit)
}

// ListArtifacts names the artifacts a run has published.
func (s *WorkflowService) ListArtifacts(ctx context.Context, runID string) ([]string, error) {
	return s.artifacts.List(ctx, runID)
}

// FetchArtifact streams one artifact payload to dest. Artifacts of a job
// that did not pass are withheld.
func (s *WorkflowService) FetchArtifact(ctx context.Context, runID, name string, dest io.Writer) error {
	task, err := s.store.Find(ctx, runID)
	if err != nil {
		return err
	}
	producer, err := s.artifacts.Producer(ctx, runID, name)
	if err != nil {
		return err
	}
	for _, job := range task.Jobs {
		if job.Name == producer {
			if job.Status != config.StatusPassed {
				return &artifact.ArtifactNotFoundError{RunID: runID, Name: name}
			}
			break
		}
	}
	return s.artifacts.Fetch(ctx, runID, name, dest)
}
