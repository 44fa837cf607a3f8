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
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rudderci/rudder/pkg/config"
	"github.com/rudderci/rudder/pkg/core/artifact"
	"github.com/rudderci/rudder/pkg/types"
	"github.com/rudderci/rudder/pkg/types/step"
	"github.com/rudderci/rudder/pkg/util"
)

type downloadArtifactStepCtl struct {
	step        *types.StepTask
	job         *types.JobTask
	workflowCtx *types.WorkflowTaskCtx
	deps        *StepDeps
	spec        *step.StepDownloadArtifactSpec
	logger      *zap.SugaredLogger
}

func NewDownloadArtifactStepCtl(stepTask *types.StepTask, job *types.JobTask, workflowCtx *types.WorkflowTaskCtx, deps *StepDeps, logger *zap.SugaredLogger) (StepCtl, error) {
	spec := &step.StepDownloadArtifactSpec{}
	if err := util.IToi(stepTask.Spec, spec); err != nil {
		return nil, fmt.Errorf("decode download artifact spec of step %s: %v", stepTask.Name, err)
	}
	if spec.ArtifactName == "" {
		return nil, fmt.Errorf("step %s names no artifact", stepTask.Name)
	}
	return &downloadArtifactStepCtl{step: stepTask, job: job, workflowCtx: workflowCtx, deps: deps, spec: spec, logger: logger}, nil
}

func (c *downloadArtifactStepCtl) Run(ctx context.Context) error {
	// an artifact is only served once its producing job passed; a job may
	// read back its own publications mid-run
	producer, err := c.deps.Artifacts.Producer(ctx, c.workflowCtx.RunID, c.spec.ArtifactName)
	if err != nil {
		return err
	}
	if producer != c.job.Name {
		status, ok := c.workflowCtx.GlobalContextGet(fmt.Sprintf("job.%s.status", producer))
		if !ok || status != string(config.StatusPassed) {
			return &artifact.ArtifactNotFoundError{RunID: c.workflowCtx.RunID, Name: c.spec.ArtifactName}
		}
	}

	destPath := c.spec.DestPath
	if destPath == "" {
		destPath = c.spec.ArtifactName
	}
	if !filepath.IsAbs(destPath) {
		destPath = filepath.Join(c.job.Workspace, destPath)
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %v", destPath, err)
	}
	defer f.Close()

	if err := c.deps.Artifacts.Fetch(ctx, c.workflowCtx.RunID, c.spec.ArtifactName, f); err != nil {
		os.Remove(destPath)
		return err
	}
	c.logger.Infof("downloaded artifact %s to %s", c.spec.ArtifactName, destPath)
	return nil
}
