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

	"github.com/rudderci/rudder/pkg/types"
	"github.com/rudderci/rudder/pkg/types/step"
	"github.com/rudderci/rudder/pkg/util"
)

type archiveStepCtl struct {
	step        *types.StepTask
	job         *types.JobTask
	workflowCtx *types.WorkflowTaskCtx
	deps        *StepDeps
	spec        *step.StepArchiveSpec
	logger      *zap.SugaredLogger
}

func NewArchiveStepCtl(stepTask *types.StepTask, job *types.JobTask, workflowCtx *types.WorkflowTaskCtx, deps *StepDeps, logger *zap.SugaredLogger) (StepCtl, error) {
	spec := &step.StepArchiveSpec{}
	if err := util.IToi(stepTask.Spec, spec); err != nil {
		return nil, fmt.Errorf("decode archive spec of step %s: %v", stepTask.Name, err)
	}
	if spec.ArtifactName == "" || spec.FilePath == "" {
		return nil, fmt.Errorf("step %s needs both artifact_name and file_path", stepTask.Name)
	}
	return &archiveStepCtl{step: stepTask, job: job, workflowCtx: workflowCtx, deps: deps, spec: spec, logger: logger}, nil
}

func (c *archiveStepCtl) Run(ctx context.Context) error {
	path := c.spec.FilePath
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.job.Workspace, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %v", c.spec.FilePath, err)
	}
	defer f.Close()

	if err := c.deps.Artifacts.Publish(ctx, c.workflowCtx.RunID, c.spec.ArtifactName, c.job.Name, f); err != nil {
		return err
	}
	c.logger.Infof("published artifact %s from %s", c.spec.ArtifactName, c.spec.FilePath)
	return nil
}
