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
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rudderci/rudder/pkg/core/executor"
	"github.com/rudderci/rudder/pkg/core/secret"
	"github.com/rudderci/rudder/pkg/types"
	"github.com/rudderci/rudder/pkg/types/step"
	"github.com/rudderci/rudder/pkg/util"
)

type remoteTransferStepCtl struct {
	step   *types.StepTask
	job    *types.JobTask
	deps   *StepDeps
	spec   *step.StepRemoteTransferSpec
	logger *zap.SugaredLogger
}

func NewRemoteTransferStepCtl(stepTask *types.StepTask, job *types.JobTask, deps *StepDeps, logger *zap.SugaredLogger) (StepCtl, error) {
	spec := &step.StepRemoteTransferSpec{}
	if err := util.IToi(stepTask.Spec, spec); err != nil {
		return nil, fmt.Errorf("decode remote transfer spec of step %s: %v", stepTask.Name, err)
	}
	if spec.Source == "" || spec.Destination == "" {
		return nil, fmt.Errorf("step %s needs both source and destination", stepTask.Name)
	}
	return &remoteTransferStepCtl{step: stepTask, job: job, deps: deps, spec: spec, logger: logger}, nil
}

func (c *remoteTransferStepCtl) Run(ctx context.Context) error {
	if c.deps.Transport == nil {
		return fmt.Errorf("no transport configured, remote transfer steps are unavailable")
	}

	source := c.spec.Source
	if !filepath.IsAbs(source) {
		source = filepath.Join(c.job.Workspace, source)
	}

	out := secret.NewMaskWriter(c.deps.Secrets, newLogSink(c.logger, c.job.Name, c.step.Name))
	defer out.Flush()

	return c.deps.Transport.Copy(ctx, &executor.CopyOptions{
		Source:      source,
		Destination: c.spec.Destination,
		Host:        c.spec.Host,
		User:        c.spec.User,
		Stdout:      out,
	})
}
