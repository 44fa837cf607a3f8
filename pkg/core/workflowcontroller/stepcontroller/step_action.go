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
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rudderci/rudder/pkg/types"
	"github.com/rudderci/rudder/pkg/types/step"
	"github.com/rudderci/rudder/pkg/util"
)

type actionFunc func(ctx context.Context, c *actionStepCtl, inputs map[string]string) error

// builtinActions maps action references to their implementations. The
// version suffix is accepted but not dispatched on yet; every action has a
// single revision.
var builtinActions = map[string]actionFunc{
	"core/set-output": actionSetOutput,
	"core/print":      actionPrint,
	"core/sleep":      actionSleep,
}

type actionStepCtl struct {
	step        *types.StepTask
	job         *types.JobTask
	workflowCtx *types.WorkflowTaskCtx
	deps        *StepDeps
	spec        *step.StepActionSpec
	logger      *zap.SugaredLogger
}

func NewActionStepCtl(stepTask *types.StepTask, job *types.JobTask, workflowCtx *types.WorkflowTaskCtx, deps *StepDeps, logger *zap.SugaredLogger) (StepCtl, error) {
	spec := &step.StepActionSpec{}
	if err := util.IToi(stepTask.Spec, spec); err != nil {
		return nil, fmt.Errorf("decode action spec of step %s: %v", stepTask.Name, err)
	}
	if spec.Action == "" {
		return nil, fmt.Errorf("step %s names no action", stepTask.Name)
	}
	return &actionStepCtl{step: stepTask, job: job, workflowCtx: workflowCtx, deps: deps, spec: spec, logger: logger}, nil
}

func (c *actionStepCtl) Run(ctx context.Context) error {
	ref, _, _ := strings.Cut(c.spec.Action, "@")
	action, ok := builtinActions[ref]
	if !ok {
		return fmt.Errorf("unknown action: %s", c.spec.Action)
	}
	return action(ctx, c, c.spec.Inputs)
}

func actionSetOutput(_ context.Context, c *actionStepCtl, inputs map[string]string) error {
	name := inputs["name"]
	if name == "" {
		return fmt.Errorf("set-output requires a name input")
	}
	declared := false
	for _, out := range c.step.Outputs {
		if out == name {
			declared = true
			break
		}
	}
	if !declared {
		return fmt.Errorf("output %s is not declared by step %s", name, c.step.Name)
	}
	c.job.Outputs[name] = inputs["value"]
	return nil
}

func actionPrint(_ context.Context, c *actionStepCtl, inputs map[string]string) error {
	c.logger.Infof("[%s/%s] %s", c.job.Name, c.step.Name, c.deps.Secrets.Mask(inputs["message"]))
	return nil
}

func actionSleep(ctx context.Context, _ *actionStepCtl, inputs map[string]string) error {
	seconds, err := strconv.Atoi(inputs["seconds"])
	if err != nil || seconds < 0 {
		return fmt.Errorf("sleep requires a non-negative seconds input")
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(seconds) * time.Second):
		return nil
	}
}
