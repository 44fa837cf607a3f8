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
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/rudderci/rudder/pkg/core/executor"
	"github.com/rudderci/rudder/pkg/core/secret"
	"github.com/rudderci/rudder/pkg/types"
	"github.com/rudderci/rudder/pkg/types/step"
	"github.com/rudderci/rudder/pkg/util"
)

type shellStepCtl struct {
	step        *types.StepTask
	job         *types.JobTask
	workflowCtx *types.WorkflowTaskCtx
	deps        *StepDeps
	spec        *step.StepShellSpec
	logger      *zap.SugaredLogger
}

func NewShellStepCtl(stepTask *types.StepTask, job *types.JobTask, workflowCtx *types.WorkflowTaskCtx, deps *StepDeps, logger *zap.SugaredLogger) (StepCtl, error) {
	spec := &step.StepShellSpec{}
	if err := util.IToi(stepTask.Spec, spec); err != nil {
		return nil, fmt.Errorf("decode shell spec of step %s: %v", stepTask.Name, err)
	}
	if len(spec.Scripts) == 0 {
		return nil, fmt.Errorf("step %s has no scripts", stepTask.Name)
	}
	return &shellStepCtl{step: stepTask, job: job, workflowCtx: workflowCtx, deps: deps, spec: spec, logger: logger}, nil
}

func (c *shellStepCtl) Run(ctx context.Context) error {
	metaDir := filepath.Join(c.job.Workspace, ".rudder")
	if err := os.MkdirAll(metaDir, 0o755); err != nil {
		return err
	}

	scripts := append([]string{"set -e"}, c.spec.Scripts...)
	scriptPath := filepath.Join(metaDir, c.step.Name+".sh")
	if err := os.WriteFile(scriptPath, []byte(strings.Join(scripts, "\n")+"\n"), 0o700); err != nil {
		return err
	}
	outputPath := filepath.Join(metaDir, c.step.Name+".output")

	workDir := c.job.Workspace
	if c.spec.WorkDir != "" {
		workDir = filepath.Join(c.job.Workspace, c.spec.WorkDir)
	}

	out := secret.NewMaskWriter(c.deps.Secrets, newLogSink(c.logger, c.job.Name, c.step.Name))
	defer out.Flush()

	runErr := c.deps.Executor.Run(ctx, &executor.RunOptions{
		Name:   c.deps.ShellPath,
		Args:   []string{scriptPath},
		Dir:    workDir,
		Envs:   c.envs(outputPath),
		Stdout: out,
		Stderr: out,
	})

	// Outputs written before the failure point still count.
	if err := c.collectOutputs(outputPath); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// envs layers the execution environment: workflow env, then job env, then
// step env, then secrets, then the engine's own variables. Later layers win.
func (c *shellStepCtl) envs(outputPath string) []string {
	merged := map[string]string{}
	for k, v := range c.deps.Env {
		merged[k] = v
	}
	for k, v := range c.job.Env {
		merged[k] = v
	}
	for k, v := range c.spec.Envs {
		merged[k] = v
	}

	envs := make([]string, 0, len(merged)+8)
	for k, v := range merged {
		envs = append(envs, fmt.Sprintf("%s=%s", k, v))
	}
	envs = append(envs, c.deps.Secrets.Envs()...)
	envs = append(envs,
		"PATH="+os.Getenv("PATH"),
		"HOME="+os.Getenv("HOME"),
		"RUDDER_RUN_ID="+c.workflowCtx.RunID,
		"RUDDER_WORKFLOW="+c.workflowCtx.WorkflowName,
		"RUDDER_JOB="+c.job.Name,
		"RUDDER_WORKSPACE="+c.job.Workspace,
		"RUDDER_OUTPUT="+outputPath,
	)
	return envs
}

// collectOutputs reads KEY=VALUE lines from the step's output file and
// publishes the keys the step declared. Undeclared keys are dropped.
func (c *shellStepCtl) collectOutputs(outputPath string) error {
	if len(c.step.Outputs) == 0 {
		return nil
	}
	f, err := os.Open(outputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	declared := map[string]bool{}
	for _, name := range c.step.Outputs {
		declared[name] = true
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		if !declared[key] {
			c.logger.Warnf("step %s wrote undeclared output %s, dropping it", c.step.Name, key)
			continue
		}
		c.job.Outputs[key] = value
	}
	return scanner.Err()
}
