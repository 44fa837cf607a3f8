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
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"

	"github.com/rudderci/rudder/pkg/config"
	"github.com/rudderci/rudder/pkg/types"
)

// BuildJobTasks materializes the runtime job list from a parsed workflow
// spec. Tasks carry their own deep copy of spec data so later runs are not
// affected by mutation during execution.
func BuildJobTasks(spec *types.WorkflowSpec) ([]*types.JobTask, error) {
	jobTasks := make([]*types.JobTask, 0, len(spec.Jobs))
	for _, jobSpec := range spec.Jobs {
		jobTask, err := buildJobTask(jobSpec)
		if err != nil {
			return nil, errors.Wrapf(err, "build job task for job %s", jobSpec.Name)
		}
		jobTasks = append(jobTasks, jobTask)
	}
	return jobTasks, nil
}

func buildJobTask(jobSpec *types.JobSpec) (*types.JobTask, error) {
	jobTask := &types.JobTask{
		Name:                   jobSpec.Name,
		Needs:                  jobSpec.Needs,
		If:                     jobSpec.If,
		RunOnDependencyFailure: jobSpec.RunOnDependencyFailure,
		TimeoutMinutes:         jobSpec.TimeoutMinutes,
		Status:                 config.StatusPending,
		Outputs:                map[string]string{},
	}

	jobTask.Env = map[string]string{}
	if err := copier.CopyWithOption(&jobTask.Env, jobSpec.Env, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	if jobSpec.ErrorPolicy != nil {
		jobTask.ErrorPolicy = &types.JobErrorPolicy{}
		if err := copier.Copy(jobTask.ErrorPolicy, jobSpec.ErrorPolicy); err != nil {
			return nil, err
		}
	}
	if jobSpec.RunsOn != nil {
		jobTask.RunsOn = &types.RuntimeInfo{}
		if err := copier.Copy(jobTask.RunsOn, jobSpec.RunsOn); err != nil {
			return nil, err
		}
	}

	for _, stepSpec := range jobSpec.Steps {
		stepTask := &types.StepTask{
			Name:            stepSpec.Name,
			StepType:        stepSpec.StepType,
			If:              stepSpec.If,
			ContinueOnError: stepSpec.ContinueOnError,
			TimeoutSeconds:  stepSpec.TimeoutSeconds,
			Outputs:         stepSpec.Outputs,
			Status:          config.StatusPending,
		}
		if stepSpec.Spec != nil {
			spec := map[string]interface{}{}
			if err := copier.CopyWithOption(&spec, stepSpec.Spec, copier.Option{DeepCopy: true}); err != nil {
				return nil, errors.Wrapf(err, "copy spec of step %s", stepSpec.Name)
			}
			stepTask.Spec = spec
		}
		jobTask.Steps = append(jobTask.Steps, stepTask)
	}
	return jobTask, nil
}
