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

package workflow

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/rudderci/rudder/pkg/config"
	"github.com/rudderci/rudder/pkg/types"
)

// knownStepTypes is the tagged-dispatch surface of the step controller.
var knownStepTypes = map[config.StepType]bool{
	config.StepShell:            true,
	config.StepAction:           true,
	config.StepRemoteTransfer:   true,
	config.StepArchive:          true,
	config.StepDownloadArtifact: true,
}

// ParseWorkflowSpec parses a workflow definition document into an immutable
// WorkflowSpec. Unknown keys are tolerated so older engines keep accepting
// newer documents; missing required fields are not.
func ParseWorkflowSpec(data []byte) (*types.WorkflowSpec, error) {
	spec := &types.WorkflowSpec{}
	if err := yaml.Unmarshal(data, spec); err != nil {
		return nil, &MalformedSpecError{Err: err}
	}

	if err := validateSpec(spec); err != nil {
		return nil, &MalformedSpecError{Err: err}
	}

	if spec.DisplayName == "" {
		spec.DisplayName = spec.Name
	}

	return spec, nil
}

func validateSpec(spec *types.WorkflowSpec) error {
	var result *multierror.Error

	if spec.Name == "" {
		result = multierror.Append(result, fmt.Errorf("workflow name is required"))
	}
	if len(spec.Jobs) == 0 {
		result = multierror.Append(result, fmt.Errorf("workflow must declare at least one job"))
	}
	if spec.Concurrency < 0 {
		result = multierror.Append(result, fmt.Errorf("concurrency must not be negative"))
	}

	jobNames := map[string]bool{}
	for i, job := range spec.Jobs {
		if job == nil {
			result = multierror.Append(result, fmt.Errorf("job #%d is empty", i))
			continue
		}
		if job.Name == "" {
			result = multierror.Append(result, fmt.Errorf("job #%d has no name", i))
			continue
		}
		if jobNames[job.Name] {
			result = multierror.Append(result, fmt.Errorf("duplicated job name %q", job.Name))
		}
		jobNames[job.Name] = true

		if len(job.Steps) == 0 {
			result = multierror.Append(result, fmt.Errorf("job %q must declare at least one step", job.Name))
		}
		if job.ErrorPolicy != nil && job.ErrorPolicy.Policy == config.JobErrorPolicyRetry && job.ErrorPolicy.MaximumRetry <= 0 {
			result = multierror.Append(result, fmt.Errorf("job %q retry policy needs a positive maximum_retry", job.Name))
		}

		stepNames := map[string]bool{}
		for j, step := range job.Steps {
			if step == nil || step.Name == "" {
				result = multierror.Append(result, fmt.Errorf("job %q step #%d has no name", job.Name, j))
				continue
			}
			if stepNames[step.Name] {
				result = multierror.Append(result, fmt.Errorf("job %q has duplicated step name %q", job.Name, step.Name))
			}
			stepNames[step.Name] = true

			if step.StepType == "" {
				step.StepType = config.StepShell
			}
			if !knownStepTypes[step.StepType] {
				result = multierror.Append(result, fmt.Errorf("job %q step %q has unknown type %q", job.Name, step.Name, step.StepType))
			}
		}
	}

	secretNames := map[string]bool{}
	for _, secret := range spec.Secrets {
		if secret.Name == "" {
			result = multierror.Append(result, fmt.Errorf("secret without a name"))
			continue
		}
		if secretNames[secret.Name] {
			result = multierror.Append(result, fmt.Errorf("duplicated secret name %q", secret.Name))
		}
		secretNames[secret.Name] = true
	}

	for _, trigger := range spec.Triggers {
		switch trigger.Type {
		case config.TriggerManual:
		case config.TriggerCron:
			if trigger.Schedule == "" {
				result = multierror.Append(result, fmt.Errorf("cron trigger needs a schedule"))
				continue
			}
			if _, err := cron.ParseStandard(trigger.Schedule); err != nil {
				result = multierror.Append(result, fmt.Errorf("invalid cron schedule %q: %v", trigger.Schedule, err))
			}
		default:
			result = multierror.Append(result, fmt.Errorf("unknown trigger type %q", trigger.Type))
		}
	}

	return result.ErrorOrNil()
}
