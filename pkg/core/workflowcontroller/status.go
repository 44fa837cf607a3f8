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

package workflowcontroller

import (
	"github.com/rudderci/rudder/pkg/config"
	"github.com/rudderci/rudder/pkg/types"
)

// statusRank orders terminal statuses by severity; the run takes the status
// of its worst job. Failed outranks Cancelled so a fail-fast abort reports
// the failure that caused it, not the cancellations it triggered.
var statusRank = map[config.Status]int{
	config.StatusFailed:    5,
	config.StatusTimeout:   4,
	config.StatusCancelled: 3,
	config.StatusUnstable:  2,
	config.StatusPassed:    1,
	config.StatusSkipped:   0,
}

func updateWorkflowStatus(task *types.WorkflowTask) {
	// a run revoked by a user is cancelled no matter what its jobs report
	if task.TaskRevoker != "" {
		task.Status = config.StatusCancelled
		return
	}
	if task.Status == config.StatusCancelled {
		return
	}

	workflowStatus := config.StatusPassed
	var worst int
	for i, job := range task.Jobs {
		code, ok := statusRank[job.Status]
		if !ok {
			code = -1
		}
		if i == 0 || code > worst {
			worst = code
		}
	}

	for status, code := range statusRank {
		if worst == code {
			workflowStatus = status
			break
		}
	}

	// unstable jobs were declared ignorable; the run itself passes
	if workflowStatus == config.StatusUnstable {
		workflowStatus = config.StatusPassed
	}
	// a run where every job was skipped still completed
	if workflowStatus == config.StatusSkipped {
		workflowStatus = config.StatusPassed
	}
	task.Status = workflowStatus
}
