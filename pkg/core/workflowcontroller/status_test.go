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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rudderci/rudder/pkg/config"
	"github.com/rudderci/rudder/pkg/types"
)

func taskWithJobStatuses(statuses ...config.Status) *types.WorkflowTask {
	task := &types.WorkflowTask{Status: config.StatusRunning}
	for i, status := range statuses {
		task.Jobs = append(task.Jobs, &types.JobTask{Name: string(rune('a' + i)), Status: status})
	}
	return task
}

func TestUpdateWorkflowStatus(t *testing.T) {
	testCases := []struct {
		name     string
		statuses []config.Status
		want     config.Status
	}{
		{
			name:     "all passed",
			statuses: []config.Status{config.StatusPassed, config.StatusPassed},
			want:     config.StatusPassed,
		},
		{
			name:     "one failed",
			statuses: []config.Status{config.StatusPassed, config.StatusFailed},
			want:     config.StatusFailed,
		},
		{
			name:     "timeout beats passed",
			statuses: []config.Status{config.StatusTimeout, config.StatusPassed},
			want:     config.StatusTimeout,
		},
		{
			name:     "failure beats cancellation",
			statuses: []config.Status{config.StatusFailed, config.StatusCancelled},
			want:     config.StatusFailed,
		},
		{
			name:     "cancellation without failure",
			statuses: []config.Status{config.StatusPassed, config.StatusCancelled},
			want:     config.StatusCancelled,
		},
		{
			name:     "unstable jobs leave the run passed",
			statuses: []config.Status{config.StatusUnstable, config.StatusPassed},
			want:     config.StatusPassed,
		},
		{
			name:     "all skipped still completes",
			statuses: []config.Status{config.StatusSkipped, config.StatusSkipped},
			want:     config.StatusPassed,
		},
		{
			name:     "skipped next to passed",
			statuses: []config.Status{config.StatusSkipped, config.StatusPassed},
			want:     config.StatusPassed,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			task := taskWithJobStatuses(tc.statuses...)
			updateWorkflowStatus(task)
			assert.Equal(t, tc.want, task.Status)
		})
	}
}

func TestUpdateWorkflowStatusRevokedRunIsCancelled(t *testing.T) {
	task := taskWithJobStatuses(config.StatusFailed, config.StatusCancelled)
	task.TaskRevoker = "someone"
	updateWorkflowStatus(task)
	assert.Equal(t, config.StatusCancelled, task.Status)
}
