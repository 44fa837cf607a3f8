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

package config

// Status represents the lifecycle state of a run, a job or a step.
type Status string

const (
	StatusPending   Status = "pending"
	StatusReady     Status = "ready"
	StatusPrepare   Status = "prepare"
	StatusRunning   Status = "running"
	StatusPassed    Status = "passed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
	StatusCancelled Status = "cancelled"
	StatusTimeout   Status = "timeout"
	// StatusUnstable marks a job that failed but was declared ignorable.
	StatusUnstable Status = "unstable"
)

func FailedStatus() []Status {
	return []Status{StatusFailed, StatusTimeout, StatusCancelled}
}

func CompletedStatus() []Status {
	return []Status{StatusPassed, StatusFailed, StatusSkipped, StatusCancelled, StatusTimeout, StatusUnstable}
}

func InCompletedStatus() []Status {
	return []Status{StatusPending, StatusReady, StatusPrepare, StatusRunning, ""}
}

func (s Status) Done() bool {
	for _, status := range CompletedStatus() {
		if s == status {
			return true
		}
	}
	return false
}

func (s Status) Failed() bool {
	for _, status := range FailedStatus() {
		if s == status {
			return true
		}
	}
	return false
}

// JobErrorPolicy decides what happens to a job after its last step failed.
type JobErrorPolicy string

const (
	JobErrorPolicyStop        JobErrorPolicy = "stop"
	JobErrorPolicyIgnoreError JobErrorPolicy = "ignore_error"
	JobErrorPolicyRetry       JobErrorPolicy = "retry"
)

// StepType selects the executable capability backing a step.
type StepType string

const (
	StepShell            StepType = "shell"
	StepAction           StepType = "action"
	StepRemoteTransfer   StepType = "remote_transfer"
	StepArchive          StepType = "archive"
	StepDownloadArtifact StepType = "download_artifact"
)

// TriggerType is the kind of a workflow trigger.
type TriggerType string

const (
	TriggerCron   TriggerType = "cron"
	TriggerManual TriggerType = "manual"
)

const (
	// VariableRegEx matches unrendered {{.xxx}} variables left in a job task.
	VariableRegEx = `\{\{\s*\.[a-zA-Z0-9_\.]+\s*\}\}`
)
