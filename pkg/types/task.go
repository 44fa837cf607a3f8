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

package types

import (
	"github.com/rudderci/rudder/pkg/config"
)

// WorkflowTask is one end-to-end execution of a WorkflowSpec. It is owned by
// a single workflow controller; everything else reads it through the task
// store.
type WorkflowTask struct {
	RunID         string            `bson:"run_id"         json:"run_id"`
	WorkflowName  string            `bson:"workflow_name"  json:"workflow_name"`
	DisplayName   string            `bson:"display_name"   json:"display_name"`
	TaskID        int64             `bson:"task_id"        json:"task_id"`
	Status        config.Status     `bson:"status"         json:"status"`
	Error         string            `bson:"error"          json:"error"`
	FailFast      bool              `bson:"fail_fast"      json:"fail_fast"`
	Concurrency   int               `bson:"concurrency"    json:"concurrency"`
	GlobalContext map[string]string `bson:"global_context" json:"global_context"`
	Jobs          []*JobTask        `bson:"jobs"           json:"jobs"`
	TaskRevoker   string            `bson:"task_revoker"   json:"task_revoker,omitempty"`
	CreateTime    int64             `bson:"create_time"    json:"create_time"`
	StartTime     int64             `bson:"start_time"     json:"start_time"`
	EndTime       int64             `bson:"end_time"       json:"end_time"`
}

// JobTask is the mutable execution record of one job. Only the job controller
// running it writes to it.
type JobTask struct {
	Name  string            `bson:"name"  json:"name"`
	Key   string            `bson:"key"   json:"key"`
	Needs []string          `bson:"needs" json:"needs"`
	If    string            `bson:"if"    json:"if"`
	Env   map[string]string `bson:"env"   json:"env"`

	RunOnDependencyFailure bool            `bson:"run_on_dependency_failure" json:"run_on_dependency_failure"`
	TimeoutMinutes         int             `bson:"timeout_minutes"           json:"timeout_minutes"`
	ErrorPolicy            *JobErrorPolicy `bson:"error_policy"              json:"error_policy"`
	RunsOn                 *RuntimeInfo    `bson:"runs_on"                   json:"runs_on"`

	Status     config.Status `bson:"status"      json:"status"`
	Error      string        `bson:"error"       json:"error"`
	StartTime  int64         `bson:"start_time"  json:"start_time"`
	EndTime    int64         `bson:"end_time"    json:"end_time"`
	RetryCount int           `bson:"retry_count" json:"retry_count"`
	Attempts   []*JobAttempt `bson:"attempts"    json:"attempts"`

	Workspace string            `bson:"workspace" json:"workspace"`
	Outputs   map[string]string `bson:"outputs"   json:"outputs"`
	Steps     []*StepTask       `bson:"steps"     json:"steps"`
}

// JobAttempt records one dispatch of a job, including retries.
type JobAttempt struct {
	Number    int           `bson:"number"     json:"number"`
	Status    config.Status `bson:"status"     json:"status"`
	Error     string        `bson:"error"      json:"error"`
	StartTime int64         `bson:"start_time" json:"start_time"`
	EndTime   int64         `bson:"end_time"   json:"end_time"`
}

type StepTask struct {
	Name            string          `bson:"name"              json:"name"`
	StepType        config.StepType `bson:"type"              json:"type"`
	If              string          `bson:"if"                json:"if"`
	ContinueOnError bool            `bson:"continue_on_error" json:"continue_on_error"`
	TimeoutSeconds  int             `bson:"timeout_seconds"   json:"timeout_seconds"`
	Outputs         []string        `bson:"outputs"           json:"outputs"`
	Spec            interface{}     `bson:"spec"              json:"spec"`

	Status    config.Status `bson:"status"     json:"status"`
	Error     string        `bson:"error"      json:"error"`
	StartTime int64         `bson:"start_time" json:"start_time"`
	EndTime   int64         `bson:"end_time"   json:"end_time"`
}

// WorkflowTaskCtx carries shared run state into job and step controllers.
// Context access goes through callbacks so the owning workflow controller
// keeps the only mutable reference.
type WorkflowTaskCtx struct {
	RunID         string
	WorkflowName  string
	TaskID        int64
	WorkspaceRoot string
	FailFast      bool

	GlobalContextGet  func(key string) (string, bool)
	GlobalContextSet  func(key, value string)
	GlobalContextEach func(f func(k, v string) bool)
}
