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

// WorkflowSpec is the parsed, immutable form of a workflow definition
// document. Jobs keep their declaration order; the scheduler relies on it to
// break ties among ready jobs.
type WorkflowSpec struct {
	Name        string            `bson:"name"         json:"name"         yaml:"name"`
	DisplayName string            `bson:"display_name" json:"display_name" yaml:"display_name"`
	Env         map[string]string `bson:"env"          json:"env"          yaml:"env"`
	Triggers    []*TriggerSpec    `bson:"triggers"     json:"triggers"     yaml:"triggers"`
	Secrets     []*SecretSpec     `bson:"secrets"      json:"secrets"      yaml:"secrets"`
	Concurrency int               `bson:"concurrency"  json:"concurrency"  yaml:"concurrency"`
	FailFast    bool              `bson:"fail_fast"    json:"fail_fast"    yaml:"fail_fast"`
	Jobs        []*JobSpec        `bson:"jobs"         json:"jobs"         yaml:"jobs"`
}

type JobSpec struct {
	Name string `bson:"name" json:"name" yaml:"name"`
	// Needs lists jobs that must reach a terminal state before this one may
	// start.
	Needs []string          `bson:"needs"           json:"needs"           yaml:"needs"`
	If    string            `bson:"if"              json:"if"              yaml:"if"`
	Env   map[string]string `bson:"env"             json:"env"             yaml:"env"`
	// RunOnDependencyFailure opts the job into running even when one of its
	// dependencies failed.
	RunOnDependencyFailure bool            `bson:"run_on_dependency_failure" json:"run_on_dependency_failure" yaml:"run_on_dependency_failure"`
	TimeoutMinutes         int             `bson:"timeout_minutes"           json:"timeout_minutes"           yaml:"timeout_minutes"`
	ErrorPolicy            *JobErrorPolicy `bson:"error_policy"              json:"error_policy"              yaml:"error_policy"`
	RunsOn                 *RuntimeInfo    `bson:"runs_on"                   json:"runs_on"                   yaml:"runs_on"`
	Steps                  []*StepSpec     `bson:"steps"                     json:"steps"                     yaml:"steps"`
}

// RuntimeInfo describes the target execution environment of a job. The engine
// treats it as an opaque descriptor handed to the executor.
type RuntimeInfo struct {
	Label string `bson:"label" json:"label" yaml:"label"`
	Host  string `bson:"host"  json:"host"  yaml:"host"`
}

type JobErrorPolicy struct {
	Policy       config.JobErrorPolicy `bson:"policy"        json:"policy"        yaml:"policy"`
	MaximumRetry int                   `bson:"maximum_retry" json:"maximum_retry" yaml:"maximum_retry"`
}

type StepSpec struct {
	Name            string          `bson:"name"              json:"name"              yaml:"name"`
	StepType        config.StepType `bson:"type"              json:"type"              yaml:"type"`
	If              string          `bson:"if"                json:"if"                yaml:"if"`
	ContinueOnError bool            `bson:"continue_on_error" json:"continue_on_error" yaml:"continue_on_error"`
	TimeoutSeconds  int             `bson:"timeout_seconds"   json:"timeout_seconds"   yaml:"timeout_seconds"`
	// Outputs declares names this step publishes into the run context on
	// success.
	Outputs []string `bson:"outputs" json:"outputs" yaml:"outputs"`
	// Spec holds the type-specific payload; step controllers re-marshal it
	// into their own spec struct.
	Spec interface{} `bson:"spec" json:"spec" yaml:"spec"`
}

type TriggerSpec struct {
	Type config.TriggerType `bson:"type"     json:"type"     yaml:"type"`
	// Schedule is a cron expression, required for cron triggers.
	Schedule string `bson:"schedule" json:"schedule" yaml:"schedule"`
}

// SecretSpec names a secret injected into job contexts at dispatch time. The
// value either comes inline or is resolved from the engine's environment.
type SecretSpec struct {
	Name    string `bson:"name"     json:"name"     yaml:"name"`
	Value   string `bson:"-"        json:"-"        yaml:"value"`
	FromEnv string `bson:"from_env" json:"from_env" yaml:"from_env"`
}
