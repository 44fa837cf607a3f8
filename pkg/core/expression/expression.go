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

// Package expression evaluates run conditions declared on jobs and steps.
// Conditions are govaluate expressions over the accumulated run state,
// accessed through a small set of functions:
//
//	status("build") == "passed"
//	output("build", "image") != ""
//	env("DEPLOY_TARGET") == "staging"
package expression

import (
	"encoding/json"
	"fmt"

	"github.com/Knetic/govaluate"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/rudderci/rudder/pkg/types"
)

// Context is a point-in-time snapshot of run state a condition evaluates
// against. Snapshots are cheap; the step runner takes a fresh one before
// every step.
type Context struct {
	state []byte
}

type snapshot struct {
	Workflow string            `json:"workflow"`
	Status   string            `json:"status"`
	Env      map[string]string `json:"env"`
	Jobs     []*types.JobTask  `json:"jobs"`
}

func NewContext(task *types.WorkflowTask, env map[string]string) (*Context, error) {
	state, err := json.Marshal(&snapshot{
		Workflow: task.WorkflowName,
		Status:   string(task.Status),
		Env:      env,
		Jobs:     task.Jobs,
	})
	if err != nil {
		return nil, errors.Wrap(err, "snapshot run state")
	}
	return &Context{state: state}, nil
}

// Evaluate runs the condition against the snapshot. An empty condition is
// true. A condition that does not yield a boolean is an error, not false, so
// typos fail loudly.
func (c *Context) Evaluate(condition string) (bool, error) {
	if condition == "" {
		return true, nil
	}

	expr, err := govaluate.NewEvaluableExpressionWithFunctions(condition, c.functions())
	if err != nil {
		return false, errors.Wrapf(err, "parse condition %q", condition)
	}

	result, err := expr.Evaluate(nil)
	if err != nil {
		return false, errors.Wrapf(err, "evaluate condition %q", condition)
	}

	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q evaluated to %v, want a boolean", condition, result)
	}
	return b, nil
}

func (c *Context) functions() map[string]govaluate.ExpressionFunction {
	return map[string]govaluate.ExpressionFunction{
		"status": func(args ...interface{}) (interface{}, error) {
			job, err := oneString("status", args)
			if err != nil {
				return nil, err
			}
			return c.lookup(fmt.Sprintf(`jobs.#(name==%q).status`, job)), nil
		},
		"output": func(args ...interface{}) (interface{}, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("output() takes a job name and an output name")
			}
			job, ok1 := args[0].(string)
			name, ok2 := args[1].(string)
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("output() arguments must be strings")
			}
			return c.lookup(fmt.Sprintf(`jobs.#(name==%q).outputs.%s`, job, name)), nil
		},
		"env": func(args ...interface{}) (interface{}, error) {
			key, err := oneString("env", args)
			if err != nil {
				return nil, err
			}
			return c.lookup("env." + key), nil
		},
		"workflow": func(args ...interface{}) (interface{}, error) {
			return c.lookup("workflow"), nil
		},
	}
}

func (c *Context) lookup(path string) string {
	return gjson.GetBytes(c.state, path).String()
}

func oneString(fn string, args []interface{}) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%s() takes exactly one argument", fn)
	}
	s, ok := args[0].(string)
	if !ok {
		return "", fmt.Errorf("%s() argument must be a string", fn)
	}
	return s, nil
}
