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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rudderci/rudder/pkg/config"
)

func TestParseWorkflowSpec(t *testing.T) {
	spec, err := ParseWorkflowSpec([]byte(`
name: release
env:
  REGION: eu-west-1
jobs:
  - name: build
    steps:
      - name: compile
        spec:
          scripts:
            - make build
  - name: test
    needs: [build]
    steps:
      - name: unit
        type: shell
        spec:
          scripts:
            - make test
`))
	assert.NoError(t, err)
	assert.Equal(t, "release", spec.Name)
	assert.Equal(t, "release", spec.DisplayName)
	assert.Equal(t, "eu-west-1", spec.Env["REGION"])
	assert.Len(t, spec.Jobs, 2)
	assert.Equal(t, []string{"build"}, spec.Jobs[1].Needs)
	// shell is the default step type
	assert.Equal(t, config.StepShell, spec.Jobs[0].Steps[0].StepType)
}

func TestParseWorkflowSpecToleratesUnknownKeys(t *testing.T) {
	spec, err := ParseWorkflowSpec([]byte(`
name: fwd-compat
some_future_field: 42
jobs:
  - name: build
    another_future_field: hello
    steps:
      - name: compile
        spec:
          scripts: [make]
`))
	assert.NoError(t, err)
	assert.Equal(t, "fwd-compat", spec.Name)
}

func TestParseWorkflowSpecMalformedDocument(t *testing.T) {
	_, err := ParseWorkflowSpec([]byte("jobs: [\n"))
	assert.Error(t, err)

	var malformed *MalformedSpecError
	assert.True(t, errors.As(err, &malformed))
}

func TestParseWorkflowSpecValidation(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
	}{
		{
			name: "missing workflow name",
			doc: `
jobs:
  - name: build
    steps:
      - name: compile
`,
		},
		{
			name: "no jobs",
			doc:  `name: empty`,
		},
		{
			name: "job without steps",
			doc: `
name: w
jobs:
  - name: build
`,
		},
		{
			name: "duplicated job names",
			doc: `
name: w
jobs:
  - name: build
    steps: [{name: s}]
  - name: build
    steps: [{name: s}]
`,
		},
		{
			name: "duplicated step names",
			doc: `
name: w
jobs:
  - name: build
    steps: [{name: s}, {name: s}]
`,
		},
		{
			name: "unknown step type",
			doc: `
name: w
jobs:
  - name: build
    steps: [{name: s, type: teleport}]
`,
		},
		{
			name: "retry policy without maximum_retry",
			doc: `
name: w
jobs:
  - name: build
    error_policy:
      policy: retry
    steps: [{name: s}]
`,
		},
		{
			name: "duplicated secret names",
			doc: `
name: w
secrets:
  - name: TOKEN
    value: a
  - name: TOKEN
    value: b
jobs:
  - name: build
    steps: [{name: s}]
`,
		},
		{
			name: "invalid cron schedule",
			doc: `
name: w
triggers:
  - type: cron
    schedule: "not cron"
jobs:
  - name: build
    steps: [{name: s}]
`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseWorkflowSpec([]byte(tc.doc))
			assert.Error(t, err)
		})
	}
}

func TestParseWorkflowSpecCronTrigger(t *testing.T) {
	spec, err := ParseWorkflowSpec([]byte(`
name: nightly
triggers:
  - type: cron
    schedule: "0 2 * * *"
  - type: manual
jobs:
  - name: build
    steps: [{name: s}]
`))
	assert.NoError(t, err)
	assert.Len(t, spec.Triggers, 2)
	assert.Equal(t, config.TriggerCron, spec.Triggers[0].Type)
}
