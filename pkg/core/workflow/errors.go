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
	"strings"
)

// MalformedSpecError reports schema violations found while parsing a workflow
// definition document. Parse errors are fatal to the run; nothing executes.
type MalformedSpecError struct {
	Err error
}

func (e *MalformedSpecError) Error() string {
	return fmt.Sprintf("malformed workflow spec: %v", e.Err)
}

func (e *MalformedSpecError) Unwrap() error {
	return e.Err
}

// CycleDetectedError names at least one full cycle found in the needs graph.
type CycleDetectedError struct {
	// Cycle holds job names in order, with the first repeated at the end.
	Cycle []string
}

func (e *CycleDetectedError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// UnknownDependencyError reports a needs entry naming a job that does not
// exist in the spec.
type UnknownDependencyError struct {
	JobName    string
	Dependency string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("job %q needs unknown job %q", e.JobName, e.Dependency)
}
