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

	"github.com/rudderci/rudder/pkg/types"
)

func specWithJobs(jobs ...*types.JobSpec) *types.WorkflowSpec {
	return &types.WorkflowSpec{Name: "w", Jobs: jobs}
}

func TestBuildRunGraphTopologicalOrder(t *testing.T) {
	g, err := BuildRunGraph(specWithJobs(
		&types.JobSpec{Name: "deploy", Needs: []string{"build", "test"}},
		&types.JobSpec{Name: "build"},
		&types.JobSpec{Name: "test", Needs: []string{"build"}},
	))
	assert.NoError(t, err)
	assert.Equal(t, []string{"build", "test", "deploy"}, g.Order())
	assert.Equal(t, []string{"build"}, g.Needs("test"))
	assert.ElementsMatch(t, []string{"test", "deploy"}, g.Dependents("build"))
}

func TestBuildRunGraphDeclarationOrderBreaksTies(t *testing.T) {
	// b and a are both ready at the start; b is declared first so it comes
	// first in the order.
	g, err := BuildRunGraph(specWithJobs(
		&types.JobSpec{Name: "b"},
		&types.JobSpec{Name: "a"},
		&types.JobSpec{Name: "c", Needs: []string{"a", "b"}},
	))
	assert.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, g.Order())
}

func TestBuildRunGraphDuplicateNeedsAreDeduplicated(t *testing.T) {
	g, err := BuildRunGraph(specWithJobs(
		&types.JobSpec{Name: "build"},
		&types.JobSpec{Name: "test", Needs: []string{"build", "build"}},
	))
	assert.NoError(t, err)
	assert.Equal(t, []string{"build"}, g.Needs("test"))
	assert.Equal(t, []string{"build", "test"}, g.Order())
}

func TestBuildRunGraphUnknownDependency(t *testing.T) {
	_, err := BuildRunGraph(specWithJobs(
		&types.JobSpec{Name: "test", Needs: []string{"ghost"}},
	))
	assert.Error(t, err)

	var unknown *UnknownDependencyError
	assert.True(t, errors.As(err, &unknown))
	assert.Equal(t, "test", unknown.JobName)
	assert.Equal(t, "ghost", unknown.Dependency)
}

func TestBuildRunGraphCycleDetection(t *testing.T) {
	_, err := BuildRunGraph(specWithJobs(
		&types.JobSpec{Name: "a", Needs: []string{"c"}},
		&types.JobSpec{Name: "b", Needs: []string{"a"}},
		&types.JobSpec{Name: "c", Needs: []string{"b"}},
	))
	assert.Error(t, err)

	var cycle *CycleDetectedError
	assert.True(t, errors.As(err, &cycle))
	// the cycle names every participating job and closes on its entry
	assert.Len(t, cycle.Cycle, 4)
	assert.Equal(t, cycle.Cycle[0], cycle.Cycle[len(cycle.Cycle)-1])
	assert.ElementsMatch(t, []string{"a", "b", "c"}, cycle.Cycle[:3])
}

func TestBuildRunGraphSelfCycle(t *testing.T) {
	_, err := BuildRunGraph(specWithJobs(
		&types.JobSpec{Name: "a", Needs: []string{"a"}},
	))
	assert.Error(t, err)

	var cycle *CycleDetectedError
	assert.True(t, errors.As(err, &cycle))
	assert.Equal(t, []string{"a", "a"}, cycle.Cycle)
}

func TestTransitiveDependents(t *testing.T) {
	g, err := BuildRunGraph(specWithJobs(
		&types.JobSpec{Name: "build"},
		&types.JobSpec{Name: "test", Needs: []string{"build"}},
		&types.JobSpec{Name: "deploy", Needs: []string{"test"}},
		&types.JobSpec{Name: "docs"},
	))
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"test", "deploy"}, g.TransitiveDependents("build"))
	assert.Empty(t, g.TransitiveDependents("docs"))
}
