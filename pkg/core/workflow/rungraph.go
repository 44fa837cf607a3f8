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
	"github.com/samber/lo"

	"github.com/rudderci/rudder/pkg/types"
)

// RunGraph is the DAG derived from a WorkflowSpec: nodes are jobs, edges are
// needs relations. It is built once per run and never mutated afterwards.
type RunGraph struct {
	jobs       map[string]*types.JobSpec
	order      []string
	needs      map[string][]string
	dependents map[string][]string
}

// BuildRunGraph validates the needs relation and computes a topological order
// with Kahn's algorithm. Ties among ready jobs are broken by declaration
// order so execution order is deterministic for a given document.
func BuildRunGraph(spec *types.WorkflowSpec) (*RunGraph, error) {
	g := &RunGraph{
		jobs:       make(map[string]*types.JobSpec, len(spec.Jobs)),
		needs:      make(map[string][]string, len(spec.Jobs)),
		dependents: make(map[string][]string, len(spec.Jobs)),
	}

	declIndex := make(map[string]int, len(spec.Jobs))
	for i, job := range spec.Jobs {
		g.jobs[job.Name] = job
		declIndex[job.Name] = i
	}

	indegree := make(map[string]int, len(spec.Jobs))
	for _, job := range spec.Jobs {
		needs := lo.Uniq(job.Needs)
		for _, dep := range needs {
			if _, ok := g.jobs[dep]; !ok {
				return nil, &UnknownDependencyError{JobName: job.Name, Dependency: dep}
			}
			g.dependents[dep] = append(g.dependents[dep], job.Name)
		}
		g.needs[job.Name] = needs
		indegree[job.Name] = len(needs)
	}

	// Kahn's algorithm. The ready set is scanned in declaration order, which
	// doubles as the tie-breaker.
	visited := make(map[string]bool, len(spec.Jobs))
	for len(g.order) < len(spec.Jobs) {
		next := ""
		for _, job := range spec.Jobs {
			if !visited[job.Name] && indegree[job.Name] == 0 {
				next = job.Name
				break
			}
		}
		if next == "" {
			return nil, &CycleDetectedError{Cycle: g.findCycle(visited)}
		}

		visited[next] = true
		g.order = append(g.order, next)
		for _, dependent := range g.dependents[next] {
			indegree[dependent]--
		}
	}

	return g, nil
}

// findCycle walks needs edges among the jobs Kahn could not order until a
// name repeats, then returns that cycle with the entry job repeated at the
// end.
func (g *RunGraph) findCycle(visited map[string]bool) []string {
	start := ""
	for name := range g.jobs {
		if !visited[name] {
			start = name
			break
		}
	}

	seen := map[string]int{}
	path := []string{}
	current := start
	for {
		if pos, ok := seen[current]; ok {
			cycle := append([]string{}, path[pos:]...)
			return append(cycle, current)
		}
		seen[current] = len(path)
		path = append(path, current)

		for _, dep := range g.needs[current] {
			if !visited[dep] {
				current = dep
				break
			}
		}
	}
}

// Order returns job names in a valid topological order.
func (g *RunGraph) Order() []string {
	return g.order
}

// Job returns the spec of the named job.
func (g *RunGraph) Job(name string) *types.JobSpec {
	return g.jobs[name]
}

// Needs returns the deduplicated dependencies of the named job.
func (g *RunGraph) Needs(name string) []string {
	return g.needs[name]
}

// Dependents returns the jobs that directly need the named job.
func (g *RunGraph) Dependents(name string) []string {
	return g.dependents[name]
}

// TransitiveDependents returns every job downstream of the named job.
func (g *RunGraph) TransitiveDependents(name string) []string {
	result := []string{}
	queue := append([]string{}, g.dependents[name]...)
	seen := map[string]bool{}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if seen[current] {
			continue
		}
		seen[current] = true
		result = append(result, current)
		queue = append(queue, g.dependents[current]...)
	}
	return result
}
