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
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rudderci/rudder/pkg/config"
	"github.com/rudderci/rudder/pkg/core/workflow"
	"github.com/rudderci/rudder/pkg/core/workflowcontroller/jobcontroller"
	"github.com/rudderci/rudder/pkg/tool/metrics"
	"github.com/rudderci/rudder/pkg/types"
)

// jobVerdict is the scheduler's dispatch decision for a pending job.
type jobVerdict int

const (
	verdictWait jobVerdict = iota
	verdictRun
	verdictSkip
	verdictCancel
)

// dagScheduler walks the run graph and dispatches jobs whose dependencies
// are settled, keeping at most concurrency of them running. Ready jobs are
// dispatched first-ready-first-dispatched; among jobs becoming ready at the
// same time, declaration order wins.
//
// A dispatched JobTask belongs to its goroutine until it comes back on the
// done channel; the scheduler tracks dispatch and terminal states in its own
// maps and never reads a running job's fields.
type dagScheduler struct {
	task        *types.WorkflowTask
	graph       *workflow.RunGraph
	workflowCtx *types.WorkflowTaskCtx
	deps        *jobcontroller.RunDeps
	concurrency int
	logger      *zap.SugaredLogger
	ackJob      func(*types.JobTask)

	jobs       map[string]*types.JobTask
	dispatched map[string]bool
	statuses   map[string]config.Status
}

func newDAGScheduler(task *types.WorkflowTask, graph *workflow.RunGraph, workflowCtx *types.WorkflowTaskCtx, deps *jobcontroller.RunDeps, concurrency int, logger *zap.SugaredLogger, ackJob func(*types.JobTask)) *dagScheduler {
	jobs := make(map[string]*types.JobTask, len(task.Jobs))
	for _, job := range task.Jobs {
		jobs[job.Name] = job
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &dagScheduler{
		task:        task,
		graph:       graph,
		workflowCtx: workflowCtx,
		deps:        deps,
		concurrency: concurrency,
		logger:      logger,
		ackJob:      ackJob,
		jobs:        jobs,
		dispatched:  map[string]bool{},
		statuses:    map[string]config.Status{},
	}
}

// Run blocks until every job reached a terminal state. On a job failure the
// not-yet-started transitive dependents are skipped; with fail-fast enabled
// the whole run is cancelled instead and running jobs are told to stop.
func (s *dagScheduler) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan *types.JobTask)
	running := 0
	finished := 0
	total := len(s.task.Jobs)
	aborting := false

	metrics.PendingJobs.Add(float64(total))

	for finished < total {
		progressed := true
		for progressed {
			progressed = false
			for _, name := range s.graph.Order() {
				if s.dispatched[name] || s.statuses[name] != "" {
					continue
				}
				job := s.jobs[name]

				verdict, cause := s.settle(job, aborting || ctx.Err() != nil)
				switch verdict {
				case verdictWait:
				case verdictSkip:
					s.finishWithoutRunning(job, config.StatusSkipped, fmt.Sprintf("skipped because dependency %s did not succeed", cause))
					finished++
					progressed = true
				case verdictCancel:
					s.finishWithoutRunning(job, config.StatusCancelled, "run aborted before job started")
					finished++
					progressed = true
				case verdictRun:
					if running >= s.concurrency {
						continue
					}
					job.Status = config.StatusReady
					s.ackJob(job)
					s.dispatched[name] = true
					running++
					metrics.PendingJobs.Dec()
					metrics.RunningJobs.Inc()
					go func(j *types.JobTask) {
						jobcontroller.RunJob(ctx, j, s.workflowCtx, s.deps, s.logger, func() { s.ackJob(j) })
						done <- j
					}(job)
					progressed = true
				}
			}
		}

		if running == 0 {
			if finished < total {
				// every remaining job waits on something that can no longer
				// finish; an acyclic graph makes this unreachable
				s.logger.Errorf("scheduler stalled with %d jobs unfinished", total-finished)
				return
			}
			break
		}

		job := <-done
		running--
		finished++
		s.statuses[job.Name] = job.Status
		metrics.RunningJobs.Dec()

		if job.Status.Failed() && s.workflowCtx.FailFast && !aborting {
			s.logger.Infof("job %s failed, fail-fast cancels the run", job.Name)
			aborting = true
			cancel()
		}
	}
}

func (s *dagScheduler) finishWithoutRunning(job *types.JobTask, status config.Status, reason string) {
	now := time.Now().Unix()
	job.Status = status
	job.Error = reason
	job.StartTime = now
	job.EndTime = now
	s.statuses[job.Name] = status
	metrics.PendingJobs.Dec()
	s.logger.Infof("job %s finished without running: %s", job.Name, status)
	s.ackJob(job)
}

// settle decides what to do with a pending job given the terminal states of
// its dependencies.
func (s *dagScheduler) settle(job *types.JobTask, aborting bool) (jobVerdict, string) {
	failedDep := ""
	for _, dep := range s.graph.Needs(job.Name) {
		depStatus, settled := s.statuses[dep]
		if !settled {
			return verdictWait, ""
		}
		switch depStatus {
		case config.StatusPassed, config.StatusUnstable:
		case config.StatusCancelled:
			return verdictCancel, dep
		default:
			failedDep = dep
		}
	}

	if aborting {
		return verdictCancel, ""
	}
	if failedDep != "" && !job.RunOnDependencyFailure {
		return verdictSkip, failedDep
	}
	return verdictRun, ""
}
