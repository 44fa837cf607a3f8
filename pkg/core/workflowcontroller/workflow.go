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
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rudderci/rudder/pkg/config"
	"github.com/rudderci/rudder/pkg/core/expression"
	"github.com/rudderci/rudder/pkg/core/taskstore"
	"github.com/rudderci/rudder/pkg/core/workflow"
	"github.com/rudderci/rudder/pkg/core/workflowcontroller/jobcontroller"
	"github.com/rudderci/rudder/pkg/tool/metrics"
	"github.com/rudderci/rudder/pkg/types"
	"github.com/rudderci/rudder/pkg/util"
)

var cancelChannelMap sync.Map

type workflowCtl struct {
	workflowTask       *types.WorkflowTask
	graph              *workflow.RunGraph
	deps               *jobcontroller.RunDeps
	store              taskstore.Store
	globalContextMutex sync.RWMutex
	logger             *zap.SugaredLogger
	ack                func()

	// persisted is the task image handed to the store. Job goroutines never
	// share their live JobTask with the store; each ack clones the caller's
	// own job into persisted under persistMutex, so persisting one job can
	// never observe another job mid-write.
	persistMutex sync.Mutex
	persisted    *types.WorkflowTask
}

func NewWorkflowController(workflowTask *types.WorkflowTask, graph *workflow.RunGraph, deps *jobcontroller.RunDeps, store taskstore.Store, logger *zap.SugaredLogger) *workflowCtl {
	ctl := &workflowCtl{
		workflowTask: workflowTask,
		graph:        graph,
		deps:         deps,
		store:        store,
		logger:       logger,
	}
	ctl.ack = ctl.updateWorkflowTask
	return ctl
}

// CancelWorkflowTask asks a running task to stop. The cancellation signal
// propagates to every running job context; jobs terminate their current step
// and remaining work is marked cancelled.
func CancelWorkflowTask(ctx context.Context, userName, runID string, store taskstore.Store, logger *zap.SugaredLogger) error {
	t, err := store.Find(ctx, runID)
	if err != nil {
		logger.Errorf("[%s] run %s not found", userName, runID)
		return err
	}

	if t.Status.Done() {
		return fmt.Errorf("run %s is already %s, cannot cancel", runID, t.Status)
	}

	t.TaskRevoker = userName
	if err := store.Update(ctx, t); err != nil {
		logger.Errorf("[%s] update run %s error: %v", userName, runID, err)
	}

	logger.Infof("[%s] cancelling run %s", userName, runID)

	value, ok := cancelChannelMap.Load(runID)
	if !ok {
		return fmt.Errorf("no cancel handle found for run %s", runID)
	}
	if f, ok := value.(context.CancelFunc); ok {
		f()
		return nil
	}
	return fmt.Errorf("cancel func type mismatched for run %s", runID)
}

// Run executes the task's jobs in dependency order with at most concurrency
// of them running at once, then derives the final run status.
func (c *workflowCtl) Run(ctx context.Context, concurrency int) {
	if c.workflowTask.GlobalContext == nil {
		c.workflowTask.GlobalContext = make(map[string]string)
	}
	persisted := &types.WorkflowTask{}
	if err := util.IToi(c.workflowTask, persisted); err != nil {
		c.logger.Errorf("snapshot task %s for persistence failed, error: %v", c.workflowTask.RunID, err)
		return
	}
	c.persisted = persisted

	c.workflowTask.Status = config.StatusRunning
	c.workflowTask.StartTime = time.Now().Unix()
	c.ack()
	c.logger.Infof("start workflow: %s, run: %s, status: %s", c.workflowTask.WorkflowName, c.workflowTask.RunID, c.workflowTask.Status)

	metrics.RunningWorkflows.Inc()
	defer func() {
		metrics.RunningWorkflows.Dec()
		c.workflowTask.EndTime = time.Now().Unix()
		c.logger.Infof("finish workflow: %s, run: %s, status: %s", c.workflowTask.WorkflowName, c.workflowTask.RunID, c.workflowTask.Status)
		metrics.WorkflowResultTotal.WithLabelValues(c.workflowTask.WorkflowName, string(c.workflowTask.Status)).Inc()
		c.ack()
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cancelChannelMap.Store(c.workflowTask.RunID, cancel)
	defer cancelChannelMap.Delete(c.workflowTask.RunID)

	workflowCtx := &types.WorkflowTaskCtx{
		RunID:             c.workflowTask.RunID,
		WorkflowName:      c.workflowTask.WorkflowName,
		TaskID:            c.workflowTask.TaskID,
		WorkspaceRoot:     c.deps.WorkspaceRoot,
		FailFast:          c.workflowTask.FailFast,
		GlobalContextGet:  c.getGlobalContext,
		GlobalContextSet:  c.setGlobalContext,
		GlobalContextEach: c.globalContextEach,
	}
	c.deps.Snapshot = c.snapshot

	scheduler := newDAGScheduler(c.workflowTask, c.graph, workflowCtx, c.deps, concurrency, c.logger, c.ackJob)
	scheduler.Run(ctx)

	// revocation is written to the store by the cancelling request; pull it
	// onto the live task before deriving the final status
	if stored, err := c.store.Find(context.Background(), c.workflowTask.RunID); err == nil && stored.TaskRevoker != "" {
		c.workflowTask.TaskRevoker = stored.TaskRevoker
	}
	updateWorkflowStatus(c.workflowTask)

	if c.workflowTask.Status.Done() {
		for _, job := range c.workflowTask.Jobs {
			metrics.JobResultTotal.WithLabelValues(c.workflowTask.WorkflowName, string(job.Status)).Inc()
		}
	}
}

// snapshot returns the run state conditions evaluate against. It prefers the
// store copy, which is consistent at ack boundaries, over the live task.
func (c *workflowCtl) snapshot() (*expression.Context, error) {
	task, err := c.store.Find(context.Background(), c.workflowTask.RunID)
	if err != nil {
		return nil, err
	}
	return expression.NewContext(task, c.deps.Env)
}

// updateWorkflowTask persists run-level state. It is only called from the
// controller goroutine; run-level fields have no other writer.
func (c *workflowCtl) updateWorkflowTask() {
	c.persistMutex.Lock()
	defer c.persistMutex.Unlock()

	c.persisted.Status = c.workflowTask.Status
	c.persisted.Error = c.workflowTask.Error
	c.persisted.TaskRevoker = c.workflowTask.TaskRevoker
	c.persisted.StartTime = c.workflowTask.StartTime
	c.persisted.EndTime = c.workflowTask.EndTime
	c.persisted.GlobalContext = c.copyGlobalContext()
	c.flushPersisted()
}

// ackJob persists one job's progress. The clone happens on the calling
// goroutine, which is the job's only writer; everything after goes through
// persistMutex.
func (c *workflowCtl) ackJob(job *types.JobTask) {
	copied := &types.JobTask{}
	if err := util.IToi(job, copied); err != nil {
		c.logger.Errorf("snapshot job %s for persistence failed, error: %v", job.Name, err)
		return
	}

	c.persistMutex.Lock()
	defer c.persistMutex.Unlock()

	for i, j := range c.persisted.Jobs {
		if j.Name == copied.Name {
			c.persisted.Jobs[i] = copied
			break
		}
	}
	c.persisted.GlobalContext = c.copyGlobalContext()
	c.flushPersisted()
}

// flushPersisted writes the persisted image to the store. Callers hold
// persistMutex.
func (c *workflowCtl) flushPersisted() {
	taskInColl, err := c.store.Find(context.Background(), c.persisted.RunID)
	if err != nil {
		c.logger.Errorf("find workflow task %s failed, error: %v", c.persisted.RunID, err)
		return
	}
	// Once a task is terminal in the store, late acks must not resurrect it.
	if taskInColl.Status.Done() && !c.persisted.Status.Done() {
		c.logger.Infof("%s:%d task already done, ack dropped", c.persisted.WorkflowName, c.persisted.TaskID)
		return
	}
	// revocation is written to the store by the cancelling request; carry it
	// so acks do not erase it
	if taskInColl.TaskRevoker != "" {
		c.persisted.TaskRevoker = taskInColl.TaskRevoker
	}
	if err := c.store.Update(context.Background(), c.persisted); err != nil {
		c.logger.Errorf("update workflow task failed, error: %v", err)
	}
}

func (c *workflowCtl) copyGlobalContext() map[string]string {
	c.globalContextMutex.RLock()
	defer c.globalContextMutex.RUnlock()
	copied := make(map[string]string, len(c.workflowTask.GlobalContext))
	for k, v := range c.workflowTask.GlobalContext {
		copied[k] = v
	}
	return copied
}

func (c *workflowCtl) getGlobalContext(key string) (string, bool) {
	c.globalContextMutex.RLock()
	defer c.globalContextMutex.RUnlock()
	v, existed := c.workflowTask.GlobalContext[key]
	return v, existed
}

func (c *workflowCtl) setGlobalContext(key, value string) {
	c.globalContextMutex.Lock()
	defer c.globalContextMutex.Unlock()
	c.workflowTask.GlobalContext[key] = value
}

func (c *workflowCtl) globalContextEach(f func(k, v string) bool) {
	c.globalContextMutex.RLock()
	defer c.globalContextMutex.RUnlock()
	for k, v := range c.workflowTask.GlobalContext {
		if !f(k, v) {
			return
		}
	}
}
