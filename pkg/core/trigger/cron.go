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

// Package trigger schedules workflow runs from their declared triggers.
// Only cron triggers need a service; manual triggers are just API or CLI
// calls.
package trigger

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rudderci/rudder/pkg/config"
	"github.com/rudderci/rudder/pkg/core/service"
	"github.com/rudderci/rudder/pkg/types"
)

// CronScheduler fires workflow runs on their cron triggers. Registered
// workflows survive until Unregister or Stop.
type CronScheduler struct {
	service *service.WorkflowService
	cron    *cron.Cron
	logger  *zap.SugaredLogger

	mu      sync.Mutex
	entries map[string][]cron.EntryID
}

func NewCronScheduler(svc *service.WorkflowService, logger *zap.SugaredLogger) *CronScheduler {
	return &CronScheduler{
		service: svc,
		cron:    cron.New(),
		logger:  logger,
		entries: map[string][]cron.EntryID{},
	}
}

// Register schedules every cron trigger of the spec. Re-registering a
// workflow replaces its previous schedules.
func (s *CronScheduler) Register(spec *types.WorkflowSpec) error {
	s.Unregister(spec.Name)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, trig := range spec.Triggers {
		if trig.Type != config.TriggerCron {
			continue
		}
		spec := spec
		id, err := s.cron.AddFunc(trig.Schedule, func() {
			s.logger.Infof("cron trigger fired for workflow %s", spec.Name)
			if _, err := s.service.RunWorkflow(context.Background(), spec); err != nil {
				s.logger.Errorf("scheduled run of workflow %s error: %v", spec.Name, err)
			}
		})
		if err != nil {
			return fmt.Errorf("schedule %q of workflow %s: %v", trig.Schedule, spec.Name, err)
		}
		s.entries[spec.Name] = append(s.entries[spec.Name], id)
	}
	return nil
}

func (s *CronScheduler) Unregister(workflowName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.entries[workflowName] {
		s.cron.Remove(id)
	}
	delete(s.entries, workflowName)
}

func (s *CronScheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for in-flight triggered runs started by
// the cron goroutine to return from their AddFunc callbacks.
func (s *CronScheduler) Stop() {
	<-s.cron.Stop().Done()
}
