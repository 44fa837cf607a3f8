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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Registry *prometheus.Registry

	RunningWorkflows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "running_workflows",
			Help: "Number of currently running workflow tasks",
		},
	)

	PendingJobs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pending_jobs",
			Help: "Number of jobs waiting for dependencies or a worker slot",
		},
	)

	RunningJobs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "running_jobs",
			Help: "Number of currently running jobs",
		},
	)

	JobResultTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_result_total",
			Help: "Terminal job statuses, by workflow and status",
		},
		[]string{"workflow", "status"},
	)

	WorkflowResultTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_result_total",
			Help: "Terminal workflow statuses, by workflow and status",
		},
		[]string{"workflow", "status"},
	)
)

func init() {
	Registry = prometheus.NewRegistry()
	Registry.MustRegister(RunningWorkflows)
	Registry.MustRegister(PendingJobs)
	Registry.MustRegister(RunningJobs)
	Registry.MustRegister(JobResultTotal)
	Registry.MustRegister(WorkflowResultTotal)
}
