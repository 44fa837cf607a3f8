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

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rudderci/rudder/pkg/config"
	"github.com/rudderci/rudder/pkg/core/workflow"
	"github.com/rudderci/rudder/pkg/tool/log"
	"github.com/rudderci/rudder/pkg/types"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run <workflow file>",
	Short: "Run a workflow to completion",
	Long:  `Run a workflow to completion and print its job report. The exit code is non-zero unless the run passed.`,
	Args:  cobra.ExactArgs(1),
	PreRun: func(cmd *cobra.Command, args []string) {
		initLog()
	},
	Run: func(cmd *cobra.Command, args []string) {
		if err := runRun(args[0]); err != nil {
			log.Fatal(err)
		}
	},
}

func runRun(path string) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	spec, err := workflow.ParseWorkflowSpec(body)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, cleanup, err := buildService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	task, err := svc.RunWorkflow(ctx, spec)
	if err != nil {
		return err
	}

	printReport(task)

	if task.Status != config.StatusPassed {
		os.Exit(1)
	}
	return nil
}

func printReport(task *types.WorkflowTask) {
	fmt.Printf("workflow: %s  run: %s  #%d  status: %s\n", task.WorkflowName, task.RunID, task.TaskID, task.Status)
	if task.Error != "" {
		fmt.Printf("error: %s\n", task.Error)
	}
	for _, job := range task.Jobs {
		fmt.Printf("  job %-20s %s", job.Name, job.Status)
		if job.RetryCount > 0 {
			fmt.Printf(" (retried %d times)", job.RetryCount)
		}
		if job.Error != "" {
			fmt.Printf("  %s", job.Error)
		}
		fmt.Println()
	}
}
