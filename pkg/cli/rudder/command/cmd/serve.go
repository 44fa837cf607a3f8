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
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rudderci/rudder/pkg/api"
	"github.com/rudderci/rudder/pkg/config"
	"github.com/rudderci/rudder/pkg/core/trigger"
	"github.com/rudderci/rudder/pkg/core/workflow"
	"github.com/rudderci/rudder/pkg/tool/log"
)

var serveWorkflowDir string

func init() {
	serveCmd.Flags().StringVar(&serveWorkflowDir, "workflows", "", "directory of workflow files whose cron triggers should be scheduled")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workflow engine over HTTP",
	Long:  `Serve the workflow engine over HTTP and schedule cron triggers of the workflows in --workflows.`,
	PreRun: func(cmd *cobra.Command, args []string) {
		initLog()
	},
	Run: func(cmd *cobra.Command, args []string) {
		if err := serveRun(); err != nil {
			log.Fatal(err)
		}
	},
}

func serveRun() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, cleanup, err := buildService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	scheduler := trigger.NewCronScheduler(svc, log.SugaredLogger())
	if serveWorkflowDir != "" {
		if err := registerWorkflows(scheduler, serveWorkflowDir); err != nil {
			return err
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:    config.ListenAddr(),
		Handler: api.NewRouter(svc, log.SugaredLogger()),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", config.ListenAddr())
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func registerWorkflows(scheduler *trigger.CronScheduler, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		body, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		spec, err := workflow.ParseWorkflowSpec(body)
		if err != nil {
			log.Warnf("skipping %s: %v", path, err)
			continue
		}
		if err := scheduler.Register(spec); err != nil {
			return err
		}
		log.Infof("registered workflow %s from %s", spec.Name, path)
	}
	return nil
}
