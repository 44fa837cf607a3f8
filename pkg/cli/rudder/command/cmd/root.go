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
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rudderci/rudder/pkg/config"
	"github.com/rudderci/rudder/pkg/setting"
	"github.com/rudderci/rudder/pkg/tool/log"
)

var rootCmd = &cobra.Command{
	Use:   "rudder",
	Short: "rudder runs workflow pipelines",
	Long:  `rudder parses workflow definitions, resolves their job dependency graph, and runs jobs with bounded concurrency.`,
}

func Execute() error {
	return rootCmd.Execute()
}

// initLog reconfigures the process logger from the environment. Commands
// call it once from their PreRun.
func initLog() {
	log.Init(&log.Config{
		Level:       config.LogLevel(),
		Filename:    filepath.Join(config.LogPath(), config.LogName()),
		SendToFile:  config.LogPath() != "",
		Development: config.Mode() == setting.DebugMode,
	})
}
