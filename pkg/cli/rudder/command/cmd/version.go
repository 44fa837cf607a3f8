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
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/rudderci/rudder/pkg/config"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of rudder",
	Long:  `Print the version number of rudder.`,
	Run: func(cmd *cobra.Command, args []string) {
		versionRun()
	},
}

func versionRun() {
	fmt.Printf("rudder version %s %s/%s\n", config.BuildVersion, runtime.GOOS, runtime.GOARCH)
	fmt.Println()
	fmt.Printf("Build Time: %s\n", config.BuildTime)
	fmt.Printf("Build Commit: %s\n", config.BuildCommit)
	fmt.Printf("Build Go Version: %s\n", config.BuildGoVersion)
}
