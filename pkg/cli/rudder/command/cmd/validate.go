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
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rudderci/rudder/pkg/core/workflow"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate <workflow file>...",
	Short: "Validate workflow files without running them",
	Long:  `Validate workflow files: parse them, check required fields, and resolve the job dependency graph.`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := validateRun(args); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func validateRun(paths []string) error {
	var bad []string
	for _, path := range paths {
		if err := validateFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			bad = append(bad, path)
			continue
		}
		fmt.Printf("%s: ok\n", path)
	}
	if len(bad) > 0 {
		return fmt.Errorf("%d invalid workflow file(s): %s", len(bad), strings.Join(bad, ", "))
	}
	return nil
}

func validateFile(path string) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	spec, err := workflow.ParseWorkflowSpec(body)
	if err != nil {
		return err
	}
	_, err = workflow.BuildRunGraph(spec)
	return err
}
