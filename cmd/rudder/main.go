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

package main

import (
	"os"
	"runtime/debug"

	"github.com/rudderci/rudder/pkg/cli/rudder/command"
	"github.com/rudderci/rudder/pkg/config"
	"github.com/rudderci/rudder/pkg/tool/log"
)

var (
	BuildVersion   = ""
	BuildGoVersion = ""
	BuildCommit    = ""
	BuildTime      = ""
)

func main() {
	defer func() {
		if err := recover(); err != nil {
			log.Errorf("rudder panic error: %v", err)
			log.Errorf("rudder panic stack: %s", string(debug.Stack()))
			os.Exit(1)
		}
	}()

	config.BuildVersion = BuildVersion
	config.BuildGoVersion = BuildGoVersion
	config.BuildCommit = BuildCommit
	config.BuildTime = BuildTime

	if err := command.Execute(); err != nil {
		log.Fatalf("Failed to run rudder cmd executor, error: %s", err)
	}
}
