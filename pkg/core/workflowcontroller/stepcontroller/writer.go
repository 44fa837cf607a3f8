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

package stepcontroller

import (
	"strings"

	"go.uber.org/zap"
)

// logSink forwards captured command output to the run logger, one line per
// entry, prefixed with the job and step names. It sits behind the secret
// mask writer, so everything arriving here is already masked.
type logSink struct {
	logger *zap.SugaredLogger
	prefix string
}

func newLogSink(logger *zap.SugaredLogger, jobName, stepName string) *logSink {
	return &logSink{logger: logger, prefix: jobName + "/" + stepName}
}

func (s *logSink) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		s.logger.Infof("[%s] %s", s.prefix, line)
	}
	return len(p), nil
}
