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

package executor

import (
	"context"
	"fmt"
)

type scpTransport struct {
	executor CmdExecutor
}

// NewSCPTransport copies files with the system scp binary, reusing the
// process executor so cancellation semantics match shell steps.
func NewSCPTransport(executor CmdExecutor) Transport {
	return &scpTransport{executor: executor}
}

func (t *scpTransport) Copy(ctx context.Context, opts *CopyOptions) error {
	if opts.Host == "" {
		return fmt.Errorf("remote copy needs a host")
	}

	target := opts.Host + ":" + opts.Destination
	if opts.User != "" {
		target = opts.User + "@" + target
	}

	return t.executor.Run(ctx, &RunOptions{
		Name:   "scp",
		Args:   []string{"-B", opts.Source, target},
		Stdout: opts.Stdout,
		Stderr: opts.Stdout,
	})
}
