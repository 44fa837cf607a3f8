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

// Package executor holds the engine's opaque collaborators: a process
// executor and a remote file transport. The engine only issues abstract
// requests and consumes their success or failure plus captured output.
package executor

import (
	"context"
	"io"
	"os/exec"
	"syscall"
)

// CmdExecutor runs one command to completion inside a job workspace.
type CmdExecutor interface {
	Run(ctx context.Context, opts *RunOptions) error
}

type RunOptions struct {
	Name   string
	Args   []string
	Dir    string
	Envs   []string
	Stdout io.Writer
	Stderr io.Writer
}

// Transport copies a local file to a remote destination. Implementations
// wrap whatever channel the deployment uses; the engine never inspects it.
type Transport interface {
	Copy(ctx context.Context, opts *CopyOptions) error
}

type CopyOptions struct {
	Source      string
	Destination string
	Host        string
	User        string
	Stdout      io.Writer
}

type localExecutor struct{}

// NewLocalExecutor returns a CmdExecutor backed by os/exec. Commands get
// their own process group so cancellation kills the whole tree, not just the
// shell.
func NewLocalExecutor() CmdExecutor {
	return &localExecutor{}
}

func (e *localExecutor) Run(ctx context.Context, opts *RunOptions) error {
	cmd := exec.Command(opts.Name, opts.Args...)
	cmd.Dir = opts.Dir
	cmd.Env = opts.Envs
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		<-done
		return ctx.Err()
	case err := <-done:
		return err
	}
}
