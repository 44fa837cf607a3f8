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
	"time"

	"github.com/pkg/errors"

	"github.com/rudderci/rudder/pkg/config"
	"github.com/rudderci/rudder/pkg/core/artifact"
	"github.com/rudderci/rudder/pkg/core/executor"
	"github.com/rudderci/rudder/pkg/core/service"
	"github.com/rudderci/rudder/pkg/core/taskstore"
	"github.com/rudderci/rudder/pkg/setting"
	"github.com/rudderci/rudder/pkg/tool/log"
	mongotool "github.com/rudderci/rudder/pkg/tool/mongo"
	s3tool "github.com/rudderci/rudder/pkg/tool/s3"
)

// buildService assembles the engine from the environment. The returned
// cleanup closes external connections and must run at process exit.
func buildService(ctx context.Context) (*service.WorkflowService, func(), error) {
	cleanup := func() {}

	var store taskstore.Store
	switch config.TaskStoreDriver() {
	case setting.TaskStoreMongo:
		s, err := taskstore.NewMongoStore(ctx)
		if err != nil {
			return nil, nil, errors.Wrap(err, "connect task store")
		}
		store = s
		cleanup = func() {
			if err := mongotool.Close(context.Background()); err != nil {
				log.Warnf("close mongo connection error: %v", err)
			}
		}
	default:
		store = taskstore.NewMemoryStore(time.Duration(config.TaskRetentionHours()) * time.Hour)
	}

	var artifacts artifact.Store
	if bucket := config.S3StorageBucket(); bucket != "" {
		client, err := s3tool.NewClient(config.S3StorageEndpoint(), config.S3StorageAK(), config.S3StorageSK(), config.S3StorageRegion(), config.S3StorageInsecure())
		if err != nil {
			return nil, nil, errors.Wrap(err, "create s3 client")
		}
		artifacts, err = artifact.NewS3Store(client, bucket, setting.ProductName)
		if err != nil {
			return nil, nil, errors.Wrap(err, "create s3 artifact store")
		}
	} else {
		var err error
		artifacts, err = artifact.NewFsStore(config.ArtifactRoot())
		if err != nil {
			return nil, nil, errors.Wrap(err, "create artifact store")
		}
	}

	cmdExecutor := executor.NewLocalExecutor()

	svc := service.NewWorkflowService(&service.Options{
		Store:         store,
		Artifacts:     artifacts,
		Executor:      cmdExecutor,
		Transport:     executor.NewSCPTransport(cmdExecutor),
		WorkspaceRoot: config.WorkspaceRoot(),
		ShellPath:     config.ShellPath(),
		Concurrency:   config.Concurrency(),
	}, log.SugaredLogger())

	return svc, cleanup, nil
}
