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

package setting

const ProductName = "rudder"

const LocalConfig = "local.env"

// envs
const (
	// common
	ENVMode       = "MODE"
	ENVLogLevel   = "LOG_LEVEL"
	ENVLogPath    = "LOG_PATH"
	ENVListenAddr = "ADDRESS"

	// engine
	ENVConcurrency     = "CONCURRENCY"
	ENVWorkspaceRoot   = "WORKSPACE_ROOT"
	ENVArtifactRoot    = "ARTIFACT_ROOT"
	ENVShellPath       = "SHELL_PATH"
	ENVTaskStoreDriver = "TASK_STORE_DRIVER"
	ENVTaskRetention   = "TASK_RETENTION_HOURS"

	// task store
	ENVMongoDBConnectionString = "MONGODB_CONNECTION_STRING"
	ENVMongoDBName             = "RUDDER_DB"

	// artifact storage
	ENVS3StorageAK       = "S3STORAGE_AK"
	ENVS3StorageSK       = "S3STORAGE_SK"
	ENVS3StorageEndpoint = "S3STORAGE_ENDPOINT"
	ENVS3StorageBucket   = "S3STORAGE_BUCKET"
	ENVS3StorageRegion   = "S3STORAGE_REGION"
	ENVS3StorageInsecure = "S3STORAGE_INSECURE"
)

const (
	DebugMode   = "debug"
	ReleaseMode = "release"
)

// task store drivers
const (
	TaskStoreMemory = "memory"
	TaskStoreMongo  = "mongo"
)

const (
	DefaultConcurrency = 4

	// MaskedSecret replaces secret values in captured output and reports.
	MaskedSecret = "********"
)
