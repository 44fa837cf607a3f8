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

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/rudderci/rudder/pkg/setting"
)

func init() {
	viper.AutomaticEnv()
}

func Mode() string {
	mode := viper.GetString(setting.ENVMode)
	if mode == "" {
		return setting.DebugMode
	}

	return mode
}

func LogLevel() string {
	level := viper.GetString(setting.ENVLogLevel)
	if level == "" {
		return "info"
	}

	return level
}

func LogPath() string {
	path := viper.GetString(setting.ENVLogPath)
	if path == "" {
		return fmt.Sprintf("/var/log/%s/", setting.ProductName)
	}

	return path
}

func LogName() string {
	return fmt.Sprintf("%s.log", setting.ProductName)
}

func ListenAddr() string {
	addr := viper.GetString(setting.ENVListenAddr)
	if addr == "" {
		return ":8080"
	}

	return addr
}

// Concurrency is the upper bound of jobs running at the same time within one run.
func Concurrency() int {
	c := viper.GetInt(setting.ENVConcurrency)
	if c <= 0 {
		return setting.DefaultConcurrency
	}

	return c
}

// WorkspaceRoot is the directory under which per-job workspaces are created.
func WorkspaceRoot() string {
	root := viper.GetString(setting.ENVWorkspaceRoot)
	if root == "" {
		return filepath.Join(os.TempDir(), setting.ProductName, "workspace")
	}

	return root
}

// ArtifactRoot is the directory backing the filesystem artifact store.
func ArtifactRoot() string {
	root := viper.GetString(setting.ENVArtifactRoot)
	if root == "" {
		return filepath.Join(os.TempDir(), setting.ProductName, "artifacts")
	}

	return root
}

func ShellPath() string {
	shell := viper.GetString(setting.ENVShellPath)
	if shell == "" {
		return "/bin/bash"
	}

	return shell
}

func TaskStoreDriver() string {
	driver := viper.GetString(setting.ENVTaskStoreDriver)
	if driver == "" {
		return setting.TaskStoreMemory
	}

	return driver
}

// TaskRetentionHours bounds how long finished run reports are kept in the
// in-memory task store.
func TaskRetentionHours() int {
	h := viper.GetInt(setting.ENVTaskRetention)
	if h <= 0 {
		return 24 * 7
	}

	return h
}

func MongoURI() string {
	return viper.GetString(setting.ENVMongoDBConnectionString)
}

func MongoDatabase() string {
	db := viper.GetString(setting.ENVMongoDBName)
	if db == "" {
		return setting.ProductName
	}

	return db
}

func S3StorageAK() string {
	return viper.GetString(setting.ENVS3StorageAK)
}

func S3StorageSK() string {
	return viper.GetString(setting.ENVS3StorageSK)
}

func S3StorageEndpoint() string {
	return viper.GetString(setting.ENVS3StorageEndpoint)
}

func S3StorageBucket() string {
	return viper.GetString(setting.ENVS3StorageBucket)
}

func S3StorageRegion() string {
	return viper.GetString(setting.ENVS3StorageRegion)
}

func S3StorageInsecure() bool {
	return viper.GetBool(setting.ENVS3StorageInsecure)
}
