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

package step

// StepArchiveSpec publishes a file from the job workspace as a named run
// artifact.
type StepArchiveSpec struct {
	ArtifactName string `bson:"artifact_name" json:"artifact_name" yaml:"artifact_name"`
	FilePath     string `bson:"file_path"     json:"file_path"     yaml:"file_path"`
}
