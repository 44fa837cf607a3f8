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

// StepRemoteTransferSpec copies a file from the job workspace to a remote
// host through the configured transport. The transport itself is an opaque
// collaborator; the engine only records its result.
type StepRemoteTransferSpec struct {
	Source      string `bson:"source"       json:"source"       yaml:"source"`
	Destination string `bson:"destination"  json:"destination"  yaml:"destination"`
	Host        string `bson:"host"         json:"host"         yaml:"host"`
	User        string `bson:"user"         json:"user"         yaml:"user"`
}
