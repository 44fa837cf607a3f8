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

type StepShellSpec struct {
	Scripts []string          `bson:"scripts"  json:"scripts"  yaml:"scripts"`
	Envs    map[string]string `bson:"envs"     json:"envs"     yaml:"envs"`
	WorkDir string            `bson:"work_dir" json:"work_dir" yaml:"work_dir"`
}
