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

package secret

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rudderci/rudder/pkg/setting"
	"github.com/rudderci/rudder/pkg/types"
)

// SecretResolutionError reports a secret whose value could not be resolved
// at run start. The error never contains a secret value.
type SecretResolutionError struct {
	Name   string
	Reason string
}

func (e *SecretResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve secret %q: %s", e.Name, e.Reason)
}

// Broker holds the secrets of one run. Values are injected into job contexts
// at dispatch time and masked from every captured output stream before logs
// are persisted. The broker's lifecycle is bound to the run; nothing is
// written to disk.
type Broker struct {
	values map[string]string
}

// NewBroker resolves the declared secrets. Inline values win; otherwise the
// value is read from the engine's environment.
func NewBroker(specs []*types.SecretSpec) (*Broker, error) {
	b := &Broker{values: make(map[string]string, len(specs))}
	for _, spec := range specs {
		switch {
		case spec.Value != "":
			b.values[spec.Name] = spec.Value
		case spec.FromEnv != "":
			v, ok := os.LookupEnv(spec.FromEnv)
			if !ok {
				return nil, &SecretResolutionError{Name: spec.Name, Reason: fmt.Sprintf("environment variable %s is not set", spec.FromEnv)}
			}
			b.values[spec.Name] = v
		default:
			return nil, &SecretResolutionError{Name: spec.Name, Reason: "no value or from_env given"}
		}
	}
	return b, nil
}

// Envs returns KEY=VALUE pairs for injection into a job's execution context.
func (b *Broker) Envs() []string {
	envs := make([]string, 0, len(b.values))
	for k, v := range b.values {
		envs = append(envs, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(envs)
	return envs
}

// Mask replaces every secret value occurring in message.
func (b *Broker) Mask(message string) string {
	out := message
	for _, val := range b.values {
		if len(val) == 0 {
			continue
		}
		out = strings.Replace(out, val, setting.MaskedSecret, -1)
	}
	return out
}
