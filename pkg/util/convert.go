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

package util

import (
	"encoding/json"
	"fmt"
)

// IToi converts between structurally compatible values through a JSON
// round trip. Step controllers use it to decode the untyped spec payload
// into their own spec struct.
func IToi(before interface{}, after interface{}) error {
	b, err := json.Marshal(before)
	if err != nil {
		return fmt.Errorf("marshal spec error: %v", err)
	}
	if err := json.Unmarshal(b, after); err != nil {
		return fmt.Errorf("unmarshal spec error: %v", err)
	}
	return nil
}
