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
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rudderci/rudder/pkg/types"
)

func TestNewBrokerResolvesInlineAndEnvValues(t *testing.T) {
	t.Setenv("RUDDER_TEST_TOKEN", "from-environment")

	broker, err := NewBroker([]*types.SecretSpec{
		{Name: "API_KEY", Value: "inline-value"},
		{Name: "TOKEN", FromEnv: "RUDDER_TEST_TOKEN"},
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"API_KEY=inline-value", "TOKEN=from-environment"}, broker.Envs())
}

func TestNewBrokerMissingEnvironmentVariable(t *testing.T) {
	_, err := NewBroker([]*types.SecretSpec{
		{Name: "TOKEN", FromEnv: "RUDDER_TEST_DOES_NOT_EXIST"},
	})
	assert.Error(t, err)

	var resolution *SecretResolutionError
	assert.True(t, errors.As(err, &resolution))
	assert.Equal(t, "TOKEN", resolution.Name)
	// the error names the secret, never its value
	assert.NotContains(t, err.Error(), "inline")
}

func TestNewBrokerSecretWithoutValue(t *testing.T) {
	_, err := NewBroker([]*types.SecretSpec{{Name: "EMPTY"}})
	assert.Error(t, err)
}

func TestMask(t *testing.T) {
	broker, err := NewBroker([]*types.SecretSpec{
		{Name: "API_KEY", Value: "s3cr3t-value"},
		{Name: "TOKEN", Value: "t0ken"},
	})
	assert.NoError(t, err)

	masked := broker.Mask("key is s3cr3t-value and token is t0ken, s3cr3t-value again")
	assert.Equal(t, "key is ******** and token is ********, ******** again", masked)

	assert.Equal(t, "nothing to hide", broker.Mask("nothing to hide"))
}

func TestMaskWriterMasksAcrossChunkedWrites(t *testing.T) {
	broker, err := NewBroker([]*types.SecretSpec{
		{Name: "TOKEN", Value: "hunter2"},
	})
	assert.NoError(t, err)

	var sink bytes.Buffer
	w := NewMaskWriter(broker, &sink)

	// the secret is split across two writes; line buffering reassembles it
	_, err = w.Write([]byte("login with hun"))
	assert.NoError(t, err)
	_, err = w.Write([]byte("ter2 please\nsecond line\n"))
	assert.NoError(t, err)
	assert.NoError(t, w.Flush())

	assert.Equal(t, "login with ******** please\nsecond line\n", sink.String())
}

func TestMaskWriterFlushDrainsPartialLine(t *testing.T) {
	broker, err := NewBroker([]*types.SecretSpec{
		{Name: "TOKEN", Value: "hunter2"},
	})
	assert.NoError(t, err)

	var sink bytes.Buffer
	w := NewMaskWriter(broker, &sink)

	_, err = w.Write([]byte("trailing hunter2 without newline"))
	assert.NoError(t, err)
	assert.Empty(t, sink.String())

	assert.NoError(t, w.Flush())
	assert.Equal(t, "trailing ******** without newline", sink.String())
}
