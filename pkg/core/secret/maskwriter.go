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
	"io"
)

// maskWriter substitutes secret values line by line before handing output to
// the underlying sink. Buffering whole lines keeps a secret from escaping
// when a write boundary lands in the middle of its value.
type maskWriter struct {
	broker *Broker
	sink   io.Writer
	buf    bytes.Buffer
}

// NewMaskWriter wraps sink so nothing written through it can contain a
// secret value. Call Flush when the stream ends to drain a trailing partial
// line.
func NewMaskWriter(broker *Broker, sink io.Writer) *maskWriter {
	return &maskWriter{broker: broker, sink: sink}
}

func (w *maskWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// partial line stays buffered
			w.buf.WriteString(line)
			break
		}
		if _, err := io.WriteString(w.sink, w.broker.Mask(line)); err != nil {
			return len(p), err
		}
	}
	return len(p), nil
}

func (w *maskWriter) Flush() error {
	if w.buf.Len() == 0 {
		return nil
	}
	line := w.buf.String()
	w.buf.Reset()
	_, err := io.WriteString(w.sink, w.broker.Mask(line))
	return err
}
