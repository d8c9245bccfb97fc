// Copyright 2023 The tap-vnstock Authors

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package singer

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/stockparfait/errors"
)

// Schema is the subset of JSON Schema used to describe flat record streams:
// scalar types with optional nullability, date-time formats, object
// properties and array items.
type Schema struct {
	Type       []string           `json:"type,omitempty"`
	Format     string             `json:"format,omitempty"`
	Properties map[string]*Schema `json:"properties,omitempty"`
	Items      *Schema            `json:"items,omitempty"`
}

// Simple creates a schema of a single JSON type.
func Simple(tp string) *Schema {
	return &Schema{Type: []string{tp}}
}

// Nullable creates a schema of a JSON type that also admits null.
func Nullable(tp string) *Schema {
	return &Schema{Type: []string{tp, "null"}}
}

// DateTime creates a nullable date-time string schema.
func DateTime() *Schema {
	return &Schema{Type: []string{"string", "null"}, Format: "date-time"}
}

// Object creates an object schema with the given properties.
func Object(props map[string]*Schema) *Schema {
	return &Schema{Type: []string{"object"}, Properties: props}
}

// Array creates an array schema with the given item schema.
func Array(items *Schema) *Schema {
	return &Schema{Type: []string{"array", "null"}, Items: items}
}

// Message is a single Singer message, one JSON object per output line. The
// set of populated fields depends on Type.
type Message struct {
	Type               string      `json:"type"`
	Stream             string      `json:"stream,omitempty"`
	Schema             *Schema     `json:"schema,omitempty"`
	KeyProperties      []string    `json:"key_properties,omitempty"`
	BookmarkProperties []string    `json:"bookmark_properties,omitempty"`
	Record             interface{} `json:"record,omitempty"`
	TimeExtracted      string      `json:"time_extracted,omitempty"`
	Value              interface{} `json:"value,omitempty"`
}

// Message type values.
const (
	SchemaType = "SCHEMA"
	RecordType = "RECORD"
	StateType  = "STATE"
)

// Writer emits newline-delimited Singer messages. It serializes concurrent
// writers and enforces that a stream's SCHEMA message precedes its first
// RECORD.
type Writer struct {
	mu      sync.Mutex
	enc     *json.Encoder
	schemas map[string]struct{} // streams whose SCHEMA has been written
	now     func() time.Time    // overridden in tests
}

// NewWriter creates a Writer emitting to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		enc:     json.NewEncoder(w),
		schemas: make(map[string]struct{}),
		now:     time.Now,
	}
}

func (w *Writer) write(m *Message) error {
	if err := w.enc.Encode(m); err != nil {
		return errors.Annotate(err, "failed to write %s message", m.Type)
	}
	return nil
}

// Schema writes a SCHEMA message for the stream. Repeated calls for the same
// stream re-emit the schema, which is legal in the Singer format.
func (w *Writer) Schema(stream string, schema *Schema, keys, bookmarks []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	m := Message{
		Type:               SchemaType,
		Stream:             stream,
		Schema:             schema,
		KeyProperties:      keys,
		BookmarkProperties: bookmarks,
	}
	if err := w.write(&m); err != nil {
		return err
	}
	w.schemas[stream] = struct{}{}
	return nil
}

// Record writes a RECORD message with the current extraction time. The
// record is any JSON-marshalable value.
func (w *Writer) Record(stream string, record interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.schemas[stream]; !ok {
		return errors.Reason("no SCHEMA written for stream '%s'", stream)
	}
	m := Message{
		Type:          RecordType,
		Stream:        stream,
		Record:        record,
		TimeExtracted: w.now().UTC().Format(time.RFC3339),
	}
	return w.write(&m)
}

// State writes a STATE message with the given state value.
func (w *Writer) State(state *State) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.write(&Message{Type: StateType, Value: state})
}
