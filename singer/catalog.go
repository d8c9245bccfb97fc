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

	"github.com/stockparfait/errors"
	"golang.org/x/exp/slices"
)

// Metadata is a single catalog metadata entry. The empty breadcrumb refers
// to the stream itself, ["properties", <name>] to one of its fields.
type Metadata struct {
	Breadcrumb []string               `json:"breadcrumb"`
	Metadata   map[string]interface{} `json:"metadata"`
}

// Entry describes one stream in the catalog.
type Entry struct {
	Stream            string     `json:"stream"`
	TapStreamID       string     `json:"tap_stream_id"`
	Schema            *Schema    `json:"schema"`
	Metadata          []Metadata `json:"metadata"`
	KeyProperties     []string   `json:"key_properties,omitempty"`
	ReplicationKey    string     `json:"replication_key,omitempty"`
	ReplicationMethod string     `json:"replication_method,omitempty"`
}

// Catalog is the Singer catalog document.
type Catalog struct {
	Streams []Entry `json:"streams"`
}

// ParseCatalog reads a catalog document from its JSON serialization.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Annotate(err, "failed to parse catalog JSON")
	}
	return &c, nil
}

// Entry finds the catalog entry for the stream, or nil.
func (c *Catalog) Entry(stream string) *Entry {
	for i := range c.Streams {
		if c.Streams[i].TapStreamID == stream || c.Streams[i].Stream == stream {
			return &c.Streams[i]
		}
	}
	return nil
}

// root returns the stream-level metadata map, or nil.
func (e *Entry) root() map[string]interface{} {
	for _, m := range e.Metadata {
		if len(m.Breadcrumb) == 0 {
			return m.Metadata
		}
	}
	return nil
}

// Selected reports whether the entry is selected for sync. A stream is
// deselected only by an explicit "selected": false in its root metadata, so
// a discovery-produced catalog passed back unmodified syncs every stream.
func (e *Entry) Selected() bool {
	root := e.root()
	if root == nil {
		return true
	}
	if v, ok := root["selected"].(bool); ok {
		return v
	}
	return true
}

// IsSelected reports whether the stream should be synced. A nil catalog
// selects all streams; a stream missing from a non-nil catalog is skipped.
func (c *Catalog) IsSelected(stream string) bool {
	if c == nil {
		return true
	}
	e := c.Entry(stream)
	if e == nil {
		return false
	}
	return e.Selected()
}

// NewEntry builds a discovery catalog entry with the standard stream-level
// and per-property metadata. Key properties and the replication key are
// marked with automatic inclusion, all remaining fields as available.
func NewEntry(stream string, schema *Schema, keys []string, method, replicationKey string) Entry {
	root := map[string]interface{}{
		"inclusion":                 "available",
		"selected-by-default":       true,
		"table-key-properties":      keys,
		"forced-replication-method": method,
	}
	if replicationKey != "" {
		root["valid-replication-keys"] = []string{replicationKey}
	}
	md := []Metadata{{Breadcrumb: []string{}, Metadata: root}}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		inclusion := "available"
		if slices.Contains(keys, name) || name == replicationKey {
			inclusion = "automatic"
		}
		md = append(md, Metadata{
			Breadcrumb: []string{"properties", name},
			Metadata:   map[string]interface{}{"inclusion": inclusion},
		})
	}
	return Entry{
		Stream:            stream,
		TapStreamID:       stream,
		Schema:            schema,
		Metadata:          md,
		KeyProperties:     keys,
		ReplicationKey:    replicationKey,
		ReplicationMethod: method,
	}
}
