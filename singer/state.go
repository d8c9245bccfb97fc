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
	"sync"

	"github.com/stockparfait/errors"
)

// State is the Singer replication state: per-stream bookmarks, partitioned by
// symbol for the per-symbol child streams. Whole-stream bookmarks use the
// empty partition key. Bookmark values are the stream's replication key
// values as strings; ISO-8601 timestamps order correctly as strings.
type State struct {
	mu        sync.Mutex
	Bookmarks map[string]map[string]string `json:"bookmarks,omitempty"`
}

// NewState creates an empty state.
func NewState() *State {
	return &State{Bookmarks: make(map[string]map[string]string)}
}

// ParseState reads a state document from its JSON serialization. An empty
// input yields an empty state.
func ParseState(data []byte) (*State, error) {
	s := NewState()
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, errors.Annotate(err, "failed to parse state JSON")
	}
	if s.Bookmarks == nil {
		s.Bookmarks = make(map[string]map[string]string)
	}
	return s, nil
}

// Bookmark returns the bookmark value for the stream partition, or "" when
// not set.
func (s *State) Bookmark(stream, partition string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Bookmarks[stream][partition]
}

// Advance moves the bookmark forward to value and reports whether it moved.
// A bookmark never moves backwards: values ordered at or before the current
// bookmark are ignored.
func (s *State) Advance(stream, partition, value string) bool {
	if value == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.Bookmarks[stream]
	if m == nil {
		m = make(map[string]string)
		s.Bookmarks[stream] = m
	}
	if value <= m[partition] {
		return false
	}
	m[partition] = value
	return true
}

// MarshalJSON serializes the state under its lock, so that a concurrent
// Advance cannot race with a STATE message being written.
func (s *State) MarshalJSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	type plain struct {
		Bookmarks map[string]map[string]string `json:"bookmarks,omitempty"`
	}
	return json.Marshal(plain{Bookmarks: s.Bookmarks})
}
