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
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func decodeLines(buf *bytes.Buffer) ([]map[string]interface{}, error) {
	var msgs []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func TestWriter(t *testing.T) {
	t.Parallel()

	quotesSchema := Object(map[string]*Schema{
		"symbol": Simple("string"),
		"date":   DateTime(),
		"close":  Nullable("number"),
	})

	Convey("Writer emits messages in the Singer format", t, func() {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		w.now = func() time.Time {
			return time.Date(2023, 5, 4, 3, 2, 1, 0, time.UTC)
		}

		Convey("SCHEMA before RECORD", func() {
			So(w.Schema("quotes", quotesSchema, []string{"symbol", "date"},
				[]string{"date"}), ShouldBeNil)
			So(w.Record("quotes", map[string]interface{}{
				"symbol": "VNM", "date": "2023-05-03T00:00:00", "close": 70.5,
			}), ShouldBeNil)

			msgs, err := decodeLines(&buf)
			So(err, ShouldBeNil)
			So(len(msgs), ShouldEqual, 2)
			So(msgs[0]["type"], ShouldEqual, "SCHEMA")
			So(msgs[0]["stream"], ShouldEqual, "quotes")
			So(msgs[0]["key_properties"], ShouldResemble,
				[]interface{}{"symbol", "date"})
			So(msgs[1]["type"], ShouldEqual, "RECORD")
			So(msgs[1]["time_extracted"], ShouldEqual, "2023-05-04T03:02:01Z")
			record := msgs[1]["record"].(map[string]interface{})
			So(record["symbol"], ShouldEqual, "VNM")
		})

		Convey("RECORD without SCHEMA is an error", func() {
			err := w.Record("quotes", map[string]interface{}{"symbol": "VNM"})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "no SCHEMA")
		})

		Convey("STATE carries the bookmark value", func() {
			s := NewState()
			So(s.Advance("quotes", "VNM", "2023-05-03T00:00:00"), ShouldBeTrue)
			So(w.State(s), ShouldBeNil)

			msgs, err := decodeLines(&buf)
			So(err, ShouldBeNil)
			So(len(msgs), ShouldEqual, 1)
			So(msgs[0]["type"], ShouldEqual, "STATE")
			value := msgs[0]["value"].(map[string]interface{})
			bookmarks := value["bookmarks"].(map[string]interface{})
			quotes := bookmarks["quotes"].(map[string]interface{})
			So(quotes["VNM"], ShouldEqual, "2023-05-03T00:00:00")
		})
	})
}

func TestState(t *testing.T) {
	t.Parallel()

	Convey("State bookmarks", t, func() {
		Convey("advance moves only forward", func() {
			s := NewState()
			So(s.Advance("quotes", "VNM", "2023-01-02"), ShouldBeTrue)
			So(s.Advance("quotes", "VNM", "2023-01-01"), ShouldBeFalse)
			So(s.Advance("quotes", "VNM", ""), ShouldBeFalse)
			So(s.Bookmark("quotes", "VNM"), ShouldEqual, "2023-01-02")
			So(s.Advance("quotes", "VNM", "2023-01-03"), ShouldBeTrue)
			So(s.Bookmark("quotes", "VNM"), ShouldEqual, "2023-01-03")
		})

		Convey("partitions are independent", func() {
			s := NewState()
			So(s.Advance("quotes", "VNM", "2023-01-02"), ShouldBeTrue)
			So(s.Advance("quotes", "FPT", "2022-12-31"), ShouldBeTrue)
			So(s.Bookmark("quotes", "FPT"), ShouldEqual, "2022-12-31")
			So(s.Bookmark("quotes", "HPG"), ShouldEqual, "")
		})

		Convey("round-trips through JSON", func() {
			s := NewState()
			So(s.Advance("quotes", "VNM", "2023-01-02"), ShouldBeTrue)
			data, err := json.Marshal(s)
			So(err, ShouldBeNil)
			s2, err := ParseState(data)
			So(err, ShouldBeNil)
			So(s2.Bookmark("quotes", "VNM"), ShouldEqual, "2023-01-02")
		})

		Convey("empty input parses to an empty state", func() {
			s, err := ParseState(nil)
			So(err, ShouldBeNil)
			So(s.Bookmark("quotes", "VNM"), ShouldEqual, "")
		})
	})
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	Convey("Catalog selection", t, func() {
		schema := Object(map[string]*Schema{
			"symbol": Simple("string"),
			"date":   DateTime(),
		})

		Convey("discovery entries carry standard metadata", func() {
			e := NewEntry("quotes", schema, []string{"symbol", "date"},
				"INCREMENTAL", "date")
			So(e.TapStreamID, ShouldEqual, "quotes")
			root := e.Metadata[0]
			So(root.Breadcrumb, ShouldResemble, []string{})
			So(root.Metadata["forced-replication-method"], ShouldEqual, "INCREMENTAL")
			So(root.Metadata["table-key-properties"], ShouldResemble,
				[]string{"symbol", "date"})
			// Properties sorted by name, key fields marked automatic.
			So(e.Metadata[1].Breadcrumb, ShouldResemble,
				[]string{"properties", "date"})
			So(e.Metadata[1].Metadata["inclusion"], ShouldEqual, "automatic")
			So(e.Metadata[2].Metadata["inclusion"], ShouldEqual, "automatic")
		})

		Convey("nil catalog selects everything", func() {
			var c *Catalog
			So(c.IsSelected("quotes"), ShouldBeTrue)
		})

		Convey("missing entry is skipped", func() {
			c := &Catalog{Streams: []Entry{NewEntry("events", schema, nil,
				"FULL_TABLE", "")}}
			So(c.IsSelected("quotes"), ShouldBeFalse)
			So(c.IsSelected("events"), ShouldBeTrue)
		})

		Convey("explicit deselection wins", func() {
			e := NewEntry("quotes", schema, nil, "INCREMENTAL", "date")
			e.Metadata[0].Metadata["selected"] = false
			c := &Catalog{Streams: []Entry{e}}
			So(c.IsSelected("quotes"), ShouldBeFalse)
		})

		Convey("parses from JSON", func() {
			js := `{"streams": [{"stream": "quotes", "tap_stream_id": "quotes",
				"schema": {"type": ["object"]},
				"metadata": [{"breadcrumb": [], "metadata": {"selected": true}}]}]}`
			c, err := ParseCatalog([]byte(js))
			So(err, ShouldBeNil)
			So(c.IsSelected("quotes"), ShouldBeTrue)
		})
	})
}
