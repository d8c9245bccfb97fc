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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stockparfait/logging"
	"github.com/stockparfait/testutil"
	"github.com/vnstock/tap-vnstock/fireant"
	"github.com/vnstock/tap-vnstock/singer"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFlags(t *testing.T) {
	t.Parallel()

	Convey("parseFlags works", t, func() {
		Convey("with the full argument set", func() {
			flags, err := parseFlags([]string{
				"-config", "config.json",
				"-catalog", "catalog.json",
				"-state", "state.json",
				"-write-state", "state-out.json",
				"-log-level", "debug",
			})
			So(err, ShouldBeNil)
			So(flags.Config, ShouldEqual, "config.json")
			So(flags.Catalog, ShouldEqual, "catalog.json")
			So(flags.State, ShouldEqual, "state.json")
			So(flags.WriteState, ShouldEqual, "state-out.json")
			So(flags.LogLevel, ShouldEqual, logging.Debug)
		})

		Convey("config is required for a sync", func() {
			_, err := parseFlags([]string{})
			So(err, ShouldNotBeNil)
		})

		Convey("but not for discovery", func() {
			flags, err := parseFlags([]string{"-discover"})
			So(err, ShouldBeNil)
			So(flags.Discover, ShouldBeTrue)
		})

		Convey("discover and list-streams are exclusive", func() {
			_, err := parseFlags([]string{"-discover", "-list-streams"})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestDiscoverOutput(t *testing.T) {
	t.Parallel()

	Convey("discover prints a parseable catalog", t, func() {
		var buf bytes.Buffer
		So(discover(&buf), ShouldBeNil)
		catalog, err := singer.ParseCatalog(buf.Bytes())
		So(err, ShouldBeNil)
		So(len(catalog.Streams), ShouldEqual, 8)
		So(catalog.Entry("quotes"), ShouldNotBeNil)
	})

	Convey("list-streams prints every stream", t, func() {
		var buf bytes.Buffer
		So(listStreams(&buf), ShouldBeNil)
		out := buf.String()
		So(out, ShouldContainSubstring, "stream")
		So(out, ShouldContainSubstring, "quotes")
		So(out, ShouldContainSubstring, "INCREMENTAL")
		So(out, ShouldContainSubstring, "indirect_cashflow")
	})
}

func TestSyncApp(t *testing.T) {
	// No t.Parallel: the test overrides the fireant.URL package variable.

	Convey("sync reads its files and writes the final state", t, func() {
		tmpdir, tmpdirErr := os.MkdirTemp("", "tap_vnstock_main")
		So(tmpdirErr, ShouldBeNil)
		defer os.RemoveAll(tmpdir)

		server := testutil.NewTestServer()
		defer server.Close()
		fireant.URL = server.URL()
		ctx := context.Background()

		configPath := filepath.Join(tmpdir, "config.json")
		So(testutil.WriteFile(configPath, `{
  "access_token": "sekrit",
  "symbols": ["AAA"],
  "start_date": "2023-06-01",
  "end_date": "2023-06-20",
  "parallelism": 1
}`), ShouldBeNil)

		statePath := filepath.Join(tmpdir, "state.json")
		So(testutil.WriteFile(statePath,
			`{"bookmarks": {"quotes": {"AAA": "2023-06-10T00:00:00"}}}`,
		), ShouldBeNil)

		// A catalog selecting only the quotes stream.
		var catalogBuf bytes.Buffer
		So(discover(&catalogBuf), ShouldBeNil)
		catalog, err := singer.ParseCatalog(catalogBuf.Bytes())
		So(err, ShouldBeNil)
		for i := range catalog.Streams {
			if catalog.Streams[i].Stream != "quotes" {
				catalog.Streams[i].Metadata[0].Metadata["selected"] = false
			}
		}
		catalogData, err := json.Marshal(catalog)
		So(err, ShouldBeNil)
		catalogPath := filepath.Join(tmpdir, "catalog.json")
		So(testutil.WriteFile(catalogPath, string(catalogData)), ShouldBeNil)

		server.ResponseBody = []string{
			`[{"date": "2023-06-19T00:00:00", "priceClose": 10.5}]`,
		}
		outStatePath := filepath.Join(tmpdir, "state-out.json")
		flags := &Flags{
			Config:     configPath,
			Catalog:    catalogPath,
			State:      statePath,
			WriteState: outStatePath,
		}
		var out bytes.Buffer
		So(sync(ctx, flags, &out), ShouldBeNil)

		// The quotes window starts at the bookmark, not the config date.
		So(server.RequestQuery["startDate"], ShouldResemble, []string{"2023-06-10"})
		So(out.String(), ShouldContainSubstring, `"type":"SCHEMA"`)
		So(out.String(), ShouldContainSubstring, `"stream":"quotes"`)

		written, err := os.ReadFile(outStatePath)
		So(err, ShouldBeNil)
		state, err := singer.ParseState(written)
		So(err, ShouldBeNil)
		So(state.Bookmark("quotes", "AAA"), ShouldEqual, "2023-06-19T00:00:00")
	})
}
