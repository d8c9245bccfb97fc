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

package table

import (
	"bytes"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTable(t *testing.T) {
	t.Parallel()

	Convey("Table renders", t, func() {
		tbl := New("stream", "replication")
		So(tbl.AddRow("instruments", "FULL_TABLE"), ShouldBeNil)
		So(tbl.AddRow("quotes", "INCREMENTAL"), ShouldBeNil)

		Convey("as aligned text", func() {
			var buf bytes.Buffer
			So(tbl.WriteText(&buf), ShouldBeNil)
			So(buf.String(), ShouldEqual, `stream       replication
-----------  -----------
instruments  FULL_TABLE
quotes       INCREMENTAL
`)
		})

		Convey("as CSV", func() {
			var buf bytes.Buffer
			So(tbl.WriteCSV(&buf), ShouldBeNil)
			So(buf.String(), ShouldEqual, `stream,replication
instruments,FULL_TABLE
quotes,INCREMENTAL
`)
		})

		Convey("rejects a short row", func() {
			So(tbl.AddRow("oops"), ShouldNotBeNil)
		})
	})
}
