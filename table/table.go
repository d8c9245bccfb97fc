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

// Package table renders small string tables as aligned text or CSV, for
// human-readable CLI output such as the stream listing.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/stockparfait/errors"
)

// Table is a header plus rows of string cells.
type Table struct {
	header []string
	rows   [][]string
}

// New creates a Table with the given column headers.
func New(header ...string) *Table {
	return &Table{header: header}
}

// AddRow appends a row. The number of cells must match the header.
func (t *Table) AddRow(cells ...string) error {
	if len(cells) != len(t.header) {
		return errors.Reason("row size [%d] != header size [%d]",
			len(cells), len(t.header))
	}
	t.rows = append(t.rows, cells)
	return nil
}

// WriteCSV writes the table to w in CSV format.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.header); err != nil {
		return errors.Annotate(err, "failed to write header")
	}
	for _, r := range t.rows {
		if err := cw.Write(r); err != nil {
			return errors.Annotate(err, "failed to write row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Annotate(err, "failed to flush rows")
	}
	return nil
}

// WriteText writes the table as column-aligned text with a header rule.
func (t *Table) WriteText(w io.Writer) error {
	widths := make([]int, len(t.header))
	for i, h := range t.header {
		widths[i] = len(h)
	}
	for _, r := range t.rows {
		for i, c := range r {
			if len(c) > widths[i] {
				widths[i] = len(c)
			}
		}
	}
	write := func(cells []string) error {
		padded := make([]string, len(cells))
		for i, c := range cells {
			padded[i] = fmt.Sprintf("%-*s", widths[i], c)
		}
		_, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(padded, "  "), " "))
		return err
	}
	if err := write(t.header); err != nil {
		return errors.Annotate(err, "failed to write header")
	}
	rule := make([]string, len(widths))
	for i, n := range widths {
		rule[i] = strings.Repeat("-", n)
	}
	if err := write(rule); err != nil {
		return errors.Annotate(err, "failed to write header rule")
	}
	for _, r := range t.rows {
		if err := write(r); err != nil {
			return errors.Annotate(err, "failed to write row")
		}
	}
	return nil
}
