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

package tap

import (
	"context"

	"github.com/stockparfait/errors"
	"github.com/vnstock/tap-vnstock/fireant"
	"github.com/vnstock/tap-vnstock/singer"
)

// Replication methods.
const (
	FullTable   = "FULL_TABLE"
	Incremental = "INCREMENTAL"
)

// Stream describes one extractable stream: its catalog entry data and the
// per-symbol fetch function. The instruments stream is the parent which
// yields the symbols for all the others, and has no per-symbol fetch.
type Stream struct {
	Name              string
	KeyProperties     []string
	ReplicationMethod string
	ReplicationKey    string
	Schema            *singer.Schema

	// fetch downloads the rows for one symbol and returns them together
	// with the highest replication key value seen ("" for full-table
	// streams).
	fetch func(ctx context.Context, t *Tap, symbol string) ([]interface{}, string, error)
}

// InstrumentsStream is the name of the parent stream.
const InstrumentsStream = "instruments"

func fetchQuotes(ctx context.Context, t *Tap, symbol string) ([]interface{}, string, error) {
	now := t.now()
	start := t.Config.Start(now, t.State.Bookmark("quotes", symbol))
	quotes, err := fireant.FetchQuotes(ctx, symbol, start, t.Config.End(now),
		t.Config.PageSize)
	if err != nil {
		return nil, "", errors.Annotate(err, "failed to fetch quotes")
	}
	records := make([]interface{}, len(quotes))
	var bookmark string
	for i, q := range quotes {
		records[i] = q
		if q.Date > bookmark {
			bookmark = q.Date
		}
	}
	return records, bookmark, nil
}

func fetchEvents(ctx context.Context, t *Tap, symbol string) ([]interface{}, string, error) {
	now := t.now()
	start := t.Config.Start(now, "")
	events, err := fireant.FetchEvents(ctx, symbol, start, t.Config.End(now),
		t.Config.PageSize)
	if err != nil {
		return nil, "", errors.Annotate(err, "failed to fetch events")
	}
	records := make([]interface{}, len(events))
	for i, e := range events {
		records[i] = e
	}
	return records, "", nil
}

func fetchReports(tp fireant.ReportType) func(context.Context, *Tap, string) ([]interface{}, string, error) {
	return func(ctx context.Context, t *Tap, symbol string) ([]interface{}, string, error) {
		now := t.now()
		// The current reporting period, per the vendor's convention.
		year := now.Year()
		quarter := int(now.Month())/3 + 1
		reports, err := fireant.FetchReports(ctx, symbol, tp, year, quarter)
		if err != nil {
			return nil, "", errors.Annotate(err, "failed to fetch reports")
		}
		records := make([]interface{}, len(reports))
		for i, r := range reports {
			records[i] = r
		}
		return records, "", nil
	}
}

func fetchIndicators(ctx context.Context, t *Tap, symbol string) ([]interface{}, string, error) {
	indicators, err := fireant.FetchIndicators(ctx, symbol)
	if err != nil {
		return nil, "", errors.Annotate(err, "failed to fetch indicators")
	}
	records := make([]interface{}, len(indicators))
	for i, in := range indicators {
		records[i] = in
	}
	return records, "", nil
}

// Streams lists all the tap's streams in sync order: the parent instruments
// stream first, then the per-symbol child streams.
func Streams() []*Stream {
	return []*Stream{
		{
			Name:              InstrumentsStream,
			KeyProperties:     []string{"symbol"},
			ReplicationMethod: FullTable,
			Schema:            instrumentsSchema(),
		},
		{
			Name:              "quotes",
			KeyProperties:     []string{"symbol", "date"},
			ReplicationMethod: Incremental,
			ReplicationKey:    "date",
			Schema:            quotesSchema(),
			fetch:             fetchQuotes,
		},
		{
			Name:              "events",
			KeyProperties:     []string{"symbol", "date"},
			ReplicationMethod: FullTable,
			Schema:            eventsSchema(),
			fetch:             fetchEvents,
		},
		{
			Name:              "balance",
			KeyProperties:     []string{"symbol", "id"},
			ReplicationMethod: FullTable,
			Schema:            reportsSchema(),
			fetch:             fetchReports(fireant.BalanceSheet),
		},
		{
			Name:              "income_statement",
			KeyProperties:     []string{"symbol", "id"},
			ReplicationMethod: FullTable,
			Schema:            reportsSchema(),
			fetch:             fetchReports(fireant.IncomeStatement),
		},
		{
			Name:              "direct_cashflow",
			KeyProperties:     []string{"symbol", "id"},
			ReplicationMethod: FullTable,
			Schema:            reportsSchema(),
			fetch:             fetchReports(fireant.DirectCashflow),
		},
		{
			Name:              "indirect_cashflow",
			KeyProperties:     []string{"symbol", "id"},
			ReplicationMethod: FullTable,
			Schema:            reportsSchema(),
			fetch:             fetchReports(fireant.IndirectCashflow),
		},
		{
			Name:              "indicators",
			KeyProperties:     []string{"symbol", "name"},
			ReplicationMethod: FullTable,
			Schema:            indicatorsSchema(),
			fetch:             fetchIndicators,
		},
	}
}
