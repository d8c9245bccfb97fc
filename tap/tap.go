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

// Package tap implements the Singer tap for Vietnamese stock market data:
// stream discovery and the extraction loop emitting SCHEMA, RECORD and
// STATE messages.
package tap

import (
	"context"
	"time"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/iterator"
	"github.com/stockparfait/logging"
	"github.com/vnstock/tap-vnstock/fireant"
	"github.com/vnstock/tap-vnstock/singer"
)

// Tap holds the wiring of one tap run. The catalog and state may be nil, in
// which case all streams are synced from their default start dates.
type Tap struct {
	Config  *Config
	Catalog *singer.Catalog
	State   *singer.State
	Writer  *singer.Writer

	now func() time.Time // overridden in tests
}

// New creates a Tap. A nil state is replaced by an empty one.
func New(config *Config, catalog *singer.Catalog, state *singer.State, w *singer.Writer) *Tap {
	if state == nil {
		state = singer.NewState()
	}
	return &Tap{
		Config:  config,
		Catalog: catalog,
		State:   state,
		Writer:  w,
		now:     time.Now,
	}
}

// Discover produces the catalog of all supported streams.
func Discover() *singer.Catalog {
	var c singer.Catalog
	for _, s := range Streams() {
		c.Streams = append(c.Streams, singer.NewEntry(
			s.Name, s.Schema, s.KeyProperties, s.ReplicationMethod, s.ReplicationKey))
	}
	return &c
}

// symbols returns the child stream symbols: the configured whitelist when
// present, otherwise the 3-letter stock symbols from the instruments list.
func (t *Tap) symbols(instruments []fireant.Instrument) []string {
	if len(t.Config.Symbols) > 0 {
		return t.Config.Symbols
	}
	var res []string
	for _, in := range instruments {
		if in.IsEquity() {
			res = append(res, in.Symbol)
		}
	}
	return res
}

// symbolResult is the outcome of extracting one child stream for one symbol.
type symbolResult struct {
	symbol   string
	records  []interface{}
	bookmark string
	err      error
}

// syncChild extracts one child stream for all symbols. Fetching runs with
// the configured parallelism; record emission and bookmark advancement are
// serialized in the reduction. A failed symbol is logged and skipped, so one
// bad symbol does not abort the whole run.
func (t *Tap) syncChild(ctx context.Context, s *Stream, symbols []string) error {
	if err := t.Writer.Schema(s.Name, s.Schema, s.KeyProperties,
		bookmarkProperties(s)); err != nil {
		return err
	}
	f := func(symbol string) symbolResult {
		records, bookmark, err := s.fetch(ctx, t, symbol)
		return symbolResult{symbol: symbol, records: records, bookmark: bookmark, err: err}
	}
	pm := iterator.ParallelMap(ctx, t.Config.Parallelism,
		iterator.FromSlice(symbols), f)
	defer iterator.Flush[symbolResult](pm)

	numRecords := 0
	err := iterator.Reduce[symbolResult, error](pm, nil,
		func(r symbolResult, prev error) error {
			if prev != nil {
				return prev
			}
			if r.err != nil {
				logging.Warningf(ctx, "skipping %s for %s: %s",
					s.Name, r.symbol, r.err.Error())
				return nil
			}
			for _, record := range r.records {
				if err := t.Writer.Record(s.Name, record); err != nil {
					return errors.Annotate(err, "failed to emit %s record", s.Name)
				}
			}
			numRecords += len(r.records)
			if r.bookmark != "" {
				t.State.Advance(s.Name, r.symbol, r.bookmark)
			}
			return nil
		})
	if err != nil {
		return err
	}
	logging.Infof(ctx, "synced %d %s records for %d symbols",
		numRecords, s.Name, len(symbols))
	if err := t.Writer.State(t.State); err != nil {
		return errors.Annotate(err, "failed to emit state after %s", s.Name)
	}
	return nil
}

func bookmarkProperties(s *Stream) []string {
	if s.ReplicationKey == "" {
		return nil
	}
	return []string{s.ReplicationKey}
}

// Sync runs the extraction for all selected streams.
func (t *Tap) Sync(ctx context.Context) error {
	streams := Streams()
	selected := make(map[string]bool, len(streams))
	anyChild := false
	for _, s := range streams {
		selected[s.Name] = t.Catalog.IsSelected(s.Name)
		if selected[s.Name] && s.fetch != nil {
			anyChild = true
		}
	}

	// The instruments list is needed for the parent stream's own records,
	// and to derive child symbols unless a whitelist is configured.
	var instruments []fireant.Instrument
	if selected[InstrumentsStream] || (anyChild && len(t.Config.Symbols) == 0) {
		var err error
		logging.Infof(ctx, "fetching instruments...")
		instruments, err = fireant.FetchInstruments(ctx)
		if err != nil {
			return errors.Annotate(err, "failed to fetch instruments")
		}
		logging.Infof(ctx, "downloaded %d instruments", len(instruments))
	}

	for _, s := range streams {
		if !selected[s.Name] {
			continue
		}
		if s.fetch == nil { // the parent instruments stream
			if err := t.Writer.Schema(s.Name, s.Schema, s.KeyProperties, nil); err != nil {
				return err
			}
			for _, in := range instruments {
				if err := t.Writer.Record(s.Name, in); err != nil {
					return errors.Annotate(err, "failed to emit instrument record")
				}
			}
			if err := t.Writer.State(t.State); err != nil {
				return errors.Annotate(err, "failed to emit state after instruments")
			}
			continue
		}
		if err := t.syncChild(ctx, s, t.symbols(instruments)); err != nil {
			return errors.Annotate(err, "failed to sync stream %s", s.Name)
		}
	}
	return nil
}
