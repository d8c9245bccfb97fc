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

package fireant

import (
	"context"

	"github.com/stockparfait/errors"
)

// Instrument is a row of the /instruments endpoint: a listed security.
type Instrument struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Type     string `json:"type"` // "stock", "index", "fund", "bond"
	Exchange string `json:"exchange"`
	Sector   string `json:"sector"`
}

// IsEquity reports whether per-symbol child data is available for the
// instrument: a regular stock with a standard 3-letter ticker.
func (i Instrument) IsEquity() bool {
	return i.Type == "stock" && len(i.Symbol) == 3
}

// Quote is a row of the historical-quotes endpoint: one trading day.
// Dates are ISO-8601 strings as served by the API.
type Quote struct {
	Symbol           string  `json:"symbol"`
	Date             string  `json:"date"`
	PriceOpen        float64 `json:"priceOpen"`
	PriceHigh        float64 `json:"priceHigh"`
	PriceLow         float64 `json:"priceLow"`
	PriceClose       float64 `json:"priceClose"`
	PriceAverage     float64 `json:"priceAverage"`
	PriceBasic       float64 `json:"priceBasic"`
	AdjRatio         float64 `json:"adjRatio"`
	DealVolume       float64 `json:"dealVolume"`
	PutthroughVolume float64 `json:"putthroughVolume"`
	TotalVolume      float64 `json:"totalVolume"`
	TotalValue       float64 `json:"totalValue"`
	PutthroughValue  float64 `json:"putthroughValue"`
}

// Event is a row of the timescale-marks endpoint: a corporate event such as
// a dividend, an AGM or a rights issue.
type Event struct {
	Symbol  string `json:"symbol"`
	Date    string `json:"date"`
	ID      int64  `json:"id"`
	Label   string `json:"label"`
	Color   string `json:"color"`
	Tooltip string `json:"tooltip"`
}

// ReportValue is one reported period of a financial report line item.
type ReportValue struct {
	Year    int     `json:"year"`
	Quarter int     `json:"quarter"`
	Value   float64 `json:"value"`
}

// FinancialReport is a row of the full-financial-reports endpoint: a single
// line item of a report, with its reported values per period.
type FinancialReport struct {
	Symbol   string        `json:"symbol"`
	ID       int64         `json:"id"`
	ParentID int64         `json:"parentID"`
	Name     string        `json:"name"`
	Level    int           `json:"level"`
	Values   []ReportValue `json:"values"`
}

// Indicator is a row of the financial-indicators endpoint: a named
// fundamental ratio for the symbol.
type Indicator struct {
	Symbol    string  `json:"symbol"`
	Group     string  `json:"group"`
	Name      string  `json:"name"`
	ShortName string  `json:"shortName"`
	Value     float64 `json:"value"`
}

// ReportType selects which financial report full-financial-reports serves.
type ReportType int

// Report type values of the full-financial-reports endpoint.
const (
	BalanceSheet     ReportType = 1
	IncomeStatement  ReportType = 2
	DirectCashflow   ReportType = 3
	IndirectCashflow ReportType = 4
)

// Instruments creates the query for all listed instruments.
func Instruments() *Query {
	return NewQuery("instruments")
}

// Quotes creates the query for the symbol's historical daily quotes.
func Quotes(symbol string) *Query {
	return NewQuery("symbols", symbol, "historical-quotes")
}

// Events creates the query for the symbol's corporate events.
func Events(symbol string) *Query {
	return NewQuery("symbols", symbol, "timescale-marks")
}

// Reports creates the query for the symbol's financial report of the given
// type for the reporting period. The endpoint serves the full report as of
// the period, so a single result row set suffices.
func Reports(symbol string, tp ReportType, year, quarter int) *Query {
	return NewQuery("symbols", symbol, "full-financial-reports").
		WithInt("type", int(tp)).
		WithInt("year", year).
		WithInt("quarter", quarter).
		Limit(1)
}

// Indicators creates the query for the symbol's financial indicators.
func Indicators(symbol string) *Query {
	return NewQuery("symbols", symbol, "financial-indicators")
}

// FetchInstruments downloads all instruments.
func FetchInstruments(ctx context.Context) ([]Instrument, error) {
	it := Instruments().Read(ctx)
	var res []Instrument
	for {
		var row Instrument
		ok, err := it.Next(&row)
		if err != nil {
			return nil, errors.Annotate(err, "failed to read instruments")
		}
		if !ok {
			break
		}
		res = append(res, row)
	}
	return res, nil
}

// FetchQuotes downloads the symbol's daily quotes in [start, end], paging as
// needed. The API omits the symbol from quote rows; it is set on each row.
func FetchQuotes(ctx context.Context, symbol, start, end string, pageSize int) ([]Quote, error) {
	it := Quotes(symbol).StartDate(start).EndDate(end).ReadPaged(ctx, pageSize)
	var res []Quote
	for {
		var row Quote
		ok, err := it.Next(&row)
		if err != nil {
			return nil, errors.Annotate(err, "failed to read quotes for %s", symbol)
		}
		if !ok {
			break
		}
		row.Symbol = symbol
		res = append(res, row)
	}
	return res, nil
}

// FetchEvents downloads the symbol's corporate events in [start, end].
func FetchEvents(ctx context.Context, symbol, start, end string, limit int) ([]Event, error) {
	q := Events(symbol).StartDate(start).EndDate(end)
	if limit > 0 {
		q = q.Limit(limit)
	}
	it := q.Read(ctx)
	var res []Event
	for {
		var row Event
		ok, err := it.Next(&row)
		if err != nil {
			return nil, errors.Annotate(err, "failed to read events for %s", symbol)
		}
		if !ok {
			break
		}
		row.Symbol = symbol
		res = append(res, row)
	}
	return res, nil
}

// FetchReports downloads the symbol's financial report line items of the
// given type as of the reporting period.
func FetchReports(ctx context.Context, symbol string, tp ReportType, year, quarter int) ([]FinancialReport, error) {
	it := Reports(symbol, tp, year, quarter).Read(ctx)
	var res []FinancialReport
	for {
		var row FinancialReport
		ok, err := it.Next(&row)
		if err != nil {
			return nil, errors.Annotate(err,
				"failed to read type %d report for %s", tp, symbol)
		}
		if !ok {
			break
		}
		row.Symbol = symbol
		res = append(res, row)
	}
	return res, nil
}

// FetchIndicators downloads the symbol's financial indicators.
func FetchIndicators(ctx context.Context, symbol string) ([]Indicator, error) {
	it := Indicators(symbol).Read(ctx)
	var res []Indicator
	for {
		var row Indicator
		ok, err := it.Next(&row)
		if err != nil {
			return nil, errors.Annotate(err,
				"failed to read indicators for %s", symbol)
		}
		if !ok {
			break
		}
		row.Symbol = symbol
		res = append(res, row)
	}
	return res, nil
}
