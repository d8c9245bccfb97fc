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
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/logging"
)

type contextKey int

const (
	clientContextKey contextKey = iota
)

// URL is the default base URL of the API server. It may be overwritten in
// tests before creating a new client.
var URL = "https://api.fireant.vn"

// Client for querying the FireAnt API.
type Client struct {
	baseURL string
}

func newClient(baseURL string) *Client {
	return &Client{baseURL: baseURL}
}

// GetClient extracts the Client from the context, if any.
func GetClient(ctx context.Context) *Client {
	c, ok := ctx.Value(clientContextKey).(*Client)
	if !ok {
		return nil
	}
	return c
}

// UseClient creates a new client and injects it into the context.
func UseClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, clientContextKey, newClient(URL))
}

// bearerTransport attaches the Authorization and optional User-Agent headers
// to every request.
type bearerTransport struct {
	token     string
	userAgent string
	base      http.RoundTripper
}

var _ http.RoundTripper = &bearerTransport{}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the original request.
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+t.token)
	if t.userAgent != "" {
		r.Header.Set("User-Agent", t.userAgent)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(r)
}

// Transport creates an http.RoundTripper that authenticates every request
// with the bearer token. Inject the resulting client with fetch.UseClient.
func Transport(token, userAgent string, base http.RoundTripper) http.RoundTripper {
	return &bearerTransport{token: token, userAgent: userAgent, base: base}
}

// Query is an immutable builder for an API query. Builder methods copy the
// query, leaving the original intact.
type Query struct {
	path   string // URL path relative to the base URL
	params url.Values
}

// NewQuery creates a query for the URL path assembled from the segments.
func NewQuery(segments ...string) *Query {
	return &Query{path: "/" + strings.Join(segments, "/")}
}

// Copy creates a deep copy of the query.
func (q *Query) Copy() *Query {
	q2 := Query{path: q.path, params: make(url.Values, len(q.params))}
	for k, v := range q.params {
		q2.params[k] = v
	}
	return &q2
}

// With adds a query parameter.
func (q *Query) With(key, value string) *Query {
	q2 := q.Copy()
	q2.params.Set(key, value)
	return q2
}

// WithInt adds an integer query parameter.
func (q *Query) WithInt(key string, value int) *Query {
	return q.With(key, fmt.Sprintf("%d", value))
}

// StartDate bounds the query results from below, inclusive, as YYYY-MM-DD.
func (q *Query) StartDate(date string) *Query {
	return q.With("startDate", date)
}

// EndDate bounds the query results from above, inclusive, as YYYY-MM-DD.
func (q *Query) EndDate(date string) *Query {
	return q.With("endDate", date)
}

// Limit caps the number of rows in a single response.
func (q *Query) Limit(n int) *Query {
	return q.WithInt("limit", n)
}

// Path returns the URL path to add to the base URL.
func (q *Query) Path() string {
	return q.path
}

// Values returns the query values. Each call creates a new object, so the
// caller is free to modify it without affecting the query.
func (q *Query) Values() url.Values {
	v := make(url.Values, len(q.params))
	for k, vs := range q.params {
		v[k] = vs
	}
	return v
}

// readPage executes the query using the Client from the context and decodes
// the JSON array response into raw rows.
func (q *Query) readPage(ctx context.Context) ([]json.RawMessage, error) {
	client := GetClient(ctx)
	if client == nil {
		return nil, errors.Reason("no client in context")
	}
	uri := client.baseURL + q.path
	var rows []json.RawMessage
	if err := fetch.FetchJSON(ctx, uri, &rows, q.Values(), nil); err != nil {
		return nil, errors.Annotate(err, "failed to fetch %s", q.path)
	}
	return rows, nil
}

// RowIterator iterates over query results row by row. For paged queries the
// offset/limit paging is handled transparently.
type RowIterator struct {
	context   context.Context
	query     *Query
	pageSize  int // 0 = the entire result is a single response
	rows      []json.RawMessage
	index     int
	offset    int
	pageCount int
	done      bool
}

// Read sets up an iterator over the result rows of a single response.
func (q *Query) Read(ctx context.Context) *RowIterator {
	return &RowIterator{context: ctx, query: q}
}

// ReadPaged sets up an iterator which pages through the results with
// offset/limit queries of pageSize rows, until a short page.
func (q *Query) ReadPaged(ctx context.Context, pageSize int) *RowIterator {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &RowIterator{context: ctx, query: q, pageSize: pageSize}
}

// nextPage fetches the next page of data. The first return value is false
// when there are no more pages.
func (it *RowIterator) nextPage() (bool, error) {
	if it.done {
		return false, nil
	}
	q := it.query
	if it.pageSize > 0 {
		q = q.Limit(it.pageSize).WithInt("offset", it.offset)
	}
	rows, err := q.readPage(it.context)
	if err != nil {
		return false, errors.Annotate(err, "failed to query page %d", it.pageCount+1)
	}
	it.rows = rows
	it.index = 0
	it.offset += len(rows)
	it.pageCount++
	if it.pageSize == 0 || len(rows) < it.pageSize {
		it.done = true // a short page is the last page
	}
	logging.Debugf(it.context, "FireAnt: fetched page %d of %s with %d rows",
		it.pageCount, it.query.path, len(rows))
	return len(rows) > 0, nil
}

// Next decodes the next row into v. The second value is false when there are
// no more rows. An error may be returned regardless of the end of iterator.
func (it *RowIterator) Next(v interface{}) (bool, error) {
	if it.index >= len(it.rows) {
		if it.pageCount > 0 && it.done {
			return false, nil
		}
		ok, err := it.nextPage()
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	raw := it.rows[it.index]
	it.index++
	if err := json.Unmarshal(raw, v); err != nil {
		return true, errors.Annotate(err, "failed to parse row %d in page %d",
			it.index, it.pageCount)
	}
	return true, nil
}
