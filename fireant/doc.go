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

// Package fireant implements a client for the FireAnt market data API at
// https://api.fireant.vn/, which serves Vietnamese stock market data.
//
// Every endpoint used by the tap returns a JSON array of rows. The row
// payloads of the per-symbol endpoints do not repeat the symbol, so the
// fetch helpers inject it into each row. The historical quotes endpoint
// serves bounded pages; RowIterator handles offset/limit paging
// transparently.
//
// The API authenticates with a bearer token. Transport attaches the
// Authorization header, so the token never appears in query strings or logs.
package fireant
