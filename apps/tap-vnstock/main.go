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
	"context"
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/logging"
	"github.com/vnstock/tap-vnstock/fireant"
	"github.com/vnstock/tap-vnstock/singer"
	"github.com/vnstock/tap-vnstock/storage"
	"github.com/vnstock/tap-vnstock/table"
	"github.com/vnstock/tap-vnstock/tap"
)

type Flags struct {
	Config      string // required; local path or s3:// URI
	Catalog     string // optional stream selection
	State       string // optional incremental bookmarks
	WriteState  string // write the final state here after a successful sync
	Discover    bool   // print the catalog and exit
	ListStreams bool   // print a human-readable stream listing and exit
	LogLevel    logging.Level
}

func parseFlags(args []string) (*Flags, error) {
	var flags Flags
	fs := flag.NewFlagSet("tap-vnstock", flag.ExitOnError)
	fs.StringVar(&flags.Config, "config", "", "config file, local path or s3:// URI (required)")
	fs.StringVar(&flags.Catalog, "catalog", "", "catalog file for stream selection")
	fs.StringVar(&flags.State, "state", "", "state file with incremental bookmarks")
	fs.StringVar(&flags.WriteState, "write-state", "",
		"write the final state to this path after a successful sync")
	fs.BoolVar(&flags.Discover, "discover", false, "print the catalog and exit")
	fs.BoolVar(&flags.ListStreams, "list-streams", false,
		"print a readable list of streams and exit")
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")

	err := fs.Parse(args)
	if err != nil {
		return nil, err
	}
	if flags.Discover && flags.ListStreams {
		return nil, errors.Reason("at most one of -discover or -list-streams")
	}
	// Discovery and the listing need no config or credentials.
	if flags.Config == "" && !flags.Discover && !flags.ListStreams {
		return nil, errors.Reason("missing required -config argument")
	}
	return &flags, err
}

func discover(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tap.Discover()); err != nil {
		return errors.Annotate(err, "failed to write catalog")
	}
	return nil
}

func listStreams(w io.Writer) error {
	tbl := table.New("stream", "replication", "key properties", "replication key")
	for _, s := range tap.Streams() {
		err := tbl.AddRow(s.Name, s.ReplicationMethod,
			strings.Join(s.KeyProperties, ", "), s.ReplicationKey)
		if err != nil {
			return errors.Annotate(err, "failed to add stream row")
		}
	}
	if err := tbl.WriteText(w); err != nil {
		return errors.Annotate(err, "failed to write stream table")
	}
	return nil
}

func sync(ctx context.Context, flags *Flags, w io.Writer) error {
	data, err := storage.ReadFile(ctx, flags.Config)
	if err != nil {
		return errors.Annotate(err, "failed to read config")
	}
	config, err := tap.ParseConfig(data, flags.Config)
	if err != nil {
		return errors.Annotate(err, "failed to parse config")
	}

	var catalog *singer.Catalog
	if flags.Catalog != "" {
		data, err := storage.ReadFile(ctx, flags.Catalog)
		if err != nil {
			return errors.Annotate(err, "failed to read catalog")
		}
		if catalog, err = singer.ParseCatalog(data); err != nil {
			return errors.Annotate(err, "failed to parse catalog")
		}
	}

	state := singer.NewState()
	if flags.State != "" {
		data, err := storage.ReadFile(ctx, flags.State)
		if err != nil {
			return errors.Annotate(err, "failed to read state")
		}
		if state, err = singer.ParseState(data); err != nil {
			return errors.Annotate(err, "failed to parse state")
		}
	}

	httpClient := &http.Client{
		Transport: fireant.Transport(config.AccessToken, config.UserAgent, nil),
	}
	ctx = fetch.UseClient(ctx, httpClient)
	ctx = fireant.UseClient(ctx)

	t := tap.New(config, catalog, state, singer.NewWriter(w))
	if err := t.Sync(ctx); err != nil {
		return errors.Annotate(err, "sync failed")
	}

	if flags.WriteState != "" {
		data, err := json.Marshal(t.State)
		if err != nil {
			return errors.Annotate(err, "failed to serialize state")
		}
		if err := storage.WriteFile(ctx, flags.WriteState, data); err != nil {
			return errors.Annotate(err, "failed to write state")
		}
	}
	return nil
}

func run(args []string) error {
	flags, err := parseFlags(args)
	if err != nil {
		return errors.Annotate(err, "failed to parse flags")
	}
	ctx := context.Background()
	// Logs go to stderr; stdout carries only Singer messages.
	ctx = logging.Use(ctx, logging.DefaultGoLogger(flags.LogLevel))

	switch {
	case flags.Discover:
		return discover(os.Stdout)
	case flags.ListStreams:
		return listStreams(os.Stdout)
	}
	return sync(ctx, flags, os.Stdout)
}

// main is not tested, keep it short.
func main() {
	if err := run(os.Args[1:]); err != nil {
		ctx := context.Background()
		ctx = logging.Use(ctx, logging.DefaultGoLogger(logging.Info))
		logging.Errorf(ctx, err.Error())
		os.Exit(1)
	}
}
