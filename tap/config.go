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
	"encoding/json"
	"runtime"
	"strings"
	"time"

	"github.com/stockparfait/errors"
	"github.com/vnstock/tap-vnstock/message"

	toml "github.com/pelletier/go-toml/v2"
)

// defaultLookbackDays is the extraction window when neither a bookmark nor a
// configured start date exists.
const defaultLookbackDays = 7

// Config is the tap configuration, conventionally supplied as config.json.
// A .toml file with the same keys is also accepted.
type Config struct {
	AccessToken string   `json:"access_token" required:"true"`
	StartDate   string   `json:"start_date"` // YYYY-MM-DD
	EndDate     string   `json:"end_date"`   // YYYY-MM-DD; default: today
	UserAgent   string   `json:"user_agent"`
	Symbols     []string `json:"symbols"` // overrides instrument discovery
	PageSize    int      `json:"page_size" default:"100"`
	Parallelism int      `json:"parallelism"` // default: 2*NumCPU, capped at 16
}

var _ message.Message = &Config{}

// InitMessage implements message.Message.
func (c *Config) InitMessage(js interface{}) error {
	if err := message.Init(c, js); err != nil {
		return errors.Annotate(err, "failed to init Config")
	}
	for _, d := range []string{c.StartDate, c.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return errors.Annotate(err, "invalid date '%s', expected YYYY-MM-DD", d)
		}
	}
	if c.PageSize <= 0 {
		return errors.Reason("page_size = %d must be positive", c.PageSize)
	}
	if c.Parallelism <= 0 {
		c.Parallelism = 2 * runtime.NumCPU()
		if c.Parallelism > 16 {
			c.Parallelism = 16
		}
	}
	return nil
}

// ParseConfig reads a config from its JSON serialization, or from TOML when
// the file name ends in ".toml".
func ParseConfig(data []byte, fileName string) (*Config, error) {
	var js interface{}
	if strings.HasSuffix(fileName, ".toml") {
		var m map[string]interface{}
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, errors.Annotate(err, "failed to parse TOML config")
		}
		js = m
	} else {
		if err := json.Unmarshal(data, &js); err != nil {
			return nil, errors.Annotate(err, "failed to parse JSON config")
		}
	}
	var c Config
	if err := c.InitMessage(js); err != nil {
		return nil, errors.Annotate(err, "invalid config")
	}
	return &c, nil
}

// Start resolves the extraction start date: the stream bookmark when set,
// else the configured start date, else a week before now. Bookmarks are
// ISO-8601 timestamps; only the date part is used in queries.
func (c *Config) Start(now time.Time, bookmark string) string {
	if bookmark != "" {
		if len(bookmark) > 10 {
			bookmark = bookmark[:10]
		}
		return bookmark
	}
	if c.StartDate != "" {
		return c.StartDate
	}
	return now.UTC().AddDate(0, 0, -defaultLookbackDays).Format("2006-01-02")
}

// End resolves the extraction end date: the configured end date, else now.
func (c *Config) End(now time.Time) string {
	if c.EndDate != "" {
		return c.EndDate
	}
	return now.UTC().Format("2006-01-02")
}
