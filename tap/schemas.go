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

import "github.com/vnstock/tap-vnstock/singer"

// Schemas mirror the JSON tags of the fireant row types.

func instrumentsSchema() *singer.Schema {
	return singer.Object(map[string]*singer.Schema{
		"symbol":   singer.Simple("string"),
		"name":     singer.Nullable("string"),
		"type":     singer.Nullable("string"),
		"exchange": singer.Nullable("string"),
		"sector":   singer.Nullable("string"),
	})
}

func quotesSchema() *singer.Schema {
	return singer.Object(map[string]*singer.Schema{
		"symbol":           singer.Simple("string"),
		"date":             singer.DateTime(),
		"priceOpen":        singer.Nullable("number"),
		"priceHigh":        singer.Nullable("number"),
		"priceLow":         singer.Nullable("number"),
		"priceClose":       singer.Nullable("number"),
		"priceAverage":     singer.Nullable("number"),
		"priceBasic":       singer.Nullable("number"),
		"adjRatio":         singer.Nullable("number"),
		"dealVolume":       singer.Nullable("number"),
		"putthroughVolume": singer.Nullable("number"),
		"totalVolume":      singer.Nullable("number"),
		"totalValue":       singer.Nullable("number"),
		"putthroughValue":  singer.Nullable("number"),
	})
}

func eventsSchema() *singer.Schema {
	return singer.Object(map[string]*singer.Schema{
		"symbol":  singer.Simple("string"),
		"date":    singer.DateTime(),
		"id":      singer.Nullable("integer"),
		"label":   singer.Nullable("string"),
		"color":   singer.Nullable("string"),
		"tooltip": singer.Nullable("string"),
	})
}

func reportsSchema() *singer.Schema {
	return singer.Object(map[string]*singer.Schema{
		"symbol":   singer.Simple("string"),
		"id":       singer.Nullable("integer"),
		"parentID": singer.Nullable("integer"),
		"name":     singer.Nullable("string"),
		"level":    singer.Nullable("integer"),
		"values": singer.Array(singer.Object(map[string]*singer.Schema{
			"year":    singer.Nullable("integer"),
			"quarter": singer.Nullable("integer"),
			"value":   singer.Nullable("number"),
		})),
	})
}

func indicatorsSchema() *singer.Schema {
	return singer.Object(map[string]*singer.Schema{
		"symbol":    singer.Simple("string"),
		"group":     singer.Nullable("string"),
		"name":      singer.Nullable("string"),
		"shortName": singer.Nullable("string"),
		"value":     singer.Nullable("number"),
	})
}
