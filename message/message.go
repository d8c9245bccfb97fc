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

// Package message initializes configuration structs from generic JSON
// values, enforcing required fields, defaults and value choices through
// struct tags:
//
//	type Config struct {
//	  Token    string   `json:"access_token" required:"true"`
//	  PageSize int      `json:"page_size" default:"100"`
//	  Method   string   `json:"method" choices:"FULL_TABLE,INCREMENTAL"`
//	  Symbols  []string `json:"symbols"`
//	}
//
//	func (c *Config) InitMessage(js interface{}) error {
//	  return message.Init(c, js)
//	}
//
// Unlike plain encoding/json unmarshaling, unrecognized fields in the input
// are an error, so configuration typos surface immediately.
package message

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/stockparfait/errors"
)

// Message is a configuration value initialized from a generic JSON object,
// typically implemented by a struct pointer calling Init.
type Message interface {
	InitMessage(js interface{}) error
}

var rMessage = reflect.TypeOf((*Message)(nil)).Elem()

// jsonName extracts the field's JSON key, or "" when the field is skipped.
func jsonName(f reflect.StructField) string {
	if !f.IsExported() {
		return ""
	}
	tag := f.Tag.Get("json")
	if tag == "" {
		return f.Name
	}
	name := strings.Split(tag, ",")[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// assign converts a raw JSON value to the target type: scalars, string
// slices, and nested Messages (as struct pointers).
func assign(fv reflect.Value, jv interface{}) error {
	if fv.Kind() == reflect.Ptr && fv.Type().Implements(rMessage) {
		ptr := reflect.New(fv.Type().Elem())
		if err := ptr.Interface().(Message).InitMessage(jv); err != nil {
			return errors.Annotate(err, "failed to init %s", fv.Type().Elem().Name())
		}
		fv.Set(ptr)
		return nil
	}
	switch fv.Kind() {
	case reflect.String:
		s, ok := jv.(string)
		if !ok {
			return errors.Reason("not a string: %v", jv)
		}
		fv.SetString(s)
	case reflect.Bool:
		b, ok := jv.(bool)
		if !ok {
			return errors.Reason("not a bool: %v", jv)
		}
		fv.SetBool(b)
	case reflect.Int:
		// encoding/json decodes any number as float64, go-toml as int64.
		switch n := jv.(type) {
		case float64:
			fv.SetInt(int64(n))
		case int64:
			fv.SetInt(n)
		default:
			return errors.Reason("not a number: %v", jv)
		}
	case reflect.Float64:
		n, ok := jv.(float64)
		if !ok {
			return errors.Reason("not a number: %v", jv)
		}
		fv.SetFloat(n)
	case reflect.Slice:
		if fv.Type().Elem().Kind() != reflect.String {
			return errors.Reason("unsupported slice type: %s", fv.Type())
		}
		raw, ok := jv.([]interface{})
		if !ok {
			return errors.Reason("not a list: %v", jv)
		}
		ss := make([]string, len(raw))
		for i, v := range raw {
			s, ok := v.(string)
			if !ok {
				return errors.Reason("list element %d is not a string: %v", i, v)
			}
			ss[i] = s
		}
		fv.Set(reflect.ValueOf(ss))
	default:
		return errors.Reason("unsupported field type: %s", fv.Type())
	}
	return nil
}

// setDefault parses the `default` tag value into the field's type.
func setDefault(fv reflect.Value, s string) error {
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return errors.Annotate(err, "invalid bool default '%s'", s)
		}
		fv.SetBool(b)
	case reflect.Int:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return errors.Annotate(err, "invalid int default '%s'", s)
		}
		fv.SetInt(i)
	case reflect.Float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return errors.Annotate(err, "invalid float default '%s'", s)
		}
		fv.SetFloat(f)
	default:
		return errors.Reason("default tag on unsupported type: %s", fv.Type())
	}
	return nil
}

func checkChoices(f reflect.StructField, fv reflect.Value) error {
	choices, ok := f.Tag.Lookup("choices")
	if !ok {
		return nil
	}
	if f.Type.Kind() != reflect.String {
		return errors.Reason("choices tag on a non-string field %s", f.Name)
	}
	s := fv.String()
	for _, c := range strings.Split(choices, ",") {
		if s == c {
			return nil
		}
	}
	return errors.Reason("value '%s' for %s is not one of: %s", s, f.Name, choices)
}

// Init populates the struct pointer m from js, which must be a
// map[string]interface{} as produced by encoding/json (or go-toml)
// unmarshaling into interface{}. Missing required fields, invalid choices
// and unrecognized input keys are errors.
func Init(m Message, js interface{}) error {
	rv := reflect.ValueOf(m)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return errors.Reason("message must be a struct pointer, got %T", m)
	}
	if js == nil {
		js = map[string]interface{}{}
	}
	jsMap, ok := js.(map[string]interface{})
	if !ok {
		return errors.Reason("input is not a JSON object: %v", js)
	}

	rt := rv.Elem().Type()
	seen := make(map[string]struct{})
	var missing []string
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		name := jsonName(f)
		if name == "" {
			continue
		}
		fv := rv.Elem().Field(i)
		if jv, ok := jsMap[name]; ok {
			seen[name] = struct{}{}
			if err := assign(fv, jv); err != nil {
				return errors.Annotate(err, "invalid value for '%s'", name)
			}
		} else if f.Tag.Get("required") == "true" {
			missing = append(missing, name)
			continue
		} else if d, ok := f.Tag.Lookup("default"); ok {
			if err := setDefault(fv, d); err != nil {
				return errors.Annotate(err, "invalid default for '%s'", name)
			}
		}
		// The zero value is also checked: a choices list must include ""
		// explicitly to admit an unset field.
		if err := checkChoices(f, fv); err != nil {
			return err
		}
	}
	if len(missing) > 0 {
		return errors.Reason("missing required fields: %s",
			strings.Join(missing, ", "))
	}

	var extra []string
	for k := range jsMap {
		if _, ok := seen[k]; !ok {
			extra = append(extra, k)
		}
	}
	if len(extra) > 0 {
		return errors.Reason("unsupported fields for %s: %s",
			rt.Name(), strings.Join(extra, ", "))
	}
	return nil
}
