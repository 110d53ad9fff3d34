// Copyright 2010-2024 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the solver configuration: a flat set of dotted keys such as
// `Weight.TimePreferences` or `Debug.Criterion`.
//
// Properties can be loaded from YAML. Nested maps are flattened, so
//
//	Weight:
//	  TimePreferences: 2.5
//	Debug.Criterion: true
//
// defines the keys `Weight.TimePreferences` and `Debug.Criterion`.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	log "github.com/golang/glog"
	"gopkg.in/yaml.v3"
)

// ErrNotAMap is returned when the YAML document is not a mapping.
var ErrNotAMap = errors.New("configuration is not a map")

// Properties is a set of configuration keys. The zero value is empty and ready to use; a nil
// *Properties behaves like an empty one for all getters.
type Properties struct {
	values map[string]string
}

// New returns properties holding the given key/value pairs.
func New(kv map[string]string) *Properties {
	p := &Properties{values: make(map[string]string, len(kv))}
	for k, v := range kv {
		p.values[k] = v
	}
	return p
}

// Parse reads properties from a YAML document.
func Parse(data []byte) (*Properties, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}
	p := &Properties{values: make(map[string]string)}
	if doc == nil {
		return p, nil
	}
	root, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top level is %T: %w", doc, ErrNotAMap)
	}
	p.flatten("", root)
	return p, nil
}

// Load reads properties from a YAML file.
func Load(path string) (*Properties, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func (p *Properties) flatten(prefix string, m map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch v := v.(type) {
		case map[string]any:
			p.flatten(key, v)
		case map[any]any:
			sub := make(map[string]any, len(v))
			for sk, sv := range v {
				sub[fmt.Sprint(sk)] = sv
			}
			p.flatten(key, sub)
		case nil:
			p.values[key] = ""
		default:
			p.values[key] = fmt.Sprint(v)
		}
	}
}

// Set sets the value of a key.
func (p *Properties) Set(key, value string) {
	if p.values == nil {
		p.values = make(map[string]string)
	}
	p.values[key] = value
}

// Keys returns the sorted keys.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// String returns the value of `key`, or `def` when the key is missing.
func (p *Properties) String(key, def string) string {
	if p == nil {
		return def
	}
	if v, ok := p.values[key]; ok {
		return v
	}
	return def
}

// Float returns the value of `key` as a float64, or `def` when the key is missing or malformed.
func (p *Properties) Float(key string, def float64) float64 {
	s, ok := p.lookup(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Warningf("property %s=%q is not a number, using %v", key, s, def)
		return def
	}
	return f
}

// Int returns the value of `key` as an int, or `def` when the key is missing or malformed.
func (p *Properties) Int(key string, def int) int {
	s, ok := p.lookup(key)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		log.Warningf("property %s=%q is not an integer, using %v", key, s, def)
		return def
	}
	return i
}

// Bool returns the value of `key` as a bool, or `def` when the key is missing or malformed.
func (p *Properties) Bool(key string, def bool) bool {
	s, ok := p.lookup(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		log.Warningf("property %s=%q is not a boolean, using %v", key, s, def)
		return def
	}
	return b
}

func (p *Properties) lookup(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	s, ok := p.values[key]
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, ok
}
