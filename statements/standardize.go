// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package statements

import (
	"github.com/alphadose/haxmap"
)

// Standardizer maps raw filer-specific concept labels onto canonical display
// labels. Implementations must be safe for concurrent use; the renderer
// calls StandardizeLabel from many goroutines in batch workloads.
type Standardizer interface {
	StandardizeLabel(concept string, stype StatementType) (string, bool)
}

// MappingStandardizer is an immutable standardization table built once at
// construction. Lookups check the statement-type-specific mapping first,
// then the type-independent default.
type MappingStandardizer struct {
	byType   map[StatementType]map[string]string
	defaults map[string]string
}

// NewMappingStandardizer builds an immutable standardizer from mapping
// tables. The inputs are copied; later mutation of the arguments does not
// affect the standardizer.
func NewMappingStandardizer(byType map[StatementType]map[string]string,
	defaults map[string]string) *MappingStandardizer {
	std := &MappingStandardizer{
		byType:   make(map[StatementType]map[string]string, len(byType)),
		defaults: make(map[string]string, len(defaults)),
	}

	for stype, mapping := range byType {
		copied := make(map[string]string, len(mapping))
		for concept, label := range mapping {
			copied[concept] = label
		}
		std.byType[stype] = copied
	}

	for concept, label := range defaults {
		std.defaults[concept] = label
	}

	return std
}

// StandardizeLabel resolves the canonical label for a concept on a given
// statement type.
func (std *MappingStandardizer) StandardizeLabel(concept string, stype StatementType) (string, bool) {
	if mapping, ok := std.byType[stype]; ok {
		if label, ok := mapping[concept]; ok {
			return label, true
		}
	}

	label, ok := std.defaults[concept]
	return label, ok
}

// CachedStandardizer wraps another Standardizer with a lock-free concurrent
// cache keyed on (concept, statement type). Misses are cached too, so a
// batch render never re-resolves the same concept twice. The cache is
// value-keyed and never invalidated; wrap a fresh instance around a new
// mapping instead of clearing.
type CachedStandardizer struct {
	inner Standardizer
	cache *haxmap.Map[string, string]
}

// NewCachedStandardizer wraps a standardizer with a concurrent cache.
func NewCachedStandardizer(inner Standardizer) *CachedStandardizer {
	return &CachedStandardizer{
		inner: inner,
		cache: haxmap.New[string, string](),
	}
}

// StandardizeLabel resolves through the cache, falling back to the wrapped
// standardizer on first sight of a key. An empty cached value records a
// definitive miss.
func (std *CachedStandardizer) StandardizeLabel(concept string, stype StatementType) (string, bool) {
	key := concept + "|" + string(stype)

	if label, ok := std.cache.Get(key); ok {
		return label, label != ""
	}

	label, ok := std.inner.StandardizeLabel(concept, stype)
	if !ok {
		label = ""
	}
	std.cache.Set(key, label)

	return label, ok
}
