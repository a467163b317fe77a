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
package xbrl

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// Document is the JSON interchange form of a parsed filing, as written by
// the upstream XBRL parser. Load converts it into an immutable Filing.
type Document struct {
	Entity       EntityInfo                   `json:"entity"`
	Facts        []DocumentFact               `json:"facts"`
	Contexts     []*Context                   `json:"contexts"`
	Presentation []*PresentationTree          `json:"presentation"`
	Calculation  []CalculationEdge            `json:"calculation,omitempty"`
	Labels       map[string]map[string]string `json:"labels,omitempty"`
}

// DocumentFact is a fact as serialized by the parser. Decimals stays a
// string so the "INF" sentinel survives the trip.
type DocumentFact struct {
	Concept    string `json:"concept"`
	ContextRef string `json:"context_ref"`
	Value      string `json:"value"`
	Decimals   string `json:"decimals,omitempty"`
	UnitRef    string `json:"unit_ref,omitempty"`
}

// Load reads a parsed-filing JSON document and builds the Filing fact store.
func Load(r io.Reader) (*Filing, error) {
	var doc Document

	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("could not decode filing document: %w", err)
	}

	return FromDocument(&doc), nil
}

// LoadFile reads a parsed-filing JSON document from disk.
func LoadFile(fn string) (*Filing, error) {
	fh, err := os.Open(fn)
	if err != nil {
		return nil, fmt.Errorf("could not open filing document: %w", err)
	}

	defer func() {
		if err := fh.Close(); err != nil {
			log.Error().Err(err).Str("FileName", fn).Msg("error closing filing document")
		}
	}()

	return Load(fh)
}

// FromDocument converts the interchange form into a Filing.
func FromDocument(doc *Document) *Filing {
	facts := make([]*Fact, 0, len(doc.Facts))
	for _, df := range doc.Facts {
		fact := &Fact{
			Concept:    df.Concept,
			ContextRef: df.ContextRef,
			Value:      df.Value,
			Decimals:   ParseDecimals(df.Decimals),
			UnitRef:    df.UnitRef,
		}
		if val, ok := parseNumeric(df.Value); ok {
			fact.NumericVal = &val
		}
		facts = append(facts, fact)
	}

	return NewFiling(doc.Entity, facts, doc.Contexts, doc.Presentation,
		doc.Calculation, doc.Labels)
}

// parseNumeric parses a reported value, tolerating thousands separators and
// parenthesized negatives.
func parseNumeric(value string) (float64, bool) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(value, ",", ""))
	if cleaned == "" || cleaned == "-" || cleaned == "—" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = strings.Trim(cleaned, "()")
	}

	val, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}

	if negative {
		val = -val
	}

	return val, true
}
