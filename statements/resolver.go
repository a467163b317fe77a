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
	"strings"

	"github.com/penny-vault/pvstatements/xbrl"
	"github.com/rs/zerolog/log"
)

// Index is the statement lookup table for one filing, built once by scanning
// every presentation role. Immutable after construction; safe for concurrent
// reads.
type Index struct {
	descriptors []*StatementDescriptor
	byRole      map[string]*StatementDescriptor
	byType      map[StatementType][]*StatementDescriptor
}

// Resolution is the outcome of a statement query: the resolved descriptor
// plus every candidate considered. A nil Descriptor with a non-empty
// candidate list means the query was ambiguous beyond repair; both empty
// means not found.
type Resolution struct {
	Descriptor *StatementDescriptor
	Candidates []*StatementDescriptor
	Type       StatementType

	// DisplayType is the caller-visible type label: the type name, with
	// "Parenthetical" appended when a parenthetical view was requested but no
	// dedicated parenthetical role exists.
	DisplayType string
}

// NewIndex classifies every presentation role in the filing and builds the
// lookup table.
func NewIndex(filing *xbrl.Filing) *Index {
	idx := &Index{
		byRole: make(map[string]*StatementDescriptor),
		byType: make(map[StatementType][]*StatementDescriptor),
	}

	for _, tree := range filing.PresentationTrees() {
		desc := classify(tree)
		idx.descriptors = append(idx.descriptors, desc)
		idx.byRole[tree.Role] = desc
		idx.byType[desc.Type] = append(idx.byType[desc.Type], desc)
	}

	log.Debug().Int("NumRoles", len(idx.descriptors)).Msg("built statement index")

	return idx
}

// classify determines the statement type for one presentation role: the
// root-concept table first, then naming patterns on the abstract root, then
// keywords in the role definition.
func classify(tree *xbrl.PresentationTree) *StatementDescriptor {
	desc := &StatementDescriptor{
		Role:        tree.Role,
		Definition:  tree.Definition,
		RootConcept: tree.RootConcept,
		Type:        Other,
	}

	defLower := strings.ToLower(tree.Definition)
	desc.Parenthetical = strings.Contains(defLower, "parenthetical")

	if stype, ok := rootConceptTypes[tree.RootConcept]; ok {
		desc.Type = stype
		return desc
	}

	if stype, ok := classifyRootName(tree.RootConcept); ok {
		desc.Type = stype
		return desc
	}

	for _, entry := range definitionKeywords {
		if strings.Contains(defLower, entry.keyword) {
			desc.Type = entry.stype
			return desc
		}
	}

	return desc
}

// classifyRootName recognizes filer-specific abstract roots by naming
// convention when the concept table has no entry.
func classifyRootName(concept string) (StatementType, bool) {
	name := concept
	if idx := strings.LastIndex(name, ":"); idx >= 0 {
		name = name[idx+1:]
	}

	if !strings.HasSuffix(name, "Abstract") && !strings.HasSuffix(name, "TextBlock") {
		return Other, false
	}

	switch {
	case strings.Contains(name, "FinancialPosition") || strings.Contains(name, "BalanceSheet"):
		return BalanceSheet, true
	case strings.Contains(name, "ComprehensiveIncome"):
		return ComprehensiveIncome, true
	case strings.Contains(name, "CashFlow"):
		return CashFlowStatement, true
	case strings.Contains(name, "StockholdersEquity") || strings.Contains(name, "ShareholdersEquity"):
		return StatementOfEquity, true
	case strings.Contains(name, "IncomeStatement") || strings.Contains(name, "StatementOfIncome") ||
		strings.Contains(name, "StatementOfOperations"):
		return IncomeStatement, true
	case strings.Contains(name, "AccountingPolicies"):
		return AccountingPolicies, true
	case strings.Contains(name, "Segment"):
		return SegmentDisclosure, true
	case strings.Contains(name, "Disclosure"):
		return Disclosures, true
	}

	return Other, false
}

// Descriptors returns every classified statement in document order.
func (idx *Index) Descriptors() []*StatementDescriptor {
	return idx.descriptors
}

// ByType returns the statements classified as the given type, in document
// order.
func (idx *Index) ByType(stype StatementType) []*StatementDescriptor {
	return idx.byType[stype]
}

// FindStatement resolves a user query against the index. The query may be a
// statement type name, a role URI, a role short name, the role definition
// text, or a fragment of a short name; strategies are tried in that order and
// the first hit wins. An unresolvable query returns a Resolution with a nil
// Descriptor, never an error.
func (idx *Index) FindStatement(query string, wantParenthetical bool) *Resolution {
	res := &Resolution{Type: Other}

	// 1: exact statement-type enum
	if stype, ok := ParseStatementType(query); ok {
		if candidates := idx.byType[stype]; len(candidates) > 0 {
			res.Candidates = candidates
			res.Descriptor = pickParenthetical(candidates, wantParenthetical)
			res.Type = stype
			res.DisplayType = displayType(res.Descriptor, stype, wantParenthetical)
			return res
		}
		// A recognized type with no matching role still reports its type so
		// callers can distinguish "bad query" from "filing lacks statement".
		res.Type = stype
		return res
	}

	// 2: exact role URI
	if desc, ok := idx.byRole[query]; ok {
		return idx.resolved(desc, wantParenthetical)
	}

	// 3: case-insensitive role short name
	queryLower := strings.ToLower(query)
	for _, desc := range idx.descriptors {
		if strings.ToLower(shortName(desc.Role)) == queryLower {
			return idx.resolved(desc, wantParenthetical)
		}
	}

	// 4: normalized definition text
	normalized := normalizeDefinition(query)
	for _, desc := range idx.descriptors {
		if normalizeDefinition(desc.Definition) == normalized {
			return idx.resolved(desc, wantParenthetical)
		}
	}

	// 5: substring of role short name
	for _, desc := range idx.descriptors {
		if strings.Contains(strings.ToLower(shortName(desc.Role)), queryLower) {
			return idx.resolved(desc, wantParenthetical)
		}
	}

	log.Debug().Str("Query", query).Msg("statement query did not resolve")

	return res
}

// resolved builds a Resolution for a directly-matched descriptor, honoring a
// parenthetical preference among same-type siblings.
func (idx *Index) resolved(desc *StatementDescriptor, wantParenthetical bool) *Resolution {
	candidates := idx.byType[desc.Type]
	if len(candidates) == 0 {
		candidates = []*StatementDescriptor{desc}
	}

	chosen := desc
	if wantParenthetical && !desc.Parenthetical {
		if alt := pickParenthetical(candidates, true); alt.Parenthetical {
			chosen = alt
		}
	}

	return &Resolution{
		Descriptor:  chosen,
		Candidates:  candidates,
		Type:        chosen.Type,
		DisplayType: displayType(chosen, chosen.Type, wantParenthetical),
	}
}

// pickParenthetical selects from candidates according to the parenthetical
// preference: a matching parenthetical role when asked for one, otherwise the
// first non-parenthetical role.
func pickParenthetical(candidates []*StatementDescriptor, wantParenthetical bool) *StatementDescriptor {
	for _, desc := range candidates {
		if desc.Parenthetical == wantParenthetical {
			return desc
		}
	}
	return candidates[0]
}

// displayType derives the caller-visible type label. When a parenthetical
// view was requested but only a primary role exists, the label carries a
// "Parenthetical" suffix so output is honest about what was asked for.
func displayType(desc *StatementDescriptor, stype StatementType, wantParenthetical bool) string {
	label := string(stype)
	if wantParenthetical && (desc == nil || !desc.Parenthetical) {
		label += "Parenthetical"
	}
	return label
}

func shortName(role string) string {
	trimmed := strings.TrimRight(role, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

// normalizeDefinition lowercases and strips spaces so definition text like
// "1001 - Statement - Consolidated Balance Sheets" compares loosely.
func normalizeDefinition(definition string) string {
	return strings.ToLower(strings.ReplaceAll(definition, " ", ""))
}
