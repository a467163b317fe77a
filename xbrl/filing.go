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
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DecimalsInf is the sentinel for facts tagged decimals="INF": the value is
// exact and outranks every finite precision during duplicate arbitration.
const DecimalsInf = math.MaxInt32

// Fact is a single tagged value from a filing: a concept, a context
// reference, the reported value and its precision. Facts never own their
// Context; resolve it through the Filing. Multiple facts may share a
// (concept, context) pair with differing precision -- that is duplicate
// reporting, not an error.
type Fact struct {
	// Concept is the qualified concept name, e.g. "us-gaap:Assets".
	Concept string `json:"concept"`

	// ContextRef references a Context.ID within the same filing.
	ContextRef string `json:"context_ref"`

	// Value is the raw reported value. Numeric facts also carry NumericVal.
	Value string `json:"value"`

	// NumericVal is the parsed numeric value, nil for text facts.
	NumericVal *float64 `json:"numeric_val,omitempty"`

	// Decimals is the power-of-ten precision exponent: -3 means the value is
	// rounded to thousands, -6 to millions. DecimalsInf marks exact values.
	Decimals int `json:"decimals"`

	// UnitRef names the unit of measure (e.g. "usd", "shares"), empty for
	// text facts.
	UnitRef string `json:"unit_ref,omitempty"`
}

// Float64 returns the numeric value of the fact.
func (f *Fact) Float64() (float64, error) {
	if f.NumericVal != nil {
		return *f.NumericVal, nil
	}
	return 0, fmt.Errorf("fact %s has no numeric value", f.Concept)
}

// IsNumeric reports whether the fact carries a parsed numeric value.
func (f *Fact) IsNumeric() bool {
	return f.NumericVal != nil
}

// Dimension qualifies a context along one axis, e.g. axis
// "us-gaap:StatementGeographicalAxis" with member "country:US".
type Dimension struct {
	Axis   string `json:"axis"`
	Member string `json:"member"`
}

// Context groups the reporting period and dimensional qualifiers that facts
// reference. Contexts are immutable and owned by the Filing.
type Context struct {
	ID         string      `json:"id"`
	EntityID   string      `json:"entity_id,omitempty"`
	Period     Period      `json:"period"`
	Dimensions []Dimension `json:"dimensions,omitempty"`
}

// EntityInfo carries the document-and-entity metadata needed for period
// selection: the fiscal year end, the reported fiscal period, and the
// document type. Sourced from the filing's DEI facts by the parser.
type EntityInfo struct {
	RegistrantName string `json:"registrant_name,omitempty"`

	// FiscalYearEndMonth and FiscalYearEndDay describe the entity's fiscal
	// year end (e.g. month 9, day 28 for a late-September year end). Zero
	// when the filing does not report one.
	FiscalYearEndMonth int `json:"fiscal_year_end_month,omitempty"`
	FiscalYearEndDay   int `json:"fiscal_year_end_day,omitempty"`

	// FiscalPeriod is the reported fiscal period focus: "FY", "Q1".."Q4".
	FiscalPeriod string `json:"fiscal_period,omitempty"`

	// DocumentType is the form type, e.g. "10-K" or "10-Q".
	DocumentType string `json:"document_type,omitempty"`

	// DocumentPeriodEnd is the report's period end date. Periods ending
	// after this date belong to later filings and are never displayed.
	DocumentPeriodEnd time.Time `json:"document_period_end,omitempty"`
}

// IsAnnualReport reports whether the filing covers a full fiscal year.
// Some filers mislabel the fiscal period (e.g. "Q4" on a 10-K), so the
// document type is treated as an independent annual signal.
func (e EntityInfo) IsAnnualReport() bool {
	if e.FiscalPeriod == "FY" {
		return true
	}
	return strings.HasPrefix(strings.ToUpper(e.DocumentType), "10-K") ||
		strings.HasPrefix(strings.ToUpper(e.DocumentType), "20-F")
}

// Filing is the immutable fact store for a single parsed XBRL document. All
// indexes are built once at construction; afterwards a Filing is safe for
// unsynchronized concurrent reads.
type Filing struct {
	entity       EntityInfo
	facts        []*Fact
	contexts     map[string]*Context
	trees        []*PresentationTree
	treesByRole  map[string]*PresentationTree
	calcChildren map[string][]CalculationEdge
	calcParents  map[string][]string
	labels       map[string]map[string]string

	factsByConcept map[string][]*Fact
	periodKeys     map[string]PeriodKey
	allPeriods     []Period
}

// NewFiling builds the fact store and its lookup indexes from parsed filing
// content. The inputs are retained, not copied; callers must not mutate them
// afterwards.
func NewFiling(entity EntityInfo, facts []*Fact, contexts []*Context,
	trees []*PresentationTree, calcEdges []CalculationEdge,
	labels map[string]map[string]string) *Filing {
	filing := &Filing{
		entity:         entity,
		facts:          facts,
		contexts:       make(map[string]*Context, len(contexts)),
		trees:          trees,
		treesByRole:    make(map[string]*PresentationTree, len(trees)),
		calcChildren:   make(map[string][]CalculationEdge),
		calcParents:    make(map[string][]string),
		labels:         labels,
		factsByConcept: make(map[string][]*Fact),
		periodKeys:     make(map[string]PeriodKey, len(contexts)),
	}

	if filing.labels == nil {
		filing.labels = make(map[string]map[string]string)
	}

	for _, ctx := range contexts {
		filing.contexts[ctx.ID] = ctx
		filing.periodKeys[ctx.ID] = ctx.Period.Key()
	}

	for _, fact := range facts {
		filing.factsByConcept[fact.Concept] = append(filing.factsByConcept[fact.Concept], fact)
	}

	for _, tree := range trees {
		filing.treesByRole[tree.Role] = tree
	}

	for _, edge := range calcEdges {
		filing.calcChildren[edge.Parent] = append(filing.calcChildren[edge.Parent], edge)
		filing.calcParents[edge.Child] = append(filing.calcParents[edge.Child], edge.Parent)
	}

	filing.allPeriods = collectPeriods(contexts)

	return filing
}

// collectPeriods returns the distinct periods observed across contexts,
// sorted by end date descending with duration ties broken by start date.
func collectPeriods(contexts []*Context) []Period {
	seen := make(map[PeriodKey]Period, len(contexts))
	for _, ctx := range contexts {
		seen[ctx.Period.Key()] = ctx.Period
	}

	periods := make([]Period, 0, len(seen))
	for _, p := range seen {
		periods = append(periods, p)
	}

	sort.Slice(periods, func(i, j int) bool {
		endI, endJ := periods[i].End(), periods[j].End()
		if !endI.Equal(endJ) {
			return endI.After(endJ)
		}
		return periods[i].StartDate.After(periods[j].StartDate)
	})

	return periods
}

// Entity returns the filing's document-and-entity metadata.
func (filing *Filing) Entity() EntityInfo {
	return filing.entity
}

// Facts returns every fact in the filing. The returned slice is shared;
// callers must not modify it.
func (filing *Filing) Facts() []*Fact {
	return filing.facts
}

// FactsForConcept returns every fact reported for the concept, across all
// contexts. The returned slice is shared; callers must not modify it.
func (filing *Filing) FactsForConcept(concept string) []*Fact {
	return filing.factsByConcept[concept]
}

// LookupContext resolves a context by id.
func (filing *Filing) LookupContext(id string) (*Context, bool) {
	ctx, ok := filing.contexts[id]
	return ctx, ok
}

// PeriodKeyForContext returns the canonical period key for a context id.
func (filing *Filing) PeriodKeyForContext(id string) (PeriodKey, bool) {
	key, ok := filing.periodKeys[id]
	return key, ok
}

// AllPeriods returns the distinct reporting periods in the filing, most
// recent first.
func (filing *Filing) AllPeriods() []Period {
	return filing.allPeriods
}

// PresentationTrees returns the filing's presentation trees in document
// order. One tree corresponds to one candidate statement.
func (filing *Filing) PresentationTrees() []*PresentationTree {
	return filing.trees
}

// TreeForRole resolves a presentation tree by its role URI.
func (filing *Filing) TreeForRole(role string) (*PresentationTree, bool) {
	tree, ok := filing.treesByRole[role]
	return tree, ok
}

// CalculationChildren returns the calculation-linkbase children of a concept.
// A concept with calculation children is a total.
func (filing *Filing) CalculationChildren(concept string) []CalculationEdge {
	return filing.calcChildren[concept]
}

// CalculationParents returns the concepts that sum over the given concept in
// the calculation linkbase.
func (filing *Filing) CalculationParents(concept string) []string {
	return filing.calcParents[concept]
}

// ElementLabel returns the best human-readable label for a concept, checking
// the preferred roles in order before the standard label. Falls back to the
// concept's local name when no label exists.
func (filing *Filing) ElementLabel(concept string, preferredRoles ...string) string {
	if byRole, ok := filing.labels[concept]; ok {
		for _, role := range preferredRoles {
			if label, ok := byRole[role]; ok && label != "" {
				return label
			}
		}
		if label, ok := byRole[""]; ok && label != "" {
			return label
		}
	}

	return localName(concept)
}

// localName strips the namespace prefix and splits the CamelCase remainder
// into words: "us-gaap:AccountsPayableCurrent" -> "Accounts Payable Current".
func localName(concept string) string {
	name := concept
	if idx := strings.LastIndex(name, ":"); idx >= 0 {
		name = name[idx+1:]
	}

	var b strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			prev := rune(name[i-1])
			if prev < 'A' || prev > 'Z' {
				b.WriteRune(' ')
			}
		}
		b.WriteRune(r)
	}

	return b.String()
}

// ParseDecimals converts an XBRL decimals attribute to its integer form,
// mapping "INF" to the DecimalsInf sentinel. Empty or unparseable attributes
// yield 0.
func ParseDecimals(attr string) int {
	if strings.EqualFold(attr, "INF") {
		return DecimalsInf
	}
	if attr == "" {
		return 0
	}
	d, err := strconv.Atoi(attr)
	if err != nil {
		return 0
	}
	return d
}
