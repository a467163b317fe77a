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
	"sort"
	"strings"

	"github.com/penny-vault/pvstatements/xbrl"
)

// LineItemKind is the closed set of row variants. A row is exactly one of:
// a concept with values, an abstract section header, or a dimensional
// breakout under a concept.
type LineItemKind string

const (
	KindConcept        LineItemKind = "concept"
	KindAbstractHeader LineItemKind = "abstract_header"
	KindDimension      LineItemKind = "dimension"
)

// DimensionLabel is one axis/member pair on a dimensional breakout row,
// carrying display names resolved through the label linkbase.
type DimensionLabel struct {
	Axis        string `json:"axis"`
	Member      string `json:"member"`
	AxisLabel   string `json:"axis_label,omitempty"`
	MemberLabel string `json:"member_label,omitempty"`
}

// LineItem is one ordered row of a resolved statement. Values and Decimals
// are keyed by period; the decimals map feeds the renderer's scale
// inference.
type LineItem struct {
	Kind           LineItemKind               `json:"kind"`
	Concept        string                     `json:"concept"`
	Label          string                     `json:"label"`
	Depth          int                        `json:"depth"`
	Total          bool                       `json:"total,omitempty"`
	PreferredLabel string                     `json:"preferred_label,omitempty"`
	Values         map[xbrl.PeriodKey]float64 `json:"values,omitempty"`
	Decimals       map[xbrl.PeriodKey]int     `json:"decimals,omitempty"`
	Dimensions     []DimensionLabel           `json:"dimensions,omitempty"`
	Children       []string                   `json:"children,omitempty"`
}

// HasValues reports whether any period carries a value.
func (li *LineItem) HasValues() bool {
	return len(li.Values) > 0
}

// LineItemOptions adjusts line item generation.
type LineItemOptions struct {
	// PeriodFilter, when non-nil, restricts emitted values to these period
	// keys.
	PeriodFilter map[xbrl.PeriodKey]bool

	// DisplayDimensions emits one child row per distinct dimension
	// combination. Enabled for segment/geography style disclosures, never
	// for core statements.
	DisplayDimensions bool
}

type lineItemGenerator struct {
	filing *xbrl.Filing
	tree   *xbrl.PresentationTree
	opts   LineItemOptions
	items  []*LineItem
}

// GenerateLineItems walks the presentation tree depth-first and emits the
// ordered row sequence for a statement: concept rows with duplicate facts
// arbitrated per period, abstract headers for populated sections, and
// optional dimensional breakout rows. The sequence then receives a single
// stable calculation-order repair pass.
func GenerateLineItems(filing *xbrl.Filing, tree *xbrl.PresentationTree,
	opts LineItemOptions) []*LineItem {
	gen := &lineItemGenerator{filing: filing, tree: tree, opts: opts}

	if root := tree.Root(); root != nil {
		gen.walk(root)
	}

	return repairCalculationOrder(gen.items, filing)
}

// walk emits the node (when it should render) and recurses into children.
// Returns whether anything was emitted in this subtree, so empty abstract
// sections can be elided.
func (gen *lineItemGenerator) walk(node *xbrl.PresentationNode) bool {
	if xbrl.IsScaffoldingConcept(node.Concept) {
		// Tables and axis scaffolding never render but their children may.
		emitted := false
		for _, child := range node.Children {
			if childNode, ok := gen.tree.Node(child); ok {
				if gen.walk(childNode) {
					emitted = true
				}
			}
		}
		return emitted
	}

	if node.Abstract {
		return gen.walkAbstract(node)
	}

	return gen.walkConcept(node)
}

// walkAbstract emits a section header only when the section contains at
// least one rendered row.
func (gen *lineItemGenerator) walkAbstract(node *xbrl.PresentationNode) bool {
	header := &LineItem{
		Kind:           KindAbstractHeader,
		Concept:        node.Concept,
		Label:          gen.label(node),
		Depth:          node.Depth,
		PreferredLabel: node.PreferredLabel,
		Children:       node.Children,
	}

	mark := len(gen.items)
	gen.items = append(gen.items, header)

	emitted := false
	for _, child := range node.Children {
		if childNode, ok := gen.tree.Node(child); ok {
			if gen.walk(childNode) {
				emitted = true
			}
		}
	}

	if !emitted {
		// Empty section: remove the header and anything below it.
		gen.items = gen.items[:mark]
		return false
	}

	return true
}

func (gen *lineItemGenerator) walkConcept(node *xbrl.PresentationNode) bool {
	values, decimals, dimensional := gen.resolveFacts(node.Concept)

	item := &LineItem{
		Kind:           KindConcept,
		Concept:        node.Concept,
		Label:          gen.label(node),
		Depth:          node.Depth,
		Total:          gen.isTotal(node),
		PreferredLabel: node.PreferredLabel,
		Values:         values,
		Decimals:       decimals,
		Children:       node.Children,
	}

	emitted := false
	if item.HasValues() || len(node.Children) > 0 || len(dimensional) > 0 {
		gen.items = append(gen.items, item)
		emitted = true
	}

	for _, dim := range dimensional {
		gen.items = append(gen.items, dim)
	}

	for _, child := range node.Children {
		if childNode, ok := gen.tree.Node(child); ok {
			if gen.walk(childNode) {
				emitted = true
			}
		}
	}

	return emitted || len(dimensional) > 0
}

// isTotal uses the authoritative signals only: calculation children in the
// linkbase, or a totalLabel preferred label role.
func (gen *lineItemGenerator) isTotal(node *xbrl.PresentationNode) bool {
	if node.PreferredLabel == xbrl.TotalLabelRole {
		return true
	}
	return len(gen.filing.CalculationChildren(node.Concept)) > 0
}

func (gen *lineItemGenerator) label(node *xbrl.PresentationNode) string {
	if node.Label != "" {
		return node.Label
	}
	if node.PreferredLabel != "" {
		return gen.filing.ElementLabel(node.Concept, node.PreferredLabel)
	}
	return gen.filing.ElementLabel(node.Concept)
}

// resolveFacts gathers every fact for a concept, groups by period key, and
// arbitrates duplicates. Returns the per-period values and decimals for the
// parent row plus dimensional breakout rows when requested.
func (gen *lineItemGenerator) resolveFacts(concept string) (
	map[xbrl.PeriodKey]float64, map[xbrl.PeriodKey]int, []*LineItem) {
	grouped := make(map[xbrl.PeriodKey][]*xbrl.Fact)
	for _, fact := range gen.filing.FactsForConcept(concept) {
		if !fact.IsNumeric() {
			continue
		}
		key, ok := gen.filing.PeriodKeyForContext(fact.ContextRef)
		if !ok {
			continue
		}
		if gen.opts.PeriodFilter != nil && !gen.opts.PeriodFilter[key] {
			continue
		}
		grouped[key] = append(grouped[key], fact)
	}

	if len(grouped) == 0 {
		return nil, nil, nil
	}

	values := make(map[xbrl.PeriodKey]float64)
	decimals := make(map[xbrl.PeriodKey]int)
	dimensioned := make(map[string]*dimensionGroup)

	for key, facts := range grouped {
		if gen.opts.DisplayDimensions {
			for _, fact := range facts {
				ctx, ok := gen.filing.LookupContext(fact.ContextRef)
				if !ok {
					continue
				}
				if len(ctx.Dimensions) == 0 {
					gen.recordBest(values, decimals, key, fact)
					continue
				}
				gen.recordDimensional(dimensioned, key, fact, ctx)
			}
			continue
		}

		if best, ok := arbitrate(gen.filing, facts); ok {
			if val, err := best.Float64(); err == nil {
				values[key] = val
				decimals[key] = best.Decimals
			}
		}
	}

	if len(values) == 0 {
		values = nil
		decimals = nil
	}

	return values, decimals, gen.dimensionRows(concept, dimensioned)
}

// arbitrate picks one fact among duplicates for a period: fewest dimensions
// first, then highest precision with DecimalsInf ranking above every finite
// value. Deterministic for identical inputs.
func arbitrate(filing *xbrl.Filing, facts []*xbrl.Fact) (*xbrl.Fact, bool) {
	var best *xbrl.Fact
	bestDims := 0

	for _, fact := range facts {
		dims := 0
		if ctx, ok := filing.LookupContext(fact.ContextRef); ok {
			dims = len(ctx.Dimensions)
		}

		switch {
		case best == nil:
			best, bestDims = fact, dims
		case dims < bestDims:
			best, bestDims = fact, dims
		case dims == bestDims && fact.Decimals > best.Decimals:
			best = fact
		}
	}

	return best, best != nil
}

// dimensionGroup accumulates the per-period values for one distinct
// dimension combination.
type dimensionGroup struct {
	labels   []DimensionLabel
	values   map[xbrl.PeriodKey]float64
	decimals map[xbrl.PeriodKey]int
}

func (gen *lineItemGenerator) recordBest(values map[xbrl.PeriodKey]float64,
	decimals map[xbrl.PeriodKey]int, key xbrl.PeriodKey, fact *xbrl.Fact) {
	val, err := fact.Float64()
	if err != nil {
		return
	}
	if existing, ok := decimals[key]; !ok || fact.Decimals > existing {
		values[key] = val
		decimals[key] = fact.Decimals
	}
}

func (gen *lineItemGenerator) recordDimensional(groups map[string]*dimensionGroup,
	key xbrl.PeriodKey, fact *xbrl.Fact, ctx *xbrl.Context) {
	val, err := fact.Float64()
	if err != nil {
		return
	}

	id := dimensionKey(ctx.Dimensions)
	group, ok := groups[id]
	if !ok {
		group = &dimensionGroup{
			values:   make(map[xbrl.PeriodKey]float64),
			decimals: make(map[xbrl.PeriodKey]int),
		}
		for _, dim := range ctx.Dimensions {
			group.labels = append(group.labels, DimensionLabel{
				Axis:        dim.Axis,
				Member:      dim.Member,
				AxisLabel:   gen.filing.ElementLabel(dim.Axis),
				MemberLabel: gen.filing.ElementLabel(dim.Member),
			})
		}
		groups[id] = group
	}

	if existing, ok := group.decimals[key]; !ok || fact.Decimals > existing {
		group.values[key] = val
		group.decimals[key] = fact.Decimals
	}
}

// dimensionRows converts accumulated dimension groups into ordered child
// rows labeled by concatenated member display names.
func (gen *lineItemGenerator) dimensionRows(concept string,
	groups map[string]*dimensionGroup) []*LineItem {
	if len(groups) == 0 {
		return nil
	}

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	depth := 0
	if node, ok := gen.tree.Node(concept); ok {
		depth = node.Depth + 1
	}

	rows := make([]*LineItem, 0, len(ids))
	for _, id := range ids {
		group := groups[id]

		memberLabels := make([]string, 0, len(group.labels))
		for _, lbl := range group.labels {
			memberLabels = append(memberLabels, lbl.MemberLabel)
		}

		rows = append(rows, &LineItem{
			Kind:       KindDimension,
			Concept:    concept,
			Label:      strings.Join(memberLabels, ", "),
			Depth:      depth,
			Values:     group.values,
			Decimals:   group.decimals,
			Dimensions: group.labels,
		})
	}

	return rows
}

func dimensionKey(dims []xbrl.Dimension) string {
	parts := make([]string, 0, len(dims))
	for _, dim := range dims {
		parts = append(parts, dim.Axis+"="+dim.Member)
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}

// repairCalculationOrder fixes presentation-linkbase authoring errors where
// a calculation child appears after its summation parent: the child moves to
// immediately precede the parent. A single stable pass; all other relative
// ordering is preserved.
func repairCalculationOrder(items []*LineItem, filing *xbrl.Filing) []*LineItem {
	pos := make(map[string]int, len(items))
	for idx, item := range items {
		if item.Kind == KindConcept {
			if _, ok := pos[item.Concept]; !ok {
				pos[item.Concept] = idx
			}
		}
	}

	for i := 0; i < len(items); i++ {
		item := items[i]
		if item.Kind != KindConcept {
			continue
		}

		for _, parent := range filing.CalculationParents(item.Concept) {
			j, ok := pos[parent]
			if !ok || j >= i {
				continue
			}

			// Shift [j, i) right by one and drop the child in at j.
			moved := items[i]
			copy(items[j+1:i+1], items[j:i])
			items[j] = moved

			for k := j; k <= i; k++ {
				if items[k].Kind == KindConcept {
					pos[items[k].Concept] = k
				}
			}
			break
		}
	}

	return items
}
