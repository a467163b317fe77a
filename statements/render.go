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
	"fmt"
	"time"

	"github.com/penny-vault/pvstatements/xbrl"
)

// Column-density floor: periods whose non-empty cell fraction falls below
// this are dropped even after surviving period selection.
const densityThreshold = 0.3

// Comparison classification threshold, as a fraction.
const comparisonThreshold = 0.01

// Comparison direction values.
const (
	CompareIncrease  = "increase"
	CompareDecrease  = "decrease"
	CompareUnchanged = "unchanged"
)

// PeriodColumn is one display column of a rendered statement.
type PeriodColumn struct {
	Key        xbrl.PeriodKey `json:"key"`
	Label      string         `json:"label"`
	EndDate    time.Time      `json:"end_date"`
	StartDate  time.Time      `json:"start_date,omitempty"`
	Duration   bool           `json:"duration,omitempty"`
	QuarterTag string         `json:"quarter_tag,omitempty"`
}

// Comparison annotates a cell with its period-over-period change.
type Comparison struct {
	Direction string  `json:"direction"`
	Percent   float64 `json:"percent"`
}

// Cell is one value of a rendered row. Formatted is precomputed at render
// time so the statement serializes without any live formatting state.
type Cell struct {
	Raw        *float64    `json:"raw,omitempty"`
	Decimals   int         `json:"decimals,omitempty"`
	Formatted  string      `json:"formatted"`
	Comparison *Comparison `json:"comparison,omitempty"`
}

// Row is one rendered line of a statement, with one Cell per column.
type Row struct {
	Kind    LineItemKind `json:"kind"`
	Concept string       `json:"concept,omitempty"`
	Label   string       `json:"label"`
	Depth   int          `json:"depth"`
	Total   bool         `json:"total,omitempty"`
	Cells   []Cell       `json:"cells"`
}

// RenderedStatement is the presentation-agnostic output of a render call:
// plain data, fully serializable, safe to hand across threads.
type RenderedStatement struct {
	Title            string         `json:"title"`
	Type             StatementType  `json:"type"`
	DisplayType      string         `json:"display_type,omitempty"`
	Columns          []PeriodColumn `json:"columns"`
	Rows             []Row          `json:"rows"`
	DominantScale    int            `json:"dominant_scale"`
	UnitsNote        string         `json:"units_note,omitempty"`
	FiscalIndicator  string         `json:"fiscal_indicator,omitempty"`
	InsufficientData bool           `json:"insufficient_data,omitempty"`
}

// RenderOptions adjusts rendering.
type RenderOptions struct {
	// Standardize rewrites labels through the renderer's Standardizer.
	Standardize bool

	// ShowDateRange renders duration column labels as "start - end" instead
	// of the end date alone.
	ShowDateRange bool

	// Compare adds period-over-period comparison annotations. Only honored
	// for income and cash flow statements.
	Compare bool
}

// Renderer turns line items and selected periods into a RenderedStatement.
// A Renderer is immutable and safe for concurrent use; the optional
// Standardizer must be concurrency-safe itself.
type Renderer struct {
	Standardizer Standardizer
}

// Render produces the final statement object: dominant scale inference,
// density filtering, label standardization, precomputed cell formatting, and
// comparison annotation.
func (r *Renderer) Render(items []*LineItem, selected []SelectedPeriod, title string,
	stype StatementType, entity xbrl.EntityInfo, opts RenderOptions) *RenderedStatement {
	stmt := &RenderedStatement{
		Title:       title,
		Type:        stype,
		DisplayType: string(stype),
	}

	columns := densityFilter(items, selected)
	if len(columns) == 0 {
		stmt.InsufficientData = true
		return stmt
	}

	stmt.Columns = buildColumns(columns, stype, opts.ShowDateRange)
	stmt.DominantScale = dominantScale(items, columns)
	stmt.UnitsNote = unitsNote(stmt.DominantScale)
	stmt.FiscalIndicator = fiscalIndicator(columns, entity)

	compare := opts.Compare && stype.SupportsComparison()

	for _, item := range items {
		label := item.Label
		if opts.Standardize && r.Standardizer != nil && item.Kind != KindDimension {
			if std, ok := r.Standardizer.StandardizeLabel(item.Concept, stype); ok {
				label = std
			}
		}

		row := Row{
			Kind:    item.Kind,
			Concept: item.Concept,
			Label:   label,
			Depth:   item.Depth,
			Total:   item.Total,
			Cells:   make([]Cell, len(columns)),
		}

		for i, sp := range columns {
			if val, ok := item.Values[sp.Key]; ok {
				raw := val
				row.Cells[i] = Cell{
					Raw:       &raw,
					Decimals:  item.Decimals[sp.Key],
					Formatted: formatCell(val, item.Decimals[sp.Key], item.Concept, stmt.DominantScale),
				}
			}
		}

		if compare && item.Kind != KindAbstractHeader && !IsComparisonExcluded(item.Concept) {
			annotateComparisons(row.Cells)
		}

		stmt.Rows = append(stmt.Rows, row)
	}

	return stmt
}

// densityFilter drops columns whose non-empty fraction among value-bearing
// rows falls below the density floor.
func densityFilter(items []*LineItem, selected []SelectedPeriod) []SelectedPeriod {
	countable := 0
	filled := make(map[xbrl.PeriodKey]int)

	for _, item := range items {
		if item.Kind == KindAbstractHeader {
			continue
		}
		countable++
		for key := range item.Values {
			filled[key]++
		}
	}

	if countable == 0 {
		return nil
	}

	kept := make([]SelectedPeriod, 0, len(selected))
	for _, sp := range selected {
		density := float64(filled[sp.Key]) / float64(countable)
		if density >= densityThreshold {
			kept = append(kept, sp)
		}
	}

	return kept
}

// dominantScale returns the most frequent decimals value among non-exempt
// rows across the displayed columns. Ties resolve toward the coarser scale
// so the mode is deterministic.
func dominantScale(items []*LineItem, columns []SelectedPeriod) int {
	counts := make(map[int]int)
	for _, item := range items {
		if item.Kind == KindAbstractHeader || IsScaleExempt(item.Concept) ||
			IsPerShareConcept(item.Concept) {
			continue
		}
		for _, sp := range columns {
			if _, ok := item.Values[sp.Key]; ok {
				counts[item.Decimals[sp.Key]]++
			}
		}
	}

	scale := 0
	best := 0
	for decimals, count := range counts {
		if count > best || (count == best && decimals < scale) {
			scale = decimals
			best = count
		}
	}

	return scale
}

func unitsNote(scale int) string {
	noun := scaleNoun(scale)
	if noun == "" {
		return ""
	}
	return fmt.Sprintf("In %s, except per share data", noun)
}

// buildColumns converts selected periods into display columns. Quarter tags
// attach only on duration columns of statements that support comparison
// views (income and cash flow).
func buildColumns(selected []SelectedPeriod, stype StatementType, showDateRange bool) []PeriodColumn {
	columns := make([]PeriodColumn, 0, len(selected))
	for _, sp := range selected {
		col := PeriodColumn{
			Key:      sp.Key,
			Label:    sp.Label,
			EndDate:  sp.Period.End(),
			Duration: sp.Period.IsDuration(),
		}

		if col.Duration {
			col.StartDate = sp.Period.StartDate
			if showDateRange {
				col.Label = fmt.Sprintf("%s - %s",
					sp.Period.StartDate.Format("Jan 2, 2006"),
					sp.Period.EndDate.Format("Jan 2, 2006"))
			}
			if stype.SupportsComparison() && sp.QuarterTag != "" {
				col.QuarterTag = sp.QuarterTag
				col.Label = fmt.Sprintf("%s (%s)", col.Label, sp.QuarterTag)
			}
		}

		columns = append(columns, col)
	}

	return columns
}

// fiscalIndicator derives the statement-level period description from the
// first column: duration length when unambiguous, fiscal alignment for
// instants.
func fiscalIndicator(columns []SelectedPeriod, entity xbrl.EntityInfo) string {
	if len(columns) == 0 {
		return ""
	}

	p := columns[0].Period
	if p.IsDuration() {
		switch interimBucket(p.Days()) {
		case "Q":
			return "Three Months Ended"
		case "6M":
			return "Six Months Ended"
		case "9M":
			return "Nine Months Ended"
		case "Y":
			return "Year Ended"
		}
		if entity.IsAnnualReport() {
			return "Year Ended"
		}
		return "Period Ended"
	}

	switch {
	case FiscalAlignmentScore(p.End(), entity) >= 75:
		return "Fiscal Year Ended"
	case entity.FiscalPeriod != "" && entity.FiscalPeriod != "FY":
		return "Quarter Ended"
	}
	return "As of"
}

// annotateComparisons attaches a comparison to each cell against its
// chronologically previous neighbor. Columns are ordered newest first, so
// each cell compares against the cell to its right.
func annotateComparisons(cells []Cell) {
	for i := 0; i < len(cells)-1; i++ {
		newer, older := cells[i], cells[i+1]
		if newer.Raw == nil || older.Raw == nil {
			continue
		}
		cells[i].Comparison = compareValues(*newer.Raw, *older.Raw)
	}
}

// compareValues classifies a period-over-period change against the 1
// percent threshold. A zero baseline classifies by the sign of the new
// value.
func compareValues(newer, older float64) *Comparison {
	if older == 0 {
		switch {
		case newer > 0:
			return &Comparison{Direction: CompareIncrease, Percent: 0}
		case newer < 0:
			return &Comparison{Direction: CompareDecrease, Percent: 0}
		}
		return &Comparison{Direction: CompareUnchanged, Percent: 0}
	}

	pct := (newer - older) / older
	if older < 0 {
		pct = -pct
	}

	switch {
	case pct > comparisonThreshold:
		return &Comparison{Direction: CompareIncrease, Percent: pct * 100}
	case pct < -comparisonThreshold:
		return &Comparison{Direction: CompareDecrease, Percent: pct * 100}
	}
	return &Comparison{Direction: CompareUnchanged, Percent: pct * 100}
}
