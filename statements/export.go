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
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

// FlatRow is one cell of the statement in long form, one record per
// row-and-column pair.
type FlatRow struct {
	Label       string  `csv:"label"`
	Concept     string  `csv:"concept"`
	Kind        string  `csv:"kind"`
	Depth       int     `csv:"depth"`
	Total       bool    `csv:"total"`
	PeriodKey   string  `csv:"period_key"`
	PeriodLabel string  `csv:"period_label"`
	Raw         float64 `csv:"raw"`
	Formatted   string  `csv:"formatted"`
	Comparison  string  `csv:"comparison"`
}

// FlatRows flattens the statement into one record per non-empty cell.
// Abstract headers carry no cells and are omitted.
func (stmt *RenderedStatement) FlatRows() []*FlatRow {
	flat := make([]*FlatRow, 0, len(stmt.Rows)*len(stmt.Columns))

	for _, row := range stmt.Rows {
		for i, cell := range row.Cells {
			if cell.Raw == nil {
				continue
			}

			record := &FlatRow{
				Label:       row.Label,
				Concept:     row.Concept,
				Kind:        string(row.Kind),
				Depth:       row.Depth,
				Total:       row.Total,
				PeriodKey:   string(stmt.Columns[i].Key),
				PeriodLabel: stmt.Columns[i].Label,
				Raw:         *cell.Raw,
				Formatted:   cell.Formatted,
			}
			if cell.Comparison != nil {
				record.Comparison = cell.Comparison.Direction
			}

			flat = append(flat, record)
		}
	}

	return flat
}

// WriteCSV writes the flat form as CSV.
func (stmt *RenderedStatement) WriteCSV(w io.Writer) error {
	rows := stmt.FlatRows()
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("could not write statement csv: %w", err)
	}
	return nil
}

// Markdown renders the statement as a markdown document with a header table,
// using the precomputed cell strings.
func (stmt *RenderedStatement) Markdown() string {
	var doc strings.Builder

	doc.WriteString(fmt.Sprintf("# %s\n\n", stmt.Title))

	if stmt.InsufficientData {
		doc.WriteString("*Not available: insufficient data for this statement.*\n")
		return doc.String()
	}

	if stmt.FiscalIndicator != "" {
		doc.WriteString(fmt.Sprintf("**%s**", stmt.FiscalIndicator))
		if stmt.UnitsNote != "" {
			doc.WriteString(fmt.Sprintf(" (%s)", stmt.UnitsNote))
		}
		doc.WriteString("\n\n")
	} else if stmt.UnitsNote != "" {
		doc.WriteString(fmt.Sprintf("*%s*\n\n", stmt.UnitsNote))
	}

	doc.WriteString("| Line Item |")
	for _, col := range stmt.Columns {
		doc.WriteString(fmt.Sprintf(" %s |", col.Label))
	}
	doc.WriteString("\n|---|")
	for range stmt.Columns {
		doc.WriteString("---:|")
	}
	doc.WriteString("\n")

	for _, row := range stmt.Rows {
		label := strings.Repeat("&nbsp;&nbsp;", row.Depth) + row.Label
		switch {
		case row.Kind == KindAbstractHeader:
			label = fmt.Sprintf("**%s**", strings.Repeat("&nbsp;&nbsp;", row.Depth)+row.Label)
		case row.Total:
			label = fmt.Sprintf("%s**%s**", strings.Repeat("&nbsp;&nbsp;", row.Depth), row.Label)
		}

		doc.WriteString(fmt.Sprintf("| %s |", label))
		for _, cell := range row.Cells {
			value := cell.Formatted
			if cell.Comparison != nil {
				switch cell.Comparison.Direction {
				case CompareIncrease:
					value = fmt.Sprintf("%s ▲", value)
				case CompareDecrease:
					value = fmt.Sprintf("%s ▼", value)
				}
			}
			doc.WriteString(fmt.Sprintf(" %s |", value))
		}
		doc.WriteString("\n")
	}

	return doc.String()
}
