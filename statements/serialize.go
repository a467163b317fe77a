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

	"github.com/goccy/go-json"
	"github.com/penny-vault/pvstatements/xbrl"
)

const serializeDateLayout = "2006-01-02"

// ToSerializable converts the statement into nested maps, slices, and
// primitives suitable for JSON or any wire format. Formatted cell strings
// are carried explicitly; FromSerializable reproduces the statement without
// re-running any formatting.
func (stmt *RenderedStatement) ToSerializable() map[string]any {
	columns := make([]any, 0, len(stmt.Columns))
	for _, col := range stmt.Columns {
		serial := map[string]any{
			"key":      string(col.Key),
			"label":    col.Label,
			"end_date": col.EndDate.Format(serializeDateLayout),
			"duration": col.Duration,
		}
		if !col.StartDate.IsZero() {
			serial["start_date"] = col.StartDate.Format(serializeDateLayout)
		}
		if col.QuarterTag != "" {
			serial["quarter_tag"] = col.QuarterTag
		}
		columns = append(columns, serial)
	}

	rows := make([]any, 0, len(stmt.Rows))
	for _, row := range stmt.Rows {
		cells := make([]any, 0, len(row.Cells))
		for _, cell := range row.Cells {
			serial := map[string]any{
				"formatted": cell.Formatted,
			}
			if cell.Raw != nil {
				serial["raw"] = *cell.Raw
				serial["decimals"] = cell.Decimals
			}
			if cell.Comparison != nil {
				serial["comparison"] = map[string]any{
					"direction": cell.Comparison.Direction,
					"percent":   cell.Comparison.Percent,
				}
			}
			cells = append(cells, serial)
		}

		rows = append(rows, map[string]any{
			"kind":    string(row.Kind),
			"concept": row.Concept,
			"label":   row.Label,
			"depth":   row.Depth,
			"total":   row.Total,
			"cells":   cells,
		})
	}

	return map[string]any{
		"title":             stmt.Title,
		"type":              string(stmt.Type),
		"display_type":      stmt.DisplayType,
		"columns":           columns,
		"rows":              rows,
		"dominant_scale":    stmt.DominantScale,
		"units_note":        stmt.UnitsNote,
		"fiscal_indicator":  stmt.FiscalIndicator,
		"insufficient_data": stmt.InsufficientData,
	}
}

// FromSerializable reconstructs a RenderedStatement from its serializable
// form. Every field round-trips, including precomputed formatted strings.
func FromSerializable(data map[string]any) (*RenderedStatement, error) {
	stmt := &RenderedStatement{
		Title:            asString(data["title"]),
		Type:             StatementType(asString(data["type"])),
		DisplayType:      asString(data["display_type"]),
		DominantScale:    asInt(data["dominant_scale"]),
		UnitsNote:        asString(data["units_note"]),
		FiscalIndicator:  asString(data["fiscal_indicator"]),
		InsufficientData: asBool(data["insufficient_data"]),
	}

	columns, ok := data["columns"].([]any)
	if !ok && data["columns"] != nil {
		return nil, fmt.Errorf("serialized statement has malformed columns")
	}
	for _, raw := range columns {
		serial, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("serialized statement has malformed column entry")
		}

		col := PeriodColumn{
			Key:        xbrl.PeriodKey(asString(serial["key"])),
			Label:      asString(serial["label"]),
			Duration:   asBool(serial["duration"]),
			QuarterTag: asString(serial["quarter_tag"]),
		}
		col.EndDate, _ = time.Parse(serializeDateLayout, asString(serial["end_date"]))
		if start := asString(serial["start_date"]); start != "" {
			col.StartDate, _ = time.Parse(serializeDateLayout, start)
		}

		stmt.Columns = append(stmt.Columns, col)
	}

	rows, ok := data["rows"].([]any)
	if !ok && data["rows"] != nil {
		return nil, fmt.Errorf("serialized statement has malformed rows")
	}
	for _, raw := range rows {
		serial, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("serialized statement has malformed row entry")
		}

		row := Row{
			Kind:    LineItemKind(asString(serial["kind"])),
			Concept: asString(serial["concept"]),
			Label:   asString(serial["label"]),
			Depth:   asInt(serial["depth"]),
			Total:   asBool(serial["total"]),
		}

		cells, _ := serial["cells"].([]any)
		for _, rawCell := range cells {
			cellMap, ok := rawCell.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("serialized statement has malformed cell entry")
			}

			cell := Cell{Formatted: asString(cellMap["formatted"])}
			if rawVal, ok := cellMap["raw"]; ok {
				val := asFloat(rawVal)
				cell.Raw = &val
				cell.Decimals = asInt(cellMap["decimals"])
			}
			if cmpRaw, ok := cellMap["comparison"].(map[string]any); ok {
				cell.Comparison = &Comparison{
					Direction: asString(cmpRaw["direction"]),
					Percent:   asFloat(cmpRaw["percent"]),
				}
			}

			row.Cells = append(row.Cells, cell)
		}

		stmt.Rows = append(stmt.Rows, row)
	}

	return stmt, nil
}

// JSON encodes the serializable form.
func (stmt *RenderedStatement) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(stmt.ToSerializable(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("could not encode rendered statement: %w", err)
	}
	return data, nil
}

// FromJSON decodes a statement previously written by JSON.
func FromJSON(data []byte) (*RenderedStatement, error) {
	var serial map[string]any
	if err := json.Unmarshal(data, &serial); err != nil {
		return nil, fmt.Errorf("could not decode rendered statement: %w", err)
	}
	return FromSerializable(serial)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case json.Number:
		f, _ := val.Float64()
		return f
	}
	return 0
}

func asInt(v any) int {
	return int(asFloat(v))
}
