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

// Service composes the resolver, period selector, line item generator, and
// renderer behind one convenience call. A Service is immutable after
// construction and safe for concurrent use across goroutines.
type Service struct {
	filing   *xbrl.Filing
	index    *Index
	renderer *Renderer
}

// NewService builds the statement service for a filing. The standardizer may
// be nil when label standardization is not wanted.
func NewService(filing *xbrl.Filing, standardizer Standardizer) *Service {
	return &Service{
		filing:   filing,
		index:    NewIndex(filing),
		renderer: &Renderer{Standardizer: standardizer},
	}
}

// Filing returns the underlying fact store.
func (svc *Service) Filing() *xbrl.Filing {
	return svc.filing
}

// Index returns the statement lookup table.
func (svc *Service) Index() *Index {
	return svc.index
}

// NamedViews lists the available period selection presets.
func (svc *Service) NamedViews() []NamedView {
	return NamedViews()
}

// RenderRequest describes one statement render.
type RenderRequest struct {
	// Statement is the query: a type name, role URI, short name, definition,
	// or name fragment.
	Statement string

	// Parenthetical prefers the parenthetical variant of the statement.
	Parenthetical bool

	// NamedView selects a period preset; empty uses the default selection.
	NamedView string

	// PeriodFilter, when non-nil, restricts candidate periods.
	PeriodFilter func(xbrl.Period) bool

	// MaxPeriods caps the displayed columns; 0 uses the default.
	MaxPeriods int

	Standardize   bool
	ShowDateRange bool
	Compare       bool
}

// RenderStatement resolves, selects periods for, and renders one statement.
// Returns ErrStatementNotFound with a nil statement when the query matches
// nothing. When the statement resolves but no period passes the quality
// thresholds, the returned statement carries InsufficientData and the error
// is ErrNoData, so callers can still display a "not available" placeholder.
func (svc *Service) RenderStatement(req RenderRequest) (*RenderedStatement, error) {
	res := svc.index.FindStatement(req.Statement, req.Parenthetical)
	if res.Descriptor == nil {
		log.Debug().Str("Statement", req.Statement).Msg("statement not found in filing")
		return nil, ErrStatementNotFound
	}

	desc := res.Descriptor
	entity := svc.filing.Entity()
	title := svc.statementTitle(desc, res)

	selected := SelectPeriods(desc.Type, svc.filing.AllPeriods(), entity, PeriodOptions{
		Filter:     req.PeriodFilter,
		NamedView:  req.NamedView,
		MaxPeriods: req.MaxPeriods,
	})
	selected = ApplyQualityGate(svc.filing, desc.Type, selected)

	if len(selected) == 0 {
		log.Debug().Str("Role", desc.Role).Msg("no periods passed selection for statement")
		return svc.insufficientData(title, desc.Type, res.DisplayType), ErrNoData
	}

	tree, ok := svc.filing.TreeForRole(desc.Role)
	if !ok {
		// The index was built from the filing's trees, so a missing role
		// means the collaborator returned impossible state.
		log.Error().Str("Role", desc.Role).Msg("resolved role has no presentation tree")
		return nil, ErrStatementNotFound
	}

	periodFilter := make(map[xbrl.PeriodKey]bool, len(selected))
	for _, sp := range selected {
		periodFilter[sp.Key] = true
	}

	items := GenerateLineItems(svc.filing, tree, LineItemOptions{
		PeriodFilter:      periodFilter,
		DisplayDimensions: WantsDimensionDisplay(desc.Type, desc.Definition),
	})

	stmt := svc.renderer.Render(items, selected, title, desc.Type, entity, RenderOptions{
		Standardize:   req.Standardize,
		ShowDateRange: req.ShowDateRange,
		Compare:       req.Compare,
	})
	stmt.DisplayType = res.DisplayType

	if stmt.InsufficientData {
		return stmt, ErrNoData
	}

	return stmt, nil
}

func (svc *Service) insufficientData(title string, stype StatementType, displayType string) *RenderedStatement {
	return &RenderedStatement{
		Title:            title,
		Type:             stype,
		DisplayType:      displayType,
		InsufficientData: true,
	}
}

// statementTitle builds the display title from the registrant name and the
// cleaned role definition.
func (svc *Service) statementTitle(desc *StatementDescriptor, res *Resolution) string {
	name := cleanDefinition(desc.Definition)
	if name == "" {
		name = res.DisplayType
	}

	registrant := svc.filing.Entity().RegistrantName
	if registrant == "" {
		return name
	}

	return registrant + " " + name
}

// cleanDefinition strips the numbering and section prefixes filers put in
// role definitions: "1001 - Statement - Consolidated Balance Sheets" becomes
// "Consolidated Balance Sheets".
func cleanDefinition(definition string) string {
	parts := strings.Split(definition, " - ")
	cleaned := strings.TrimSpace(parts[len(parts)-1])
	return cleaned
}
