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

import "strings"

// Preferred label roles that matter to rendering. TotalLabelRole is the
// authoritative "this row is a total" presentation signal.
const (
	TotalLabelRole   = "http://www.xbrl.org/2003/role/totalLabel"
	NegatedLabelRole = "http://www.xbrl.org/2009/role/negatedLabel"
)

// PresentationNode is one concept's position within a statement's
// presentation hierarchy. Children are ordered as authored in the linkbase;
// Parent is a back-reference, never owned.
type PresentationNode struct {
	Concept        string   `json:"concept"`
	Label          string   `json:"label,omitempty"`
	Depth          int      `json:"depth"`
	Abstract       bool     `json:"abstract,omitempty"`
	PreferredLabel string   `json:"preferred_label,omitempty"`
	Children       []string `json:"children,omitempty"`
	Parent         string   `json:"parent,omitempty"`
}

// PresentationTree is the full hierarchy for one presentation role: one tree
// equals one candidate statement.
type PresentationTree struct {
	// Role is the presentation role URI, e.g.
	// "http://example.com/role/ConsolidatedBalanceSheets".
	Role string `json:"role"`

	// Definition is the role's human-readable definition text from the
	// linkbase, e.g. "1001 - Statement - Consolidated Balance Sheets".
	Definition string `json:"definition,omitempty"`

	// RootConcept names the tree's root node.
	RootConcept string `json:"root_concept"`

	// Nodes maps concept id to node for every member of the tree.
	Nodes map[string]*PresentationNode `json:"nodes"`
}

// Root returns the tree's root node, or nil for an empty tree.
func (tree *PresentationTree) Root() *PresentationNode {
	return tree.Nodes[tree.RootConcept]
}

// Node resolves a concept within the tree.
func (tree *PresentationTree) Node(concept string) (*PresentationNode, bool) {
	node, ok := tree.Nodes[concept]
	return node, ok
}

// ShortName returns the last path segment of the role URI, the name filers
// commonly refer to a statement by.
func (tree *PresentationTree) ShortName() string {
	role := strings.TrimRight(tree.Role, "/")
	if idx := strings.LastIndex(role, "/"); idx >= 0 {
		return role[idx+1:]
	}
	return role
}

// CalculationEdge is one parent -> child summation arc from the calculation
// linkbase. Weight is +1 or -1 for almost all arcs.
type CalculationEdge struct {
	Parent string  `json:"parent"`
	Child  string  `json:"child"`
	Weight float64 `json:"weight"`
}

// IsScaffoldingConcept reports whether the concept is pure XBRL structure
// (axes, members, tables, line-item wrappers) that never renders as a row.
func IsScaffoldingConcept(concept string) bool {
	name := concept
	if idx := strings.LastIndex(name, ":"); idx >= 0 {
		name = name[idx+1:]
	}

	for _, suffix := range []string{"Axis", "Domain", "Member", "Table", "LineItems"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}

	return false
}
