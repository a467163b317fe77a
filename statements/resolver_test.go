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
package statements_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pvstatements/statements"
	"github.com/penny-vault/pvstatements/xbrl"
)

func indexFiling() *xbrl.Filing {
	trees := []*xbrl.PresentationTree{
		{
			Role:        "http://example.com/role/ConsolidatedBalanceSheets",
			Definition:  "1001 - Statement - Consolidated Balance Sheets",
			RootConcept: "us-gaap:StatementOfFinancialPositionAbstract",
			Nodes:       map[string]*xbrl.PresentationNode{},
		},
		{
			Role:        "http://example.com/role/ConsolidatedBalanceSheetsParenthetical",
			Definition:  "1002 - Statement - Consolidated Balance Sheets (Parenthetical)",
			RootConcept: "us-gaap:StatementOfFinancialPositionAbstract",
			Nodes:       map[string]*xbrl.PresentationNode{},
		},
		{
			Role:        "http://example.com/role/StatementsOfOperations",
			Definition:  "1003 - Statement - Consolidated Statements of Operations",
			RootConcept: "us-gaap:IncomeStatementAbstract",
			Nodes:       map[string]*xbrl.PresentationNode{},
		},
		{
			Role:        "http://example.com/role/SegmentInformation",
			Definition:  "2401 - Disclosure - Segment Information and Geographic Data",
			RootConcept: "exmpl:SegmentInformationAbstract",
			Nodes:       map[string]*xbrl.PresentationNode{},
		},
		{
			Role:        "http://example.com/role/RevenueByProduct",
			Definition:  "2402 - Disclosure - Revenue Disaggregated by Product",
			RootConcept: "exmpl:RevenueAbstract",
			Nodes:       map[string]*xbrl.PresentationNode{},
		},
	}

	return xbrl.NewFiling(xbrl.EntityInfo{}, nil, nil, trees, nil, nil)
}

var _ = Describe("Index", func() {
	var idx *statements.Index

	BeforeEach(func() {
		idx = statements.NewIndex(indexFiling())
	})

	Context("when classifying roles", func() {
		It("classifies from the root concept table", func() {
			descs := idx.ByType(statements.BalanceSheet)
			Expect(descs).To(HaveLen(2))
		})

		It("classifies filer-specific roots by naming convention", func() {
			descs := idx.ByType(statements.SegmentDisclosure)
			Expect(descs).To(HaveLen(1))
			Expect(descs[0].Role).To(HaveSuffix("SegmentInformation"))
		})

		It("classifies by definition keywords when the root is unknown", func() {
			descs := idx.ByType(statements.Disclosures)
			Expect(descs).To(HaveLen(1))
			Expect(descs[0].Role).To(HaveSuffix("RevenueByProduct"))
		})

		It("flags parenthetical roles", func() {
			descs := idx.ByType(statements.BalanceSheet)
			parenthetical := 0
			for _, desc := range descs {
				if desc.Parenthetical {
					parenthetical++
				}
			}
			Expect(parenthetical).To(Equal(1))
		})
	})

	Context("when resolving by statement type", func() {
		It("resolves a canonical type name", func() {
			res := idx.FindStatement("BalanceSheet", false)
			Expect(res.Descriptor).NotTo(BeNil())
			Expect(res.Type).To(Equal(statements.BalanceSheet))
			Expect(res.Descriptor.Parenthetical).To(BeFalse())
		})

		It("resolves a type alias", func() {
			res := idx.FindStatement("statement of operations", false)
			Expect(res.Descriptor).NotTo(BeNil())
			Expect(res.Type).To(Equal(statements.IncomeStatement))
		})

		It("prefers the parenthetical variant when requested", func() {
			res := idx.FindStatement("BalanceSheet", true)
			Expect(res.Descriptor).NotTo(BeNil())
			Expect(res.Descriptor.Parenthetical).To(BeTrue())
			Expect(res.DisplayType).To(Equal("BalanceSheet"))
		})

		It("suffixes the display type when no parenthetical role exists", func() {
			res := idx.FindStatement("IncomeStatement", true)
			Expect(res.Descriptor).NotTo(BeNil())
			Expect(res.Descriptor.Parenthetical).To(BeFalse())
			Expect(res.DisplayType).To(Equal("IncomeStatementParenthetical"))
		})
	})

	Context("when resolving by role", func() {
		It("matches an exact role URI", func() {
			res := idx.FindStatement("http://example.com/role/StatementsOfOperations", false)
			Expect(res.Descriptor).NotTo(BeNil())
			Expect(res.Type).To(Equal(statements.IncomeStatement))
		})

		It("matches a role short name case-insensitively", func() {
			res := idx.FindStatement("statementsofoperations", false)
			Expect(res.Descriptor).NotTo(BeNil())
			Expect(res.Type).To(Equal(statements.IncomeStatement))
		})

		It("matches normalized definition text", func() {
			res := idx.FindStatement("1003 - Statement - Consolidated Statements Of Operations", false)
			Expect(res.Descriptor).NotTo(BeNil())
			Expect(res.Type).To(Equal(statements.IncomeStatement))
		})

		It("matches a short name substring", func() {
			res := idx.FindStatement("SegmentInfo", false)
			Expect(res.Descriptor).NotTo(BeNil())
			Expect(res.Type).To(Equal(statements.SegmentDisclosure))
		})
	})

	Context("when the query matches nothing", func() {
		It("returns an empty resolution without error", func() {
			res := idx.FindStatement("completely bogus query", false)
			Expect(res.Descriptor).To(BeNil())
			Expect(res.Candidates).To(BeEmpty())
		})

		It("reports the type when the filing lacks the statement", func() {
			res := idx.FindStatement("CashFlowStatement", false)
			Expect(res.Descriptor).To(BeNil())
			Expect(res.Type).To(Equal(statements.CashFlowStatement))
		})
	})
})
