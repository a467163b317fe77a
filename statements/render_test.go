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
	"bytes"
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pvstatements/statements"
	"github.com/penny-vault/pvstatements/xbrl"
)

func monetaryItem(concept, label string, values map[xbrl.PeriodKey]float64,
	decimals int) *statements.LineItem {
	item := &statements.LineItem{
		Kind:     statements.KindConcept,
		Concept:  concept,
		Label:    label,
		Depth:    1,
		Values:   values,
		Decimals: make(map[xbrl.PeriodKey]int, len(values)),
	}
	for key := range values {
		item.Decimals[key] = decimals
	}
	return item
}

var _ = Describe("Renderer", func() {
	var (
		renderer *statements.Renderer
		entity   xbrl.EntityInfo
		current  statements.SelectedPeriod
		prior    statements.SelectedPeriod
	)

	BeforeEach(func() {
		renderer = &statements.Renderer{}
		entity = xbrl.EntityInfo{
			FiscalYearEndMonth: 9,
			FiscalYearEndDay:   30,
			FiscalPeriod:       "FY",
			DocumentType:       "10-K",
		}
		current = statements.SelectedPeriod{
			Key:    "instant_2023-09-30",
			Period: xbrl.InstantPeriod(date(2023, 9, 30)),
			Label:  "Sep 30, 2023",
		}
		prior = statements.SelectedPeriod{
			Key:    "instant_2022-09-24",
			Period: xbrl.InstantPeriod(date(2022, 9, 24)),
			Label:  "Sep 24, 2022",
		}
	})

	Context("when inferring the dominant scale", func() {
		It("uses the most frequent decimals among monetary rows", func() {
			items := []*statements.LineItem{
				monetaryItem("us-gaap:Assets", "Total assets",
					map[xbrl.PeriodKey]float64{current.Key: 352755000000}, -6),
				monetaryItem("us-gaap:Liabilities", "Total liabilities",
					map[xbrl.PeriodKey]float64{current.Key: 290437000000}, -6),
				monetaryItem("us-gaap:StockholdersEquity", "Total equity",
					map[xbrl.PeriodKey]float64{current.Key: 62146000000}, -3),
			}

			stmt := renderer.Render(items, []statements.SelectedPeriod{current},
				"Balance Sheet", statements.BalanceSheet, entity, statements.RenderOptions{})
			Expect(stmt.DominantScale).To(Equal(-6))
			Expect(stmt.UnitsNote).To(Equal("In millions, except per share data"))
		})

		It("renders share counts with their own decimals, not the dominant scale", func() {
			items := []*statements.LineItem{
				monetaryItem("us-gaap:Assets", "Total assets",
					map[xbrl.PeriodKey]float64{current.Key: 352755000000}, -6),
				monetaryItem("us-gaap:Liabilities", "Total liabilities",
					map[xbrl.PeriodKey]float64{current.Key: 290437000000}, -6),
				monetaryItem("us-gaap:CommonStockSharesOutstanding", "Shares outstanding",
					map[xbrl.PeriodKey]float64{current.Key: 5123456000}, -3),
			}

			stmt := renderer.Render(items, []statements.SelectedPeriod{current},
				"Balance Sheet", statements.BalanceSheet, entity, statements.RenderOptions{})
			Expect(stmt.DominantScale).To(Equal(-6))
			Expect(stmt.Rows[2].Cells[0].Formatted).To(Equal("5,123,456"))
		})

		It("renders per-share values unscaled with two decimal places", func() {
			items := []*statements.LineItem{
				monetaryItem("us-gaap:NetIncomeLoss", "Net income",
					map[xbrl.PeriodKey]float64{current.Key: 96995000000}, -6),
				monetaryItem("us-gaap:EarningsPerShareBasic", "Basic EPS",
					map[xbrl.PeriodKey]float64{current.Key: 6.16}, 2),
			}

			stmt := renderer.Render(items, []statements.SelectedPeriod{current},
				"Income Statement", statements.IncomeStatement, entity, statements.RenderOptions{})
			Expect(stmt.Rows[1].Cells[0].Formatted).To(Equal("6.16"))
		})

		It("formats monetary values with thousands separators at the dominant scale", func() {
			items := []*statements.LineItem{
				monetaryItem("us-gaap:Assets", "Total assets",
					map[xbrl.PeriodKey]float64{current.Key: 352755000000}, -6),
			}

			stmt := renderer.Render(items, []statements.SelectedPeriod{current},
				"Balance Sheet", statements.BalanceSheet, entity, statements.RenderOptions{})
			Expect(stmt.Rows[0].Cells[0].Formatted).To(Equal("352,755"))
		})
	})

	Context("when a column is nearly empty", func() {
		It("drops columns below the density floor", func() {
			items := make([]*statements.LineItem, 0, 40)
			for i := 0; i < 40; i++ {
				concept := fmt.Sprintf("exmpl:Item%d", i)
				values := map[xbrl.PeriodKey]float64{current.Key: float64(100 + i)}
				if i < 2 {
					// only 2 of 40 rows carry the prior period
					values[prior.Key] = float64(90 + i)
				}
				items = append(items, monetaryItem(concept, fmt.Sprintf("Item %d", i), values, -6))
			}

			stmt := renderer.Render(items, []statements.SelectedPeriod{current, prior},
				"Balance Sheet", statements.BalanceSheet, entity, statements.RenderOptions{})
			Expect(stmt.Columns).To(HaveLen(1))
			Expect(stmt.Columns[0].Key).To(Equal(xbrl.PeriodKey("instant_2023-09-30")))
		})

		It("marks the statement insufficient when every column is dropped", func() {
			items := []*statements.LineItem{
				monetaryItem("us-gaap:Assets", "Total assets", nil, -6),
				monetaryItem("us-gaap:Liabilities", "Total liabilities", nil, -6),
				monetaryItem("us-gaap:StockholdersEquity", "Total equity", nil, -6),
				monetaryItem("us-gaap:AssetsCurrent", "Current assets", nil, -6),
			}

			stmt := renderer.Render(items, []statements.SelectedPeriod{current},
				"Balance Sheet", statements.BalanceSheet, entity, statements.RenderOptions{})
			Expect(stmt.InsufficientData).To(BeTrue())
			Expect(stmt.Rows).To(BeEmpty())
		})
	})

	Context("when comparison mode is on", func() {
		var (
			q3 statements.SelectedPeriod
			q2 statements.SelectedPeriod
		)

		BeforeEach(func() {
			q3 = statements.SelectedPeriod{
				Key:    "duration_2023-04-01_2023-06-30",
				Period: xbrl.DurationPeriod(date(2023, 4, 1), date(2023, 6, 30)),
				Label:  "Jun 30, 2023",
			}
			q2 = statements.SelectedPeriod{
				Key:    "duration_2023-01-01_2023-03-31",
				Period: xbrl.DurationPeriod(date(2023, 1, 1), date(2023, 3, 31)),
				Label:  "Mar 31, 2023",
			}
		})

		It("classifies changes against the one percent threshold", func() {
			items := []*statements.LineItem{
				monetaryItem("us-gaap:Revenues", "Revenue",
					map[xbrl.PeriodKey]float64{q3.Key: 110, q2.Key: 100}, -6),
				monetaryItem("us-gaap:CostOfRevenue", "Cost of revenue",
					map[xbrl.PeriodKey]float64{q3.Key: 100.5, q2.Key: 100}, -6),
				monetaryItem("us-gaap:OperatingIncomeLoss", "Operating income",
					map[xbrl.PeriodKey]float64{q3.Key: 80, q2.Key: 100}, -6),
			}

			stmt := renderer.Render(items, []statements.SelectedPeriod{q3, q2},
				"Income Statement", statements.IncomeStatement, entity,
				statements.RenderOptions{Compare: true})

			Expect(stmt.Rows[0].Cells[0].Comparison.Direction).To(Equal(statements.CompareIncrease))
			Expect(stmt.Rows[1].Cells[0].Comparison.Direction).To(Equal(statements.CompareUnchanged))
			Expect(stmt.Rows[2].Cells[0].Comparison.Direction).To(Equal(statements.CompareDecrease))
		})

		It("classifies zero baselines by the sign of the new value", func() {
			items := []*statements.LineItem{
				monetaryItem("us-gaap:Revenues", "Revenue",
					map[xbrl.PeriodKey]float64{q3.Key: 50, q2.Key: 0}, -6),
				monetaryItem("us-gaap:CostOfRevenue", "Cost of revenue",
					map[xbrl.PeriodKey]float64{q3.Key: 0, q2.Key: 0}, -6),
			}

			stmt := renderer.Render(items, []statements.SelectedPeriod{q3, q2},
				"Income Statement", statements.IncomeStatement, entity,
				statements.RenderOptions{Compare: true})

			Expect(stmt.Rows[0].Cells[0].Comparison.Direction).To(Equal(statements.CompareIncrease))
			Expect(stmt.Rows[1].Cells[0].Comparison.Direction).To(Equal(statements.CompareUnchanged))
		})

		It("never annotates excluded concepts", func() {
			items := []*statements.LineItem{
				monetaryItem("us-gaap:CommonStockSharesOutstanding", "Shares",
					map[xbrl.PeriodKey]float64{q3.Key: 5000, q2.Key: 4000}, 0),
			}

			stmt := renderer.Render(items, []statements.SelectedPeriod{q3, q2},
				"Income Statement", statements.IncomeStatement, entity,
				statements.RenderOptions{Compare: true})
			Expect(stmt.Rows[0].Cells[0].Comparison).To(BeNil())
		})

		It("ignores comparison mode on balance sheets", func() {
			items := []*statements.LineItem{
				monetaryItem("us-gaap:Assets", "Total assets",
					map[xbrl.PeriodKey]float64{current.Key: 110, prior.Key: 100}, -6),
			}

			stmt := renderer.Render(items, []statements.SelectedPeriod{current, prior},
				"Balance Sheet", statements.BalanceSheet, entity,
				statements.RenderOptions{Compare: true})
			Expect(stmt.Rows[0].Cells[0].Comparison).To(BeNil())
		})
	})

	Context("when labeling columns", func() {
		It("appends quarter tags on income statement duration columns", func() {
			q := statements.SelectedPeriod{
				Key:        "duration_2023-04-01_2023-06-30",
				Period:     xbrl.DurationPeriod(date(2023, 4, 1), date(2023, 6, 30)),
				Label:      "Jun 30, 2023",
				QuarterTag: "Q2",
			}
			items := []*statements.LineItem{
				monetaryItem("us-gaap:Revenues", "Revenue",
					map[xbrl.PeriodKey]float64{q.Key: 100}, -6),
			}

			stmt := renderer.Render(items, []statements.SelectedPeriod{q},
				"Income Statement", statements.IncomeStatement, entity, statements.RenderOptions{})
			Expect(stmt.Columns[0].QuarterTag).To(Equal("Q2"))
			Expect(stmt.Columns[0].Label).To(ContainSubstring("(Q2)"))
		})

		It("renders full date ranges when requested", func() {
			q := statements.SelectedPeriod{
				Key:    "duration_2023-04-01_2023-06-30",
				Period: xbrl.DurationPeriod(date(2023, 4, 1), date(2023, 6, 30)),
				Label:  "Jun 30, 2023",
			}
			items := []*statements.LineItem{
				monetaryItem("us-gaap:Revenues", "Revenue",
					map[xbrl.PeriodKey]float64{q.Key: 100}, -6),
			}

			stmt := renderer.Render(items, []statements.SelectedPeriod{q},
				"Income Statement", statements.IncomeStatement, entity,
				statements.RenderOptions{ShowDateRange: true})
			Expect(stmt.Columns[0].Label).To(ContainSubstring("Apr 1, 2023 - Jun 30, 2023"))
		})

		It("derives the fiscal indicator from the duration length", func() {
			q := statements.SelectedPeriod{
				Key:    "duration_2023-04-01_2023-06-30",
				Period: xbrl.DurationPeriod(date(2023, 4, 1), date(2023, 6, 30)),
				Label:  "Jun 30, 2023",
			}
			items := []*statements.LineItem{
				monetaryItem("us-gaap:Revenues", "Revenue",
					map[xbrl.PeriodKey]float64{q.Key: 100}, -6),
			}

			stmt := renderer.Render(items, []statements.SelectedPeriod{q},
				"Income Statement", statements.IncomeStatement, entity, statements.RenderOptions{})
			Expect(stmt.FiscalIndicator).To(Equal("Three Months Ended"))
		})

		It("uses fiscal alignment for instant columns", func() {
			items := []*statements.LineItem{
				monetaryItem("us-gaap:Assets", "Total assets",
					map[xbrl.PeriodKey]float64{current.Key: 100}, -6),
			}

			stmt := renderer.Render(items, []statements.SelectedPeriod{current},
				"Balance Sheet", statements.BalanceSheet, entity, statements.RenderOptions{})
			Expect(stmt.FiscalIndicator).To(Equal("Fiscal Year Ended"))
		})
	})

	Context("when standardizing labels", func() {
		It("rewrites labels through the standardizer", func() {
			std := statements.NewCachedStandardizer(statements.NewMappingStandardizer(
				map[statements.StatementType]map[string]string{
					statements.BalanceSheet: {"us-gaap:Assets": "Total Assets"},
				}, nil))
			stdRenderer := &statements.Renderer{Standardizer: std}

			items := []*statements.LineItem{
				monetaryItem("us-gaap:Assets", "ASSETS, TOTAL (NOTE 4)",
					map[xbrl.PeriodKey]float64{current.Key: 100}, -6),
			}

			stmt := stdRenderer.Render(items, []statements.SelectedPeriod{current},
				"Balance Sheet", statements.BalanceSheet, entity,
				statements.RenderOptions{Standardize: true})
			Expect(stmt.Rows[0].Label).To(Equal("Total Assets"))
		})

		It("leaves labels alone when standardization is off", func() {
			std := statements.NewCachedStandardizer(statements.NewMappingStandardizer(
				map[statements.StatementType]map[string]string{
					statements.BalanceSheet: {"us-gaap:Assets": "Total Assets"},
				}, nil))
			stdRenderer := &statements.Renderer{Standardizer: std}

			items := []*statements.LineItem{
				monetaryItem("us-gaap:Assets", "ASSETS, TOTAL (NOTE 4)",
					map[xbrl.PeriodKey]float64{current.Key: 100}, -6),
			}

			stmt := stdRenderer.Render(items, []statements.SelectedPeriod{current},
				"Balance Sheet", statements.BalanceSheet, entity, statements.RenderOptions{})
			Expect(stmt.Rows[0].Label).To(Equal("ASSETS, TOTAL (NOTE 4)"))
		})
	})
})

var _ = Describe("RenderedStatement serialization", func() {
	var stmt *statements.RenderedStatement

	BeforeEach(func() {
		renderer := &statements.Renderer{}
		entity := xbrl.EntityInfo{
			FiscalYearEndMonth: 9, FiscalYearEndDay: 30,
			FiscalPeriod: "FY", DocumentType: "10-K",
		}

		q3 := statements.SelectedPeriod{
			Key:    "duration_2022-10-01_2023-09-30",
			Period: xbrl.DurationPeriod(date(2022, 10, 1), date(2023, 9, 30)),
			Label:  "Sep 30, 2023",
		}
		q2 := statements.SelectedPeriod{
			Key:    "duration_2021-09-26_2022-09-24",
			Period: xbrl.DurationPeriod(date(2021, 9, 26), date(2022, 9, 24)),
			Label:  "Sep 24, 2022",
		}

		items := []*statements.LineItem{
			{
				Kind:    statements.KindAbstractHeader,
				Concept: "us-gaap:IncomeStatementAbstract",
				Label:   "Income Statement",
			},
			monetaryItem("us-gaap:Revenues", "Revenue",
				map[xbrl.PeriodKey]float64{q3.Key: 383285000000, q2.Key: 394328000000}, -6),
			monetaryItem("us-gaap:EarningsPerShareBasic", "Basic EPS",
				map[xbrl.PeriodKey]float64{q3.Key: 6.16}, 2),
		}

		stmt = renderer.Render(items, []statements.SelectedPeriod{q3, q2},
			"Example Corp Income Statement", statements.IncomeStatement, entity,
			statements.RenderOptions{Compare: true})
	})

	It("round-trips through the serializable form", func() {
		restored, err := statements.FromSerializable(stmt.ToSerializable())
		Expect(err).NotTo(HaveOccurred())
		Expect(restored).To(Equal(stmt))
	})

	It("round-trips through JSON", func() {
		data, err := stmt.JSON()
		Expect(err).NotTo(HaveOccurred())

		restored, err := statements.FromJSON(data)
		Expect(err).NotTo(HaveOccurred())
		Expect(restored).To(Equal(stmt))
	})

	It("carries formatted strings explicitly", func() {
		serial := stmt.ToSerializable()
		rows := serial["rows"].([]any)
		revenue := rows[1].(map[string]any)
		cells := revenue["cells"].([]any)
		first := cells[0].(map[string]any)
		Expect(first["formatted"]).To(Equal("383,285"))
	})

	It("rejects malformed serialized input", func() {
		_, err := statements.FromSerializable(map[string]any{
			"title": "x", "rows": "not-a-list",
		})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("RenderedStatement exports", func() {
	var stmt *statements.RenderedStatement

	BeforeEach(func() {
		renderer := &statements.Renderer{}
		current := statements.SelectedPeriod{
			Key:    "instant_2023-09-30",
			Period: xbrl.InstantPeriod(date(2023, 9, 30)),
			Label:  "Sep 30, 2023",
		}
		items := []*statements.LineItem{
			{
				Kind:    statements.KindAbstractHeader,
				Concept: "us-gaap:AssetsAbstract",
				Label:   "Assets",
			},
			monetaryItem("us-gaap:Assets", "Total assets",
				map[xbrl.PeriodKey]float64{current.Key: 352755000000}, -6),
		}

		stmt = renderer.Render(items, []statements.SelectedPeriod{current},
			"Example Corp Balance Sheet", statements.BalanceSheet,
			xbrl.EntityInfo{FiscalYearEndMonth: 9, FiscalYearEndDay: 30, FiscalPeriod: "FY"},
			statements.RenderOptions{})
	})

	It("flattens to one record per non-empty cell", func() {
		flat := stmt.FlatRows()
		Expect(flat).To(HaveLen(1))
		Expect(flat[0].Concept).To(Equal("us-gaap:Assets"))
		Expect(flat[0].Formatted).To(Equal("352,755"))
		Expect(flat[0].PeriodKey).To(Equal("instant_2023-09-30"))
	})

	It("writes CSV with a header row", func() {
		var buf bytes.Buffer
		Expect(stmt.WriteCSV(&buf)).To(Succeed())

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		Expect(lines).To(HaveLen(2))
		Expect(lines[0]).To(ContainSubstring("label"))
		Expect(lines[0]).To(ContainSubstring("period_key"))
	})

	It("renders a markdown table", func() {
		doc := stmt.Markdown()
		Expect(doc).To(ContainSubstring("# Example Corp Balance Sheet"))
		Expect(doc).To(ContainSubstring("| Line Item |"))
		Expect(doc).To(ContainSubstring("352,755"))
	})
})

var _ = Describe("Service", func() {
	var svc *statements.Service

	BeforeEach(func() {
		assets := 352755000000.0
		liabilities := 290437000000.0
		equity := 62318000000.0
		priorAssets := 352583000000.0
		priorLiabilities := 302083000000.0
		priorEquity := 50672000000.0

		facts := []*xbrl.Fact{
			{Concept: "us-gaap:Assets", ContextRef: "cur", NumericVal: &assets, Decimals: -6},
			{Concept: "us-gaap:Liabilities", ContextRef: "cur", NumericVal: &liabilities, Decimals: -6},
			{Concept: "us-gaap:StockholdersEquity", ContextRef: "cur", NumericVal: &equity, Decimals: -6},
			{Concept: "us-gaap:Assets", ContextRef: "prior", NumericVal: &priorAssets, Decimals: -6},
			{Concept: "us-gaap:Liabilities", ContextRef: "prior", NumericVal: &priorLiabilities, Decimals: -6},
			{Concept: "us-gaap:StockholdersEquity", ContextRef: "prior", NumericVal: &priorEquity, Decimals: -6},
		}

		contexts := []*xbrl.Context{
			{ID: "cur", Period: xbrl.InstantPeriod(date(2023, 9, 30))},
			{ID: "prior", Period: xbrl.InstantPeriod(date(2022, 9, 24))},
		}

		tree := &xbrl.PresentationTree{
			Role:        "http://example.com/role/ConsolidatedBalanceSheets",
			Definition:  "1001 - Statement - Consolidated Balance Sheets",
			RootConcept: "us-gaap:StatementOfFinancialPositionAbstract",
			Nodes: map[string]*xbrl.PresentationNode{
				"us-gaap:StatementOfFinancialPositionAbstract": {
					Concept:  "us-gaap:StatementOfFinancialPositionAbstract",
					Abstract: true,
					Children: []string{"us-gaap:Assets", "us-gaap:Liabilities", "us-gaap:StockholdersEquity"},
				},
				"us-gaap:Assets":             {Concept: "us-gaap:Assets", Depth: 1, Label: "Total assets"},
				"us-gaap:Liabilities":        {Concept: "us-gaap:Liabilities", Depth: 1, Label: "Total liabilities"},
				"us-gaap:StockholdersEquity": {Concept: "us-gaap:StockholdersEquity", Depth: 1, Label: "Total equity"},
			},
		}

		entity := xbrl.EntityInfo{
			RegistrantName:     "Example Corp",
			FiscalYearEndMonth: 9,
			FiscalYearEndDay:   30,
			FiscalPeriod:       "FY",
			DocumentType:       "10-K",
			DocumentPeriodEnd:  date(2023, 9, 30),
		}

		filing := xbrl.NewFiling(entity, facts, contexts,
			[]*xbrl.PresentationTree{tree}, nil, nil)
		svc = statements.NewService(filing, nil)
	})

	It("renders a statement end to end", func() {
		stmt, err := svc.RenderStatement(statements.RenderRequest{Statement: "BalanceSheet"})
		Expect(err).NotTo(HaveOccurred())
		Expect(stmt.Title).To(Equal("Example Corp Consolidated Balance Sheets"))
		Expect(stmt.Columns).To(HaveLen(2))
		Expect(stmt.Rows).NotTo(BeEmpty())
		Expect(stmt.DominantScale).To(Equal(-6))
	})

	It("returns ErrStatementNotFound for unknown queries", func() {
		stmt, err := svc.RenderStatement(statements.RenderRequest{Statement: "nope nope nope"})
		Expect(err).To(MatchError(statements.ErrStatementNotFound))
		Expect(stmt).To(BeNil())
	})

	It("returns ErrStatementNotFound when the filing lacks the statement", func() {
		_, err := svc.RenderStatement(statements.RenderRequest{Statement: "CashFlowStatement"})
		Expect(err).To(MatchError(statements.ErrStatementNotFound))
	})

	It("lists named period views", func() {
		Expect(svc.NamedViews()).NotTo(BeEmpty())
	})

	It("keeps every value anchored to a fact's period", func() {
		stmt, err := svc.RenderStatement(statements.RenderRequest{Statement: "BalanceSheet"})
		Expect(err).NotTo(HaveOccurred())

		valid := map[xbrl.PeriodKey]bool{}
		for _, p := range svc.Filing().AllPeriods() {
			valid[p.Key()] = true
		}
		for _, col := range stmt.Columns {
			Expect(valid[col.Key]).To(BeTrue())
		}
	})
})
