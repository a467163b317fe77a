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

import "strings"

// StatementType classifies a presentation role into one of the recognized
// financial statement categories.
type StatementType string

const (
	BalanceSheet        StatementType = "BalanceSheet"
	IncomeStatement     StatementType = "IncomeStatement"
	CashFlowStatement   StatementType = "CashFlowStatement"
	StatementOfEquity   StatementType = "StatementOfEquity"
	ComprehensiveIncome StatementType = "ComprehensiveIncome"
	Notes               StatementType = "Notes"
	Disclosures         StatementType = "Disclosures"
	AccountingPolicies  StatementType = "AccountingPolicies"
	SegmentDisclosure   StatementType = "SegmentDisclosure"
	Other               StatementType = "Other"
)

// coreStatementTypes are the five primary statements. Dimensional breakout
// rows are never emitted for these, and only income/cash-flow types receive
// period-over-period comparison annotations.
var coreStatementTypes = map[StatementType]bool{
	BalanceSheet:        true,
	IncomeStatement:     true,
	CashFlowStatement:   true,
	StatementOfEquity:   true,
	ComprehensiveIncome: true,
}

// IsCore reports whether the type is one of the five primary statements.
func (st StatementType) IsCore() bool {
	return coreStatementTypes[st]
}

// RequiresInstant reports whether the statement displays point-in-time
// periods rather than durations.
func (st StatementType) RequiresInstant() bool {
	return st == BalanceSheet
}

// RequiresDuration reports whether the statement displays date-range periods.
func (st StatementType) RequiresDuration() bool {
	switch st {
	case IncomeStatement, CashFlowStatement, StatementOfEquity, ComprehensiveIncome:
		return true
	}
	return false
}

// SupportsComparison reports whether period-over-period comparison
// annotations apply to the statement type.
func (st StatementType) SupportsComparison() bool {
	return st == IncomeStatement || st == CashFlowStatement
}

// ParseStatementType maps a user query onto a StatementType, tolerating
// common aliases. Returns Other, false when the query is not a type name.
func ParseStatementType(query string) (StatementType, bool) {
	normalized := strings.ToLower(strings.ReplaceAll(query, " ", ""))
	switch normalized {
	case "balancesheet", "balancesheets", "statementoffinancialposition":
		return BalanceSheet, true
	case "incomestatement", "income", "statementofoperations", "operations",
		"statementofincome", "profitandloss":
		return IncomeStatement, true
	case "cashflowstatement", "cashflow", "cashflows", "statementofcashflows":
		return CashFlowStatement, true
	case "statementofequity", "equity", "stockholdersequity",
		"statementofstockholdersequity", "shareholdersequity":
		return StatementOfEquity, true
	case "comprehensiveincome", "statementofcomprehensiveincome":
		return ComprehensiveIncome, true
	case "notes":
		return Notes, true
	case "disclosures":
		return Disclosures, true
	case "accountingpolicies":
		return AccountingPolicies, true
	case "segmentdisclosure", "segments":
		return SegmentDisclosure, true
	}
	return Other, false
}

// StatementDescriptor identifies one candidate statement within a filing: a
// presentation role plus its classification.
type StatementDescriptor struct {
	Role          string        `json:"role"`
	Definition    string        `json:"definition,omitempty"`
	Type          StatementType `json:"type"`
	Parenthetical bool          `json:"parenthetical,omitempty"`
	RootConcept   string        `json:"root_concept,omitempty"`
}

// rootConceptTypes maps well-known abstract root concepts to statement
// types. Scanned against every presentation tree's root when the index is
// built.
var rootConceptTypes = map[string]StatementType{
	"us-gaap:StatementOfFinancialPositionAbstract":                 BalanceSheet,
	"us-gaap:BalanceSheetAbstract":                                 BalanceSheet,
	"us-gaap:IncomeStatementAbstract":                              IncomeStatement,
	"us-gaap:StatementOfIncomeAbstract":                            IncomeStatement,
	"us-gaap:StatementOfCashFlowsAbstract":                         CashFlowStatement,
	"us-gaap:StatementOfStockholdersEquityAbstract":                StatementOfEquity,
	"us-gaap:StatementOfShareholdersEquityAbstract":                StatementOfEquity,
	"us-gaap:StatementOfIncomeAndComprehensiveIncomeAbstract":      ComprehensiveIncome,
	"us-gaap:StatementOfComprehensiveIncomeAbstract":               ComprehensiveIncome,
	"us-gaap:ComprehensiveIncomeNoteAbstract":                      ComprehensiveIncome,
	"us-gaap:AccountingPoliciesAbstract":                           AccountingPolicies,
	"us-gaap:SignificantAccountingPoliciesTextBlock":               AccountingPolicies,
	"us-gaap:SegmentReportingAbstract":                             SegmentDisclosure,
	"us-gaap:SegmentReportingDisclosureTextBlock":                  SegmentDisclosure,
	"us-gaap:NotesToFinancialStatementsAbstract":                   Notes,
	"us-gaap:OrganizationConsolidationAndPresentationOfFinancialStatementsAbstract": Notes,
}

// definitionKeywords classify roles whose root concept is filer-specific.
// Checked in order; first match wins.
var definitionKeywords = []struct {
	keyword string
	stype   StatementType
}{
	{"balance sheet", BalanceSheet},
	{"financial position", BalanceSheet},
	{"comprehensive income", ComprehensiveIncome},
	{"comprehensive loss", ComprehensiveIncome},
	{"statement of operations", IncomeStatement},
	{"statements of operations", IncomeStatement},
	{"statement of income", IncomeStatement},
	{"statements of income", IncomeStatement},
	{"income statement", IncomeStatement},
	{"cash flow", CashFlowStatement},
	{"stockholders equity", StatementOfEquity},
	{"stockholders' equity", StatementOfEquity},
	{"shareholders equity", StatementOfEquity},
	{"shareholders' equity", StatementOfEquity},
	{"changes in equity", StatementOfEquity},
	{"accounting policies", AccountingPolicies},
	{"segment", SegmentDisclosure},
	{"disclosure", Disclosures},
	{"notes", Notes},
}

// essentialConcepts lists the minimal concepts expected on a real statement
// of each type. Period coverage of this set drives the data-quality gate.
var essentialConcepts = map[StatementType][]string{
	BalanceSheet: {
		"us-gaap:Assets",
		"us-gaap:Liabilities",
		"us-gaap:StockholdersEquity",
		"us-gaap:AssetsCurrent",
		"us-gaap:LiabilitiesCurrent",
		"us-gaap:CashAndCashEquivalentsAtCarryingValue",
		"us-gaap:LiabilitiesAndStockholdersEquity",
	},
	IncomeStatement: {
		"us-gaap:Revenues",
		"us-gaap:RevenueFromContractWithCustomerExcludingAssessedTax",
		"us-gaap:CostOfRevenue",
		"us-gaap:GrossProfit",
		"us-gaap:OperatingIncomeLoss",
		"us-gaap:NetIncomeLoss",
		"us-gaap:EarningsPerShareBasic",
	},
	CashFlowStatement: {
		"us-gaap:NetCashProvidedByUsedInOperatingActivities",
		"us-gaap:NetCashProvidedByUsedInInvestingActivities",
		"us-gaap:NetCashProvidedByUsedInFinancingActivities",
		"us-gaap:NetIncomeLoss",
		"us-gaap:DepreciationDepletionAndAmortization",
	},
	StatementOfEquity: {
		"us-gaap:StockholdersEquity",
		"us-gaap:NetIncomeLoss",
		"us-gaap:CommonStockValue",
	},
	ComprehensiveIncome: {
		"us-gaap:NetIncomeLoss",
		"us-gaap:ComprehensiveIncomeNetOfTax",
		"us-gaap:OtherComprehensiveIncomeLossNetOfTax",
	},
}

// EssentialConcepts returns the quality-gate concept set for a statement
// type, empty for types without one.
func EssentialConcepts(st StatementType) []string {
	return essentialConcepts[st]
}

// scaleExemptSuffixes mark concept classes rendered with their own per-fact
// decimals instead of the statement's dominant monetary scale: share counts,
// per-share amounts, and ratios.
var scaleExemptSuffixes = []string{
	"SharesOutstanding",
	"SharesIssued",
	"SharesAuthorized",
	"WeightedAverageNumberOfSharesOutstandingBasic",
	"WeightedAverageNumberOfDilutedSharesOutstanding",
	"PerShare",
	"PerShareBasic",
	"PerShareDiluted",
	"NetAssetValuePerShare",
	"Ratio",
	"Percentage",
	"Rate",
}

var scaleExemptInfixes = []string{
	"EarningsPerShare",
	"IncomeLossPerShare",
	"PerBasicShare",
	"PerDilutedShare",
}

// IsScaleExempt reports whether a concept's values bypass dominant-scale
// division.
func IsScaleExempt(concept string) bool {
	name := concept
	if idx := strings.LastIndex(name, ":"); idx >= 0 {
		name = name[idx+1:]
	}

	for _, suffix := range scaleExemptSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	for _, infix := range scaleExemptInfixes {
		if strings.Contains(name, infix) {
			return true
		}
	}

	return false
}

// IsPerShareConcept reports whether a concept is a per-share or ratio value,
// rendered unscaled with fixed decimal places.
func IsPerShareConcept(concept string) bool {
	name := concept
	if idx := strings.LastIndex(name, ":"); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.Contains(name, "PerShare") ||
		strings.Contains(name, "EarningsPerShare") ||
		strings.HasSuffix(name, "Ratio") ||
		strings.HasSuffix(name, "Percentage") ||
		strings.HasSuffix(name, "Rate")
}

// comparisonExcludedSuffixes never receive period-over-period comparison
// annotations; raw share counts move for reasons unrelated to performance.
var comparisonExcludedSuffixes = []string{
	"SharesOutstanding",
	"SharesIssued",
	"SharesAuthorized",
}

// IsComparisonExcluded reports whether the concept is excluded from
// comparison annotation.
func IsComparisonExcluded(concept string) bool {
	name := concept
	if idx := strings.LastIndex(name, ":"); idx >= 0 {
		name = name[idx+1:]
	}
	for _, suffix := range comparisonExcludedSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// dimensionalKeywords detect disclosure roles where dimensional breakout
// rows should be displayed. Never applied to core statements.
var dimensionalKeywords = []string{
	"segment",
	"geographic",
	"geographical",
	"by product",
	"by region",
	"disaggregat",
	"by category",
}

// WantsDimensionDisplay reports whether a role definition indicates a
// dimensional disclosure (segment or geography style breakouts).
func WantsDimensionDisplay(stype StatementType, definition string) bool {
	if stype.IsCore() {
		return false
	}

	lower := strings.ToLower(definition)
	for _, kw := range dimensionalKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	return false
}
