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
	"time"

	"github.com/penny-vault/pvstatements/xbrl"
	"github.com/rs/zerolog/log"
)

// Duration-length buckets, in elapsed days.
const (
	quarterMinDays = 85
	quarterMaxDays = 95

	sixMonthMinDays = 175
	sixMonthMaxDays = 190

	nineMonthMinDays = 265
	nineMonthMaxDays = 285

	yearMinDays = 355
	yearMaxDays = 375

	// Annual primary-period bound is wider than the year bucket to tolerate
	// 52/53-week fiscal calendars.
	annualMinDays = 350
	annualMaxDays = 380
)

const (
	defaultMaxPeriods = 3

	// Quality-gate thresholds.
	coverageThreshold = 0.5
	minFactCount      = 10
	relaxedFactCount  = 5
)

// SelectedPeriod is one display column candidate chosen by the period
// selector.
type SelectedPeriod struct {
	Key    xbrl.PeriodKey `json:"key"`
	Period xbrl.Period    `json:"period"`
	Label  string         `json:"label"`

	// AlignmentScore measures how closely the period end matches the entity's
	// fiscal year end (100 exact, 75/50 partial, 0 unaligned).
	AlignmentScore int `json:"alignment_score"`

	// QuarterTag is "Q1".."Q4" for quarter-length duration periods, empty
	// otherwise.
	QuarterTag string `json:"quarter_tag,omitempty"`
}

// PeriodOptions adjusts period selection.
type PeriodOptions struct {
	// Filter, when non-nil, restricts candidate periods before any other
	// logic runs.
	Filter func(xbrl.Period) bool

	// NamedView selects a preset instead of the default selection. See
	// NamedViews for the available presets.
	NamedView string

	// MaxPeriods caps the number of selected periods; 0 means the default
	// of 3.
	MaxPeriods int
}

// NamedView is a precomputed alternative period selection preset.
type NamedView struct {
	Name               string `json:"name"`
	Description        string `json:"description"`
	MaxPeriods         int    `json:"max_periods"`
	RequiresMinPeriods int    `json:"requires_min_periods"`
	AnnualOnly         bool   `json:"annual_only"`
}

var namedViews = []NamedView{
	{
		Name:        "three-recent",
		Description: "Three Recent Periods",
		MaxPeriods:  3,
	},
	{
		Name:               "three-year-annual",
		Description:        "Three-Year Annual Comparison",
		MaxPeriods:         3,
		RequiresMinPeriods: 2,
		AnnualOnly:         true,
	},
	{
		Name:        "two-recent",
		Description: "Two Recent Periods",
		MaxPeriods:  2,
	},
	{
		Name:        "mixed-quarterly",
		Description: "Current YTD Plus Recent Quarters",
		MaxPeriods:  5,
	},
}

// NamedViews lists the available period selection presets.
func NamedViews() []NamedView {
	views := make([]NamedView, len(namedViews))
	copy(views, namedViews)
	return views
}

func lookupNamedView(name string) (NamedView, bool) {
	for _, view := range namedViews {
		if view.Name == name {
			return view, true
		}
	}
	return NamedView{}, false
}

// PeriodKeyFilter builds a period filter from canonical key strings, the
// form keys take when they arrive from a command line or API request. A
// malformed key is logged and skipped rather than failing the selection;
// when no usable key remains the filter is nil and selection runs
// unrestricted.
func PeriodKeyFilter(keys []string) func(xbrl.Period) bool {
	allowed := make(map[xbrl.PeriodKey]bool, len(keys))
	for _, raw := range keys {
		key := xbrl.PeriodKey(raw)
		if _, err := xbrl.ParsePeriodKey(key); err != nil {
			log.Warn().Err(err).Str("PeriodKey", raw).Msg("skipping malformed period key")
			continue
		}
		allowed[key] = true
	}

	if len(allowed) == 0 {
		return nil
	}

	return func(p xbrl.Period) bool {
		return allowed[p.Key()]
	}
}

// FiscalAlignmentScore measures how closely an end date matches the fiscal
// year end: 100 for an exact month and day match, 75 for the same month with
// the day within 15, 50 for a month within one and the day within 15, else 0.
// Entities without fiscal metadata score 0 for every date.
func FiscalAlignmentScore(end time.Time, entity xbrl.EntityInfo) int {
	if entity.FiscalYearEndMonth == 0 {
		return 0
	}

	month := int(end.Month())
	day := end.Day()

	dayDelta := day - entity.FiscalYearEndDay
	if dayDelta < 0 {
		dayDelta = -dayDelta
	}

	monthDelta := month - entity.FiscalYearEndMonth
	if monthDelta < 0 {
		monthDelta = -monthDelta
	}
	if monthDelta == 11 {
		// December vs January wraps.
		monthDelta = 1
	}

	switch {
	case monthDelta == 0 && dayDelta == 0:
		return 100
	case monthDelta == 0 && dayDelta <= 15:
		return 75
	case monthDelta == 1:
		// Adjacent month: Oct 2 is 2 days past a Sep 30 year end even
		// though the day numbers are far apart, so measure across the
		// month boundary too.
		if dayDelta <= 15 || 31-dayDelta <= 15 {
			return 50
		}
	}

	return 0
}

// QuarterTag derives "Q1".."Q4" for a quarter-length duration ending at the
// given date, measured against the entity's fiscal year end month. Returns ""
// for non-quarter durations or missing fiscal metadata.
func QuarterTag(p xbrl.Period, entity xbrl.EntityInfo) string {
	days := p.Days()
	if days < quarterMinDays || days > quarterMaxDays {
		return ""
	}
	if entity.FiscalYearEndMonth == 0 {
		return ""
	}

	// Months elapsed since the fiscal year started, mod 12: a quarter ending
	// 3 months in is Q1; ending at the fiscal year end is Q4.
	elapsed := (int(p.EndDate.Month()) - entity.FiscalYearEndMonth + 12) % 12
	switch elapsed {
	case 3:
		return "Q1"
	case 6:
		return "Q2"
	case 9:
		return "Q3"
	case 0:
		return "Q4"
	}

	return ""
}

// SelectPeriods chooses the display periods for a statement type per the
// selection heuristics: period-type filtering, document-end cutoff, fiscal
// alignment ranking for annual reports, interim bucketing for quarterly
// reports, and the balance-sheet comparison search. Never returns an empty
// slice when any period of the required type exists.
func SelectPeriods(stype StatementType, periods []xbrl.Period, entity xbrl.EntityInfo,
	opts PeriodOptions) []SelectedPeriod {
	candidates := filterCandidates(stype, periods, entity, opts.Filter)
	if len(candidates) == 0 {
		return nil
	}

	maxPeriods := opts.MaxPeriods
	if maxPeriods <= 0 {
		maxPeriods = defaultMaxPeriods
	}

	annualOnly := false
	if opts.NamedView != "" {
		view, ok := lookupNamedView(opts.NamedView)
		if !ok {
			log.Warn().Str("NamedView", opts.NamedView).Msg("unknown named period view, using default selection")
		} else {
			maxPeriods = view.MaxPeriods
			annualOnly = view.AnnualOnly
			if view.Name == "mixed-quarterly" && stype.RequiresDuration() {
				return mixedQuarterlySelection(candidates, entity, maxPeriods)
			}
			if view.RequiresMinPeriods > 0 && len(candidates) < view.RequiresMinPeriods {
				log.Debug().Str("NamedView", view.Name).Int("Candidates", len(candidates)).
					Msg("too few periods for named view, using default selection")
				annualOnly = false
				maxPeriods = defaultMaxPeriods
			}
		}
	}

	switch {
	case stype.RequiresInstant():
		return balanceSheetSelection(candidates, entity, maxPeriods)
	case entity.IsAnnualReport() || annualOnly:
		return annualSelection(candidates, entity, maxPeriods)
	default:
		return interimSelection(candidates, entity, maxPeriods)
	}
}

// filterCandidates applies the period-type requirement, the caller's filter,
// and the document-period-end cutoff, then sorts descending by end date with
// duration ties broken by start date.
func filterCandidates(stype StatementType, periods []xbrl.Period, entity xbrl.EntityInfo,
	filter func(xbrl.Period) bool) []xbrl.Period {
	candidates := make([]xbrl.Period, 0, len(periods))
	for _, p := range periods {
		switch {
		case stype.RequiresInstant() && !p.IsInstant():
			continue
		case stype.RequiresDuration() && !p.IsDuration():
			continue
		}

		if !entity.DocumentPeriodEnd.IsZero() && p.End().After(entity.DocumentPeriodEnd) {
			continue
		}

		if filter != nil && !filter(p) {
			continue
		}

		candidates = append(candidates, p)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		endI, endJ := candidates[i].End(), candidates[j].End()
		if !endI.Equal(endJ) {
			return endI.After(endJ)
		}
		return candidates[i].StartDate.After(candidates[j].StartDate)
	})

	return candidates
}

// annualSelection restricts duration candidates to annual lengths, ranks by
// fiscal alignment then recency, and takes up to maxPeriods. A non-annual
// duration is never admitted while any annual-length period exists, even a
// lone one; only when nothing qualifies does the duration constraint relax
// to the most recent periods of the required type.
func annualSelection(candidates []xbrl.Period, entity xbrl.EntityInfo, maxPeriods int) []SelectedPeriod {
	annual := make([]xbrl.Period, 0, len(candidates))
	for _, p := range candidates {
		days := p.Days()
		if days >= annualMinDays && days <= annualMaxDays {
			annual = append(annual, p)
		}
	}

	if len(annual) == 0 {
		log.Debug().Int("Candidates", len(candidates)).
			Msg("no annual-length durations, falling back to most recent periods")

		// candidates arrive sorted by recency from filterCandidates.
		fallback := candidates
		if len(fallback) > maxPeriods {
			fallback = fallback[:maxPeriods]
		}
		return toSelected(fallback, entity)
	}

	sort.SliceStable(annual, func(i, j int) bool {
		scoreI := FiscalAlignmentScore(annual[i].End(), entity)
		scoreJ := FiscalAlignmentScore(annual[j].End(), entity)
		if scoreI != scoreJ {
			return scoreI > scoreJ
		}
		return annual[i].End().After(annual[j].End())
	})

	if len(annual) > maxPeriods {
		annual = annual[:maxPeriods]
	}

	return toSelected(annual, entity)
}

// interimSelection keeps duration periods that fall into a recognized
// reporting bucket (quarter, six month, nine month, year) and takes the most
// recent, falling back to unbucketed candidates when nothing fits.
func interimSelection(candidates []xbrl.Period, entity xbrl.EntityInfo, maxPeriods int) []SelectedPeriod {
	bucketed := make([]xbrl.Period, 0, len(candidates))
	for _, p := range candidates {
		if !p.IsDuration() || interimBucket(p.Days()) != "" {
			bucketed = append(bucketed, p)
		}
	}

	if len(bucketed) == 0 {
		bucketed = candidates
	}

	if len(bucketed) > maxPeriods {
		bucketed = bucketed[:maxPeriods]
	}

	return toSelected(bucketed, entity)
}

// interimBucket classifies a duration length: "Q" for a quarter, "6M", "9M",
// "Y", or "" when the length fits no bucket.
func interimBucket(days int) string {
	switch {
	case days >= quarterMinDays && days <= quarterMaxDays:
		return "Q"
	case days >= sixMonthMinDays && days <= sixMonthMaxDays:
		return "6M"
	case days >= nineMonthMinDays && days <= nineMonthMaxDays:
		return "9M"
	case days >= yearMinDays && days <= yearMaxDays:
		return "Y"
	}
	return ""
}

// mixedQuarterlySelection combines the current year-to-date period with up
// to four recent quarter-length periods.
func mixedQuarterlySelection(candidates []xbrl.Period, entity xbrl.EntityInfo, maxPeriods int) []SelectedPeriod {
	var ytd []xbrl.Period
	var quarters []xbrl.Period

	for _, p := range candidates {
		switch interimBucket(p.Days()) {
		case "6M", "9M", "Y":
			if len(ytd) == 0 {
				ytd = append(ytd, p)
			}
		case "Q":
			quarters = append(quarters, p)
		}
	}

	if len(quarters) > 4 {
		quarters = quarters[:4]
	}

	combined := append(ytd, quarters...)
	if len(combined) == 0 {
		combined = candidates
	}
	if len(combined) > maxPeriods {
		combined = combined[:maxPeriods]
	}

	return toSelected(combined, entity)
}

// balanceSheetSelection takes the most recent instant, then searches for the
// best prior-year comparison snapshot: a fiscal-year-end aligned instant in
// the prior fiscal year, else the nearest instant from the prior calendar
// year. For annual filings any further additions must be fiscal-year-end
// aligned so interim snapshots never join an annual multi-year comparison.
func balanceSheetSelection(candidates []xbrl.Period, entity xbrl.EntityInfo, maxPeriods int) []SelectedPeriod {
	if len(candidates) == 0 {
		return nil
	}

	selected := []xbrl.Period{candidates[0]}
	chosen := map[xbrl.PeriodKey]bool{candidates[0].Key(): true}
	current := candidates[0].End()

	if comparison, ok := priorYearComparison(candidates[1:], current, entity); ok {
		selected = append(selected, comparison)
		chosen[comparison.Key()] = true
	}

	for _, p := range candidates[1:] {
		if len(selected) >= maxPeriods {
			break
		}
		if chosen[p.Key()] {
			continue
		}
		if entity.IsAnnualReport() && FiscalAlignmentScore(p.End(), entity) < 50 {
			continue
		}
		selected = append(selected, p)
		chosen[p.Key()] = true
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].End().After(selected[j].End())
	})

	return toSelected(selected, entity)
}

// priorYearComparison finds the comparison instant for a balance sheet:
// fiscal-year-end aligned in the prior fiscal year first, then the nearest
// instant from the prior calendar year.
func priorYearComparison(prior []xbrl.Period, current time.Time, entity xbrl.EntityInfo) (xbrl.Period, bool) {
	var best xbrl.Period
	bestScore := -1

	for _, p := range prior {
		end := p.End()
		if end.Year() != current.Year()-1 && !(end.Year() == current.Year() && end.Before(current)) {
			continue
		}
		score := FiscalAlignmentScore(end, entity)
		if score >= 50 && score > bestScore {
			best = p
			bestScore = score
		}
	}

	if bestScore >= 0 {
		return best, true
	}

	// Nearest instant from the prior calendar year.
	for _, p := range prior {
		if p.End().Year() == current.Year()-1 {
			return p, true
		}
	}

	return xbrl.Period{}, false
}

func toSelected(periods []xbrl.Period, entity xbrl.EntityInfo) []SelectedPeriod {
	selected := make([]SelectedPeriod, 0, len(periods))
	for _, p := range periods {
		selected = append(selected, SelectedPeriod{
			Key:            p.Key(),
			Period:         p,
			Label:          p.End().Format("Jan 2, 2006"),
			AlignmentScore: FiscalAlignmentScore(p.End(), entity),
			QuarterTag:     QuarterTag(p, entity),
		})
	}
	return selected
}

// ApplyQualityGate drops selected periods with poor data: coverage of the
// statement's essential concepts below 50 percent and fewer total facts than
// the minimum count. When the gate would remove more than all but one period
// it retries once with a relaxed fact-count floor before accepting the
// reduced set.
func ApplyQualityGate(filing *xbrl.Filing, stype StatementType,
	selected []SelectedPeriod) []SelectedPeriod {
	if len(selected) <= 1 {
		return selected
	}

	essential := EssentialConcepts(stype)
	if len(essential) == 0 {
		return selected
	}

	factCounts := factCountsByPeriod(filing)
	coverage := essentialCoverage(filing, essential)

	kept := gatePass(selected, factCounts, coverage, minFactCount)
	if len(kept) < 1 || (len(kept) == 1 && len(selected) > 2) {
		log.Debug().Int("Kept", len(kept)).Int("Candidates", len(selected)).
			Msg("quality gate removed too many periods, retrying with relaxed floor")
		kept = gatePass(selected, factCounts, coverage, relaxedFactCount)
	}

	if len(kept) == 0 {
		return selected
	}

	return kept
}

func gatePass(selected []SelectedPeriod, factCounts map[xbrl.PeriodKey]int,
	coverage map[xbrl.PeriodKey]float64, factFloor int) []SelectedPeriod {
	kept := make([]SelectedPeriod, 0, len(selected))
	for _, sp := range selected {
		if coverage[sp.Key] < coverageThreshold && factCounts[sp.Key] < factFloor {
			log.Debug().Str("PeriodKey", string(sp.Key)).
				Float64("Coverage", coverage[sp.Key]).Int("Facts", factCounts[sp.Key]).
				Msg("dropping period with insufficient data")
			continue
		}
		kept = append(kept, sp)
	}
	return kept
}

func factCountsByPeriod(filing *xbrl.Filing) map[xbrl.PeriodKey]int {
	counts := make(map[xbrl.PeriodKey]int)
	for _, fact := range filing.Facts() {
		if key, ok := filing.PeriodKeyForContext(fact.ContextRef); ok {
			counts[key]++
		}
	}
	return counts
}

// essentialCoverage computes, per period key, the fraction of essential
// concepts with at least one fact reported at that period.
func essentialCoverage(filing *xbrl.Filing, essential []string) map[xbrl.PeriodKey]float64 {
	hits := make(map[xbrl.PeriodKey]map[string]bool)
	for _, concept := range essential {
		for _, fact := range filing.FactsForConcept(concept) {
			key, ok := filing.PeriodKeyForContext(fact.ContextRef)
			if !ok {
				continue
			}
			if hits[key] == nil {
				hits[key] = make(map[string]bool)
			}
			hits[key][concept] = true
		}
	}

	coverage := make(map[xbrl.PeriodKey]float64, len(hits))
	for key, concepts := range hits {
		coverage[key] = float64(len(concepts)) / float64(len(essential))
	}

	return coverage
}
