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

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// PeriodKey is the canonical identifier for a reporting period. Keys take the
// form "instant_<date>" for point-in-time periods and
// "duration_<start>_<end>" for date ranges. Many contexts may share a single
// key; facts and display columns are joined on it.
type PeriodKey string

// Period is the time period a fact is reported against: either a single
// instant (balance sheet snapshots) or a start/end duration (income and cash
// flow statements). A Period with a non-zero Instant is an instant period;
// otherwise StartDate/EndDate define a duration.
type Period struct {
	Instant   time.Time `json:"instant,omitempty"`
	StartDate time.Time `json:"start_date,omitempty"`
	EndDate   time.Time `json:"end_date,omitempty"`
}

// Instant returns an instant period for the given date.
func InstantPeriod(date time.Time) Period {
	return Period{Instant: date}
}

// DurationPeriod returns a duration period covering [start, end].
func DurationPeriod(start, end time.Time) Period {
	return Period{StartDate: start, EndDate: end}
}

func (p Period) IsInstant() bool {
	return !p.Instant.IsZero()
}

func (p Period) IsDuration() bool {
	return p.Instant.IsZero() && !p.StartDate.IsZero() && !p.EndDate.IsZero()
}

// End returns the instant date for instant periods and the end date for
// durations. This is the date periods sort and align on.
func (p Period) End() time.Time {
	if p.IsInstant() {
		return p.Instant
	}
	return p.EndDate
}

// Days returns the number of elapsed days in a duration period, or 0 for
// instants.
func (p Period) Days() int {
	if !p.IsDuration() {
		return 0
	}
	return int(p.EndDate.Sub(p.StartDate).Hours() / 24)
}

// Key derives the canonical PeriodKey for the period.
func (p Period) Key() PeriodKey {
	if p.IsInstant() {
		return PeriodKey(fmt.Sprintf("instant_%s", p.Instant.Format(dateLayout)))
	}
	return PeriodKey(fmt.Sprintf("duration_%s_%s",
		p.StartDate.Format(dateLayout), p.EndDate.Format(dateLayout)))
}

// Label returns the default human-readable form of the period: the instant
// date, or "start - end" for durations.
func (p Period) Label() string {
	if p.IsInstant() {
		return p.Instant.Format("Jan 2, 2006")
	}
	return fmt.Sprintf("%s - %s",
		p.StartDate.Format("Jan 2, 2006"), p.EndDate.Format("Jan 2, 2006"))
}

// ParsePeriodKey reconstructs a Period from its canonical key. Malformed keys
// return an error so callers can skip the period and fall back to the raw
// string for display.
func ParsePeriodKey(key PeriodKey) (Period, error) {
	s := string(key)

	switch {
	case strings.HasPrefix(s, "instant_"):
		date, err := time.Parse(dateLayout, strings.TrimPrefix(s, "instant_"))
		if err != nil {
			return Period{}, fmt.Errorf("malformed instant period key %q: %w", key, err)
		}
		return InstantPeriod(date), nil
	case strings.HasPrefix(s, "duration_"):
		parts := strings.Split(strings.TrimPrefix(s, "duration_"), "_")
		if len(parts) != 2 {
			return Period{}, fmt.Errorf("malformed duration period key %q", key)
		}
		start, err := time.Parse(dateLayout, parts[0])
		if err != nil {
			return Period{}, fmt.Errorf("malformed duration period key %q: %w", key, err)
		}
		end, err := time.Parse(dateLayout, parts[1])
		if err != nil {
			return Period{}, fmt.Errorf("malformed duration period key %q: %w", key, err)
		}
		return DurationPeriod(start, end), nil
	}

	return Period{}, fmt.Errorf("malformed period key %q", key)
}
