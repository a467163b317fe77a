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
package xbrl_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pvstatements/xbrl"
)

var _ = Describe("Period", func() {
	var (
		instant  xbrl.Period
		duration xbrl.Period
	)

	BeforeEach(func() {
		instant = xbrl.InstantPeriod(time.Date(2023, 9, 30, 0, 0, 0, 0, time.UTC))
		duration = xbrl.DurationPeriod(
			time.Date(2022, 10, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2023, 9, 30, 0, 0, 0, 0, time.UTC))
	})

	Context("when deriving period keys", func() {
		It("derives an instant key", func() {
			Expect(instant.Key()).To(Equal(xbrl.PeriodKey("instant_2023-09-30")))
		})

		It("derives a duration key", func() {
			Expect(duration.Key()).To(Equal(xbrl.PeriodKey("duration_2022-10-01_2023-09-30")))
		})

		It("maps many contexts with the same period to one key", func() {
			other := xbrl.DurationPeriod(
				time.Date(2022, 10, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2023, 9, 30, 0, 0, 0, 0, time.UTC))
			Expect(other.Key()).To(Equal(duration.Key()))
		})
	})

	Context("when inspecting period attributes", func() {
		It("classifies instants and durations", func() {
			Expect(instant.IsInstant()).To(BeTrue())
			Expect(instant.IsDuration()).To(BeFalse())
			Expect(duration.IsDuration()).To(BeTrue())
			Expect(duration.IsInstant()).To(BeFalse())
		})

		It("computes elapsed days for durations", func() {
			Expect(duration.Days()).To(Equal(364))
			Expect(instant.Days()).To(Equal(0))
		})

		It("uses the instant date as the end date", func() {
			Expect(instant.End()).To(Equal(time.Date(2023, 9, 30, 0, 0, 0, 0, time.UTC)))
			Expect(duration.End()).To(Equal(time.Date(2023, 9, 30, 0, 0, 0, 0, time.UTC)))
		})
	})

	Context("when parsing period keys", func() {
		It("round-trips an instant key", func() {
			parsed, err := xbrl.ParsePeriodKey(instant.Key())
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed).To(Equal(instant))
		})

		It("round-trips a duration key", func() {
			parsed, err := xbrl.ParsePeriodKey(duration.Key())
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed).To(Equal(duration))
		})

		It("rejects a malformed key", func() {
			_, err := xbrl.ParsePeriodKey("snapshot_2023-09-30")
			Expect(err).To(HaveOccurred())
		})

		It("rejects a duration key with an unparseable date", func() {
			_, err := xbrl.ParsePeriodKey("duration_2022-10-01_bogus")
			Expect(err).To(HaveOccurred())
		})
	})
})
