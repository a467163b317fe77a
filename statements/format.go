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
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// scaleFactor converts a decimals exponent to its divisor: -6 means values
// are stated in millions, so display divides by 1e6. Non-negative exponents
// leave values unscaled.
func scaleFactor(decimals int) float64 {
	if decimals >= 0 {
		return 1
	}
	return math.Pow(10, float64(-decimals))
}

// scaleNoun names a monetary scale for the units note.
func scaleNoun(decimals int) string {
	switch decimals {
	case -3:
		return "thousands"
	case -6:
		return "millions"
	case -9:
		return "billions"
	}
	return ""
}

// formatCell precomputes the display string for a cell. Monetary values
// divide by the statement's dominant scale; share counts divide by their own
// per-fact decimals; per-share and ratio values render unscaled with two
// fixed decimal places.
func formatCell(value float64, decimals int, concept string, dominantScale int) string {
	switch {
	case IsPerShareConcept(concept):
		return printer.Sprintf("%.2f", value)
	case IsScaleExempt(concept):
		return printer.Sprintf("%.0f", value/scaleFactor(decimals))
	}

	return printer.Sprintf("%.0f", value/scaleFactor(dominantScale))
}
