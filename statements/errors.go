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

import "errors"

var (
	// ErrStatementNotFound indicates the statement query matched no
	// presentation role in the filing.
	ErrStatementNotFound = errors.New("statement not found")

	// ErrNoData indicates the statement resolved but no period met the
	// data-quality thresholds. Callers should display "not available" rather
	// than treating this as a crash.
	ErrNoData = errors.New("statement has insufficient data")
)
