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
package cmd

import (
	"fmt"

	"github.com/penny-vault/pvstatements/statements"
	"github.com/penny-vault/pvstatements/xbrl"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/xeonx/timeago"
)

var periodsStatementType string

// periodsCmd represents the periods command
var periodsCmd = &cobra.Command{
	Use:   "periods <filing.json>",
	Short: "List candidate reporting periods with fiscal alignment",
	Run: func(cmd *cobra.Command, args []string) {
		filing, err := xbrl.LoadFile(args[0])
		if err != nil {
			log.Fatal().Err(err).Str("FileName", args[0]).Msg("could not load filing")
		}

		entity := filing.Entity()
		fmt.Printf("%-44s %-10s %5s %5s %-4s %s\n", "PERIOD", "TYPE", "DAYS", "ALIGN", "QTR", "AGE")
		for _, p := range filing.AllPeriods() {
			ptype := "instant"
			if p.IsDuration() {
				ptype = "duration"
			}

			fmt.Printf("%-44s %-10s %5d %5d %-4s %s\n",
				p.Label(), ptype, p.Days(),
				statements.FiscalAlignmentScore(p.End(), entity),
				statements.QuarterTag(p, entity),
				timeago.English.Format(p.End()))
		}

		fmt.Println("\nNamed period views:")
		for _, view := range statements.NamedViews() {
			fmt.Printf("  %-20s %s\n", view.Name, view.Description)
		}

		if periodsStatementType != "" {
			stype, ok := statements.ParseStatementType(periodsStatementType)
			if !ok {
				log.Fatal().Str("StatementType", periodsStatementType).Msg("unknown statement type")
			}

			selected := statements.SelectPeriods(stype, filing.AllPeriods(), entity,
				statements.PeriodOptions{})
			selected = statements.ApplyQualityGate(filing, stype, selected)

			fmt.Printf("\nSelected for %s:\n", stype)
			for _, sp := range selected {
				fmt.Printf("  %s (align %d)\n", sp.Label, sp.AlignmentScore)
			}
		}
	},
	Args: cobra.ExactArgs(1),
}

func init() {
	rootCmd.AddCommand(periodsCmd)
	periodsCmd.Flags().StringVarP(&periodsStatementType, "statement", "s", "", "also show the periods selected for a statement type")
}
