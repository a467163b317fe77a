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
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/penny-vault/pvstatements/statements"
	"github.com/penny-vault/pvstatements/xbrl"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var statementsAll bool

// statementsCmd represents the statements command
var statementsCmd = &cobra.Command{
	Use:   "statements <filing.json>",
	Short: "List the statements resolvable in a filing",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		filing, err := xbrl.LoadFile(args[0])
		if err != nil {
			log.Fatal().Err(err).Str("FileName", args[0]).Msg("could not load filing")
		}

		idx := statements.NewIndex(filing)

		var sb strings.Builder
		titleStyle := lipgloss.NewStyle().Bold(true)
		typeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212"))

		entity := filing.Entity()
		header := entity.RegistrantName
		if header == "" {
			header = "Filing"
		}
		fmt.Fprintf(&sb, "%s (%s)\n\n", titleStyle.Render(header), entity.DocumentType)

		for _, desc := range idx.Descriptors() {
			if !statementsAll && !desc.Type.IsCore() {
				continue
			}

			name := desc.Definition
			if name == "" {
				name = desc.Role
			}

			suffix := ""
			if desc.Parenthetical {
				suffix = " [parenthetical]"
			}

			fmt.Fprintf(&sb, "  %s %s%s\n", typeStyle.Render(fmt.Sprintf("%-20s", desc.Type)),
				name, suffix)
		}

		fmt.Print(lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			Render(strings.TrimRight(sb.String(), "\n")))
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(statementsCmd)
	statementsCmd.Flags().BoolVarP(&statementsAll, "all", "a", false, "include notes and disclosures")
}
