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
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/goccy/go-json"
	"github.com/gosimple/slug"
	"github.com/penny-vault/pvstatements/statements"
	"github.com/penny-vault/pvstatements/xbrl"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	renderCSV           string
	renderJSON          string
	renderExport        bool
	renderRaw           bool
	renderNamedView     string
	renderPeriodKeys    []string
	renderMaxPeriods    int
	renderDateRange     bool
	renderStandardize   bool
	renderParenthetical bool
	renderCompare       bool
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render <filing.json> [statement]",
	Short: "Render a financial statement from a parsed filing",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		filing, err := xbrl.LoadFile(args[0])
		if err != nil {
			log.Fatal().Err(err).Str("FileName", args[0]).Msg("could not load filing")
		}

		svc := statements.NewService(filing, loadStandardizer())

		var query string
		if len(args) > 1 {
			query = args[1]
		} else {
			query = pickStatement(svc)
		}

		stmt, err := svc.RenderStatement(statements.RenderRequest{
			Statement:     query,
			Parenthetical: renderParenthetical,
			NamedView:     renderNamedView,
			PeriodFilter:  statements.PeriodKeyFilter(renderPeriodKeys),
			MaxPeriods:    renderMaxPeriods,
			Standardize:   renderStandardize,
			ShowDateRange: renderDateRange,
			Compare:       renderCompare,
		})
		switch {
		case errors.Is(err, statements.ErrStatementNotFound):
			fmt.Printf("statement %q is not available in this filing\n", query)
			os.Exit(1)
		case errors.Is(err, statements.ErrNoData):
			fmt.Printf("%s: not available (insufficient data)\n", stmt.Title)
			return
		case err != nil:
			log.Fatal().Err(err).Msg("could not render statement")
		}

		display(stmt)
		saveExports(stmt)
	},
}

// pickStatement prompts for a statement when none was given on the command
// line.
func pickStatement(svc *statements.Service) string {
	descriptors := svc.Index().Descriptors()
	options := make([]huh.Option[string], 0, len(descriptors))
	for _, desc := range descriptors {
		title := desc.Definition
		if title == "" {
			title = desc.Role
		}
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", title, desc.Type), desc.Role))
	}

	var role string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Statement").
				Options(options...).
				Value(&role),
		),
	)

	if err := form.Run(); err != nil {
		log.Fatal().Err(err).Msg("statement selection failed")
	}

	return role
}

// display renders the markdown form to the terminal, through glamour unless
// raw output was requested.
func display(stmt *statements.RenderedStatement) {
	doc := stmt.Markdown()

	if renderRaw {
		fmt.Print(doc)
		return
	}

	r, _ := glamour.NewTermRenderer(
		// detect background color and pick either the default dark or light theme
		glamour.WithAutoStyle(),
		// statements are wide; don't wrap mid-table
		glamour.WithWordWrap(0),
	)

	out, err := r.Render(doc)
	if err != nil {
		log.Fatal().Err(err).Msg("could not render statement document")
	}

	fmt.Print(out)
}

// saveExports writes the requested CSV and JSON files. With --export the
// filenames derive from the statement title.
func saveExports(stmt *statements.RenderedStatement) {
	csvFn := renderCSV
	jsonFn := renderJSON

	if renderExport {
		base := slug.Make(stmt.Title)
		if csvFn == "" {
			csvFn = base + ".csv"
		}
		if jsonFn == "" {
			jsonFn = base + ".json"
		}
	}

	if csvFn != "" {
		fh, err := os.Create(csvFn)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", csvFn).Msg("could not create csv file")
		}
		if err := stmt.WriteCSV(fh); err != nil {
			log.Fatal().Err(err).Str("FileName", csvFn).Msg("could not write csv file")
		}
		if err := fh.Close(); err != nil {
			log.Error().Err(err).Str("FileName", csvFn).Msg("error closing csv file")
		}
	}

	if jsonFn != "" {
		data, err := stmt.JSON()
		if err != nil {
			log.Fatal().Err(err).Msg("could not encode statement")
		}
		if err := os.WriteFile(jsonFn, data, 0644); err != nil {
			log.Fatal().Err(err).Str("FileName", jsonFn).Msg("could not write json file")
		}
	}
}

// loadStandardizer builds the label standardizer from the mappings file
// named in configuration, nil when none is configured.
func loadStandardizer() statements.Standardizer {
	fn := viper.GetString("Mappings")
	if fn == "" {
		return nil
	}

	data, err := os.ReadFile(fn)
	if err != nil {
		log.Fatal().Err(err).Str("FileName", fn).Msg("could not read mappings file")
	}

	var mappings struct {
		Defaults map[string]string                              `json:"defaults"`
		ByType   map[statements.StatementType]map[string]string `json:"by_type"`
	}
	if err := json.Unmarshal(data, &mappings); err != nil {
		log.Fatal().Err(err).Str("FileName", fn).Msg("could not parse mappings file")
	}

	return statements.NewCachedStandardizer(
		statements.NewMappingStandardizer(mappings.ByType, mappings.Defaults))
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVar(&renderCSV, "csv", "", "write flat CSV export to file")
	renderCmd.Flags().StringVar(&renderJSON, "json", "", "write JSON export to file")
	renderCmd.Flags().BoolVar(&renderExport, "export", false, "write CSV and JSON exports named after the statement")
	renderCmd.Flags().BoolVar(&renderRaw, "raw", false, "print raw markdown instead of styled output")
	renderCmd.Flags().StringVar(&renderNamedView, "view", "", "named period view (see 'pvstatements periods')")
	renderCmd.Flags().IntVar(&renderMaxPeriods, "periods", 0, "maximum number of period columns")
	renderCmd.Flags().StringSliceVar(&renderPeriodKeys, "period-keys", nil, "restrict columns to these period keys (e.g. instant_2023-09-30)")
	renderCmd.Flags().BoolVar(&renderDateRange, "date-range", false, "show full date ranges in column headers")
	renderCmd.Flags().BoolVar(&renderStandardize, "standardize", false, "standardize line item labels")
	renderCmd.Flags().BoolVar(&renderParenthetical, "parenthetical", false, "prefer the parenthetical statement variant")
	renderCmd.Flags().BoolVar(&renderCompare, "compare", false, "annotate period-over-period changes")
}
