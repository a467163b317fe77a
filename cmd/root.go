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
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pvstatements",
	Short: "pvstatements renders financial statements from parsed XBRL filings",
	Long: `pvstatements resolves, selects, and renders financial statements from
XBRL filings that have already been parsed into the penny-vault filing
interchange format.

XBRL filings tag every reported value with an accounting concept and a
context describing the reporting period and any dimensional qualifiers.
Turning that into a readable Balance Sheet or Income Statement requires
deciding which periods to display (messy fiscal-year metadata makes this
non-trivial), mapping a statement name onto the right presentation tree,
arbitrating duplicate facts, and scaling values consistently. pvstatements
handles all of that and renders the result to the terminal, markdown, CSV,
or JSON for the rest of the penny-vault ecosystem.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pvstatements.toml)")
	rootCmd.PersistentFlags().String("mappings", "", "label standardization mapping file")
	if err := viper.BindPFlag("Mappings", rootCmd.PersistentFlags().Lookup("mappings")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for mappings failed")
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".pvstatements" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(".pvstatements")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("ConfigFN", viper.ConfigFileUsed()).Msg("Using config file")
	}
}
