/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"fleetcheck/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fleetcheck",
	Short: "Validate and correct fleet spreadsheets.",
	Long: `
**********************************************
*                FLEETCHECK                  *
**********************************************

This CLI reads a fleet workbook (Excel or CSV), locates the header row, validates
every data cell against its column rule and writes an annotated copy: corrected
values are written back, invalid cells are highlighted, and error/change log
sheets are appended.

Supported input formats:
- Excel: .xlsx, .xlsm
- CSV: .csv (comma or semicolon separated)
`,
	Example: `
  # Create configuration file
  fleetcheck config create

  # Validate one workbook (writes flota_validado.xlsx next to it)
  fleetcheck validate -i flota.xlsx

  # Validate several files, two at a time, and keep run history
  fleetcheck validate -i norte.xlsx -i sur.csv --jobs 2 --history on

  # Write the change log as a separate CSV file
  fleetcheck validate -i flota.xlsx --changes ./cambios.csv

  # List the resolved column rules
  fleetcheck config columns

  # Start the local upload UI
  fleetcheck serve
`,
	SilenceUsage: true,
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

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.fleetcheck.yaml, then ./.fleetcheck.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Write development logs to stderr")
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

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".fleetcheck")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// Defaults apply when no file is found.
	if err := viper.ReadInConfig(); err != nil && verbose {
		fmt.Fprintln(os.Stderr, "No config file found, using defaults. Create one with: fleetcheck config create")
	}
}

// newLogger returns a development logger with --verbose, otherwise a no-op.
func newLogger() (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}
