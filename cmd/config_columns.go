package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"fleetcheck/config"
	"fleetcheck/processor"
	"fleetcheck/rules"
)

var configColumnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "List the rule applied to each column key.",
	Long: `Print the resolved column dispatch table: the built-in fleet columns merged
with columns.rules from configuration.

Header cells are matched by their normalized key (lower-case, no accents, words
joined by "-"). Exact keys win over prefixes ending in "*"; among prefixes the
longest wins. Columns without a rule are copied unchanged.`,
	Example: `
  # Show the dispatch table
  fleetcheck config columns
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		table, err := processor.BuildTable(*cfg)
		if err != nil {
			return err
		}
		printColumnTable(cmd.OutOrStdout(), table.Entries())
		return nil
	},
}

func printColumnTable(out io.Writer, entries []rules.Entry) {
	fmt.Fprintf(out, "%-28s  %-12s  %s\n", "KEY", "RULE", "OPTIONS")
	for _, entry := range entries {
		options := ""
		if categorical, ok := entry.Rule.(*rules.Categorical); ok {
			options = strings.Join(categorical.Options(), ", ")
		}
		fmt.Fprintf(out, "%-28s  %-12s  %s\n", entry.Key, entry.Rule.Kind(), options)
	}
}

func init() {
	configCmd.AddCommand(configColumnsCmd)
}
