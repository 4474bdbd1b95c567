package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage fleetcheck configuration file values.",
	Long: `Create, edit, display, and delete the fleetcheck configuration file.

The configuration controls how workbooks are read and validated:
- header.mode / row / marker / scan_rows
- matching.cutoff
- columns.year / comments / rules[].key+rule+options
- output.error_log / change_log / suffix
- style.fill / font
- history.enabled / db`,
	Example: `
  # Create default config in $HOME/.fleetcheck.yaml
  fleetcheck config create

  # Show active config and source file
  fleetcheck config show

  # Open active config in editor (creates example if missing)
  fleetcheck config edit

  # List which rule applies to each column key
  fleetcheck config columns

  # Delete active config file
  fleetcheck config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
