package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fleetcheck/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values. Without a
config file the built-in defaults are shown.`,
	Example: `
  # Show active configuration
  fleetcheck config show
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		out := cmd.OutOrStdout()
		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Fprintln(out, "Config file loaded from:", configPath)
		} else {
			fmt.Fprintln(out, "No config file loaded, showing defaults.")
		}
		printConfig(out, *cfg)
		return nil
	},
}

func printConfig(out io.Writer, cfg config.Config) {
	fmt.Fprintln(out, "Configuration:")
	fmt.Fprintf(out, "%s: %s\n", config.KeyHeaderMode, cfg.Header.Mode)
	fmt.Fprintf(out, "%s: %d\n", config.KeyHeaderRow, cfg.Header.Row)
	fmt.Fprintf(out, "%s: %s\n", config.KeyHeaderMarker, cfg.Header.Marker)
	fmt.Fprintf(out, "%s: %d\n", config.KeyHeaderScanRows, cfg.Header.ScanRows)
	fmt.Fprintf(out, "%s: %g\n", config.KeyMatchingCutoff, cfg.Matching.Cutoff)
	fmt.Fprintf(out, "%s: %s\n", config.KeyColumnsYear, cfg.Columns.Year)
	fmt.Fprintf(out, "%s: %s\n", config.KeyColumnsComments, cfg.Columns.Comments)
	fmt.Fprintf(out, "%s: %d\n", config.KeyColumnsRules, len(cfg.Columns.Rules))
	for i, rule := range cfg.Columns.Rules {
		fmt.Fprintf(out, "%s[%d].key: %s\n", config.KeyColumnsRules, i, rule.Key)
		fmt.Fprintf(out, "%s[%d].rule: %s\n", config.KeyColumnsRules, i, rule.Rule)
		if len(rule.Options) > 0 {
			fmt.Fprintf(out, "%s[%d].options: %s\n", config.KeyColumnsRules, i, strings.Join(rule.Options, ", "))
		}
	}
	fmt.Fprintf(out, "%s: %t\n", config.KeyOutputErrorLog, cfg.Output.ErrorLog)
	fmt.Fprintf(out, "%s: %t\n", config.KeyOutputChangeLog, cfg.Output.ChangeLog)
	fmt.Fprintf(out, "%s: %s\n", config.KeyOutputSuffix, cfg.Output.Suffix)
	fmt.Fprintf(out, "%s: %s\n", config.KeyStyleFill, cfg.Style.Fill)
	fmt.Fprintf(out, "%s: %s\n", config.KeyStyleFont, cfg.Style.Font)
	fmt.Fprintf(out, "%s: %t\n", config.KeyHistoryEnabled, cfg.History.Enabled)
	fmt.Fprintf(out, "%s: %s\n", config.KeyHistoryDB, cfg.History.DB)
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
