package cmd

import (
	"github.com/spf13/cobra"

	"resource-dispatcher/internal/app"
	"resource-dispatcher/internal/formatting"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the manifest folder",
		Long: `Validates every manifest in the folder and reports the desired number of
children per tracked kind. Static manifests are parsed; templates are checked
for syntax only, since their output depends on the namespace. Exits non-zero
when a manifest cannot be read or parsed.

Examples:
  resource-dispatcher check -f ./resources
  resource-dispatcher check --config dispatcher.yaml -o json`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}
	cmd.Flags().StringP("output", "o", string(formatting.FormatTable), "Output format: yaml, json or table")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	if err := app.InitLogging(cfg, cmd.ErrOrStderr()); err != nil {
		return err
	}

	report, err := app.Check(cfg)
	if err != nil {
		return err
	}
	return formatter.WriteReport(cmd.OutOrStdout(), report)
}
