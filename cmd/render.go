package cmd

import (
	"github.com/spf13/cobra"

	"resource-dispatcher/internal/app"
	"resource-dispatcher/internal/formatting"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the children generated for a namespace",
		Long: `Generates the manifests the webhook would return for a namespace and prints
them. The gate label is not checked.

Examples:
  resource-dispatcher render --namespace team-a
  resource-dispatcher render -f ./templates --strategy template --namespace team-a -o table
  resource-dispatcher render --namespace team-a --labels owner=alice | kubectl apply -f -`,
		Args: cobra.NoArgs,
		RunE: runRender,
	}
	cmd.Flags().StringP("namespace", "n", "default", "Namespace to generate the manifests for")
	cmd.Flags().StringToString("labels", nil, "Namespace labels available to templates")
	cmd.Flags().StringP("output", "o", string(formatting.FormatYAML), "Output format: yaml, json or table")
	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
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

	namespace, _ := cmd.Flags().GetString("namespace")
	labels, _ := cmd.Flags().GetStringToString("labels")

	manifests, err := app.Render(cfg, namespace, labels)
	if err != nil {
		return err
	}
	return formatter.WriteManifests(cmd.OutOrStdout(), manifests)
}

// newFormatter builds the formatter selected by the --output flag.
func newFormatter(cmd *cobra.Command) (formatting.Formatter, error) {
	output, _ := cmd.Flags().GetString("output")
	format, err := formatting.ParseOutputFormat(output)
	if err != nil {
		return nil, err
	}
	return formatting.New(formatting.Options{Format: format, Color: isTerminal(cmd.OutOrStdout())}), nil
}
