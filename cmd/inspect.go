package cmd

import (
	"context"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"resource-dispatcher/internal/app"
	"resource-dispatcher/internal/client"
	"resource-dispatcher/internal/formatting"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect NAMESPACE",
		Short: "Compare a live namespace with the desired children",
		Long: `Reads the namespace and its children of every tracked kind from the cluster,
evaluates them exactly as the webhook would and shows desired against observed
counts. Nothing in the cluster is modified.

The cluster is selected with --kubeconfig, or else from the in-cluster
configuration, $KUBECONFIG or ~/.kube/config.

Examples:
  resource-dispatcher inspect team-a
  resource-dispatcher inspect team-a --kubeconfig ~/.kube/staging -o json`,
		Args: cobra.ExactArgs(1),
		RunE: runInspect,
	}
	cmd.Flags().String("kubeconfig", "", "Path to a kubeconfig file")
	cmd.Flags().StringP("output", "o", string(formatting.FormatTable), "Output format: yaml, json or table")
	cmd.Flags().Duration("timeout", 30*time.Second, "Timeout for the cluster requests")
	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
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

	kubeconfig, _ := cmd.Flags().GetString("kubeconfig")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	inspector, err := client.NewKubernetesInspector(kubeconfig)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var s *spinner.Spinner
	if isTerminal(cmd.ErrOrStderr()) {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
		s.Suffix = " Reading namespace " + args[0] + "..."
		s.Start()
	}
	report, err := app.Inspect(ctx, cfg, inspector, args[0])
	if s != nil {
		s.Stop()
	}
	if err != nil {
		return err
	}
	return formatter.WriteReport(cmd.OutOrStdout(), report)
}
