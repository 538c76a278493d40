package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"resource-dispatcher/internal/app"
	"resource-dispatcher/internal/config"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sync webhook",
		Long: `Runs the HTTP sync webhook for the composite controller.

Every POST is treated as a sync request. The manifest folder is read again on
every request, so changes take effect without a restart.

Configuration (later sources win):
  1. Built-in defaults
  2. The file given with --config
  3. Environment: LABEL, TEMPLATES_FOLDER, HOST, PORT, MANIFEST_STRATEGY,
     RESYNC_AFTER_SECONDS, WATCH_TEMPLATES, LOG_LEVEL, LOG_FORMAT
  4. Command line flags

Endpoints:
  POST /<any>    sync hook
  GET  /healthz  liveness
  GET  /readyz   manifest folder validity
  GET  /metrics  Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	addServeFlags(cmd.Flags())
	return cmd
}

// runServe is the main entry point for the serve command
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	application, err := app.NewApplication(cfg, cmd.ErrOrStderr())
	if err != nil {
		if config.IsConfigurationError(err) {
			return err
		}
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}
