package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"resource-dispatcher/internal/config"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfigError indicates the configuration could not be loaded or is invalid.
	ExitCodeConfigError = 2
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "resource-dispatcher",
	Short: "Dispatch per-namespace resources through a composite controller sync hook",
	Long: `resource-dispatcher answers composite controller sync requests for namespaces.

For every namespace labelled <label>=true it returns the manifests found in the
manifest folder as the desired children, with metadata.namespace set to the
namespace, and reports resources-ready once the controller observes as many
children of each tracked kind as there are manifest files in its subdirectory.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and exits with a code describing the failure.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "resource-dispatcher version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	if config.IsConfigurationError(err) {
		var detailed config.ConfigurationError
		if errors.As(err, &detailed) {
			fmt.Fprintln(os.Stderr, detailed.DetailedError())
		}
		return ExitCodeConfigError
	}
	return ExitCodeError
}

func init() {
	addConfigFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
