package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"resource-dispatcher/internal/config"
)

// Flag names shared between commands.
const (
	flagConfig    = "config"
	flagLabel     = "label"
	flagFolder    = "folder"
	flagStrategy  = "strategy"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"
	flagDebug     = "debug"
	flagHost      = "host"
	flagPort      = "port"
	flagResync    = "resync-after"
	flagWatch     = "watch"
)

// addConfigFlags registers the flags every command understands.
func addConfigFlags(fs *pflag.FlagSet) {
	fs.String(flagConfig, "", "Path to a YAML configuration file")
	fs.StringP(flagLabel, "l", config.DefaultLabel, "Namespace label that must be \"true\" to receive resources")
	fs.StringP(flagFolder, "f", config.DefaultFolder, "Folder holding the manifests or templates")
	fs.String(flagStrategy, string(config.StrategyStatic), "How manifest files are read: static or template")
	fs.String(flagLogLevel, config.DefaultLogLevel, "Log level: debug, info, warn or error")
	fs.String(flagLogFormat, config.DefaultLogFormat, "Log format: text or json")
	fs.Bool(flagDebug, false, "Shorthand for --log-level=debug")
}

// addServeFlags registers the flags specific to the webhook server.
func addServeFlags(fs *pflag.FlagSet) {
	fs.String(flagHost, "", "Address to bind the webhook to (all interfaces when empty)")
	fs.IntP(flagPort, "p", config.DefaultPort, "Port to bind the webhook to")
	fs.Int(flagResync, config.DefaultResyncAfterSeconds, "Seconds the controller waits before resyncing a namespace that is not ready")
	fs.Bool(flagWatch, false, "Watch the manifest folder and report invalid manifests as soon as they change")
}

// loadConfig builds the configuration for cmd: defaults, then the optional
// configuration file, then the environment, then explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	fs := cmd.Flags()

	path, err := fs.GetString(flagConfig)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(fs, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyFlags overrides cfg with the flags the user set explicitly. Flags that
// are not registered on fs are skipped.
func applyFlags(fs *pflag.FlagSet, cfg *config.Config) error {
	var err error
	changed := func(name string) bool {
		return err == nil && fs.Lookup(name) != nil && fs.Changed(name)
	}

	if changed(flagLabel) {
		cfg.Label, err = fs.GetString(flagLabel)
	}
	if changed(flagFolder) {
		cfg.Folder, err = fs.GetString(flagFolder)
	}
	if changed(flagStrategy) {
		var strategy string
		strategy, err = fs.GetString(flagStrategy)
		cfg.Strategy = config.Strategy(strategy)
	}
	if changed(flagLogLevel) {
		cfg.LogLevel, err = fs.GetString(flagLogLevel)
	}
	if changed(flagLogFormat) {
		cfg.LogFormat, err = fs.GetString(flagLogFormat)
	}
	if changed(flagDebug) {
		var debug bool
		if debug, err = fs.GetBool(flagDebug); debug {
			cfg.LogLevel = "debug"
		}
	}
	if changed(flagHost) {
		cfg.Host, err = fs.GetString(flagHost)
	}
	if changed(flagPort) {
		cfg.Port, err = fs.GetInt(flagPort)
	}
	if changed(flagResync) {
		cfg.ResyncAfterSeconds, err = fs.GetInt(flagResync)
	}
	if changed(flagWatch) {
		cfg.Watch, err = fs.GetBool(flagWatch)
	}
	return err
}
