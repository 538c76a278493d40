package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"resource-dispatcher/pkg/logging"
)

// Environment variables read by ApplyEnv.
const (
	EnvLabel              = "LABEL"
	EnvFolder             = "TEMPLATES_FOLDER"
	EnvHost               = "HOST"
	EnvPort               = "PORT"
	EnvStrategy           = "MANIFEST_STRATEGY"
	EnvResyncAfterSeconds = "RESYNC_AFTER_SECONDS"
	EnvWatch              = "WATCH_TEMPLATES"
	EnvLogLevel           = "LOG_LEVEL"
	EnvLogFormat          = "LOG_FORMAT"
)

// lookupEnv is a package-level variable so tests can replace the environment.
var lookupEnv = os.LookupEnv

// LoadConfig returns the default configuration overlaid with the YAML file at
// configPath (if set) and then with environment variables.
func LoadConfig(configPath string) (Config, error) {
	cfg := GetDefaultConfig()

	if configPath != "" {
		if err := loadFile(configPath, &cfg); err != nil {
			return Config{}, err
		}
		logging.Info("ConfigLoader", "Loaded configuration from %s", configPath)
	}

	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		errorType := "io"
		if errors.Is(err, os.ErrNotExist) {
			errorType = "not_found"
		}
		return ConfigurationError{
			FilePath:  path,
			FileName:  filepath.Base(path),
			Source:    "file",
			ErrorType: errorType,
			Message:   "cannot read configuration file",
			Details:   err.Error(),
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return ConfigurationError{
			FilePath:    path,
			FileName:    filepath.Base(path),
			Source:      "file",
			ErrorType:   "parse",
			Message:     "configuration file is not valid YAML",
			Details:     err.Error(),
			Suggestions: []string{"Check indentation and quoting in the file"},
		}
	}
	return nil
}

// ApplyEnv overlays environment variables onto cfg. Unset variables leave the
// current values untouched.
func ApplyEnv(cfg *Config) error {
	if v, ok := lookupEnv(EnvLabel); ok && v != "" {
		cfg.Label = v
	}
	if v, ok := lookupEnv(EnvFolder); ok && v != "" {
		cfg.Folder = v
	}
	if v, ok := lookupEnv(EnvHost); ok {
		cfg.Host = v
	}
	if v, ok := lookupEnv(EnvStrategy); ok && v != "" {
		cfg.Strategy = Strategy(v)
	}
	if v, ok := lookupEnv(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookupEnv(EnvLogFormat); ok && v != "" {
		cfg.LogFormat = v
	}

	if v, ok := lookupEnv(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return envError(EnvPort, v, err)
		}
		cfg.Port = port
	}
	if v, ok := lookupEnv(EnvResyncAfterSeconds); ok && v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return envError(EnvResyncAfterSeconds, v, err)
		}
		cfg.ResyncAfterSeconds = seconds
	}
	if v, ok := lookupEnv(EnvWatch); ok && v != "" {
		watch, err := strconv.ParseBool(v)
		if err != nil {
			return envError(EnvWatch, v, err)
		}
		cfg.Watch = watch
	}
	return nil
}

func envError(name, value string, err error) error {
	return ConfigurationError{
		Source:    "env",
		FileName:  name,
		ErrorType: "parse",
		Message:   fmt.Sprintf("invalid value %q", value),
		Details:   err.Error(),
	}
}
