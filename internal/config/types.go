package config

import (
	"net"
	"strconv"

	"resource-dispatcher/internal/api"
)

// Strategy selects how manifest files are turned into desired children.
type Strategy string

const (
	// StrategyStatic copies YAML manifests verbatim and patches metadata.namespace.
	StrategyStatic Strategy = "static"
	// StrategyTemplate renders *.j2 templates with the namespace context before parsing.
	StrategyTemplate Strategy = "template"
)

// KindMapping ties a subdirectory of the manifest folder to the child kind
// its files produce. Files in the directory are counted as the desired number
// of children of that kind.
type KindMapping struct {
	Directory string     `yaml:"directory"`
	Kind      api.KindID `yaml:"kind"`
}

// Config is the top-level configuration structure for resource-dispatcher.
type Config struct {
	// Label is the namespace label key that must be "true" for resources to be dispatched.
	Label string `yaml:"label,omitempty"`

	// Folder is the root directory holding manifest files or templates.
	Folder string `yaml:"folder,omitempty"`

	// Host and Port define the webhook listen address.
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty"`

	Strategy Strategy `yaml:"strategy,omitempty"`

	// ResyncAfterSeconds is returned to the controller while children are not ready.
	ResyncAfterSeconds int `yaml:"resyncAfterSeconds,omitempty"`

	// Kinds lists the tracked child kinds and their subdirectories.
	Kinds []KindMapping `yaml:"kinds,omitempty"`

	// Watch enables the template folder watcher.
	Watch bool `yaml:"watch,omitempty"`

	LogLevel  string `yaml:"logLevel,omitempty"`
	LogFormat string `yaml:"logFormat,omitempty"`
}

// ListenAddress returns the host:port pair the webhook binds to.
func (c Config) ListenAddress() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
