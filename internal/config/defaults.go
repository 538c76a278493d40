package config

import (
	corev1 "k8s.io/api/core/v1"

	"resource-dispatcher/internal/api"
)

const (
	// DefaultLabel is the namespace label that opts a namespace in.
	DefaultLabel = "user.kubeflow.org/enabled"

	// DefaultFolder is where manifests are read from when nothing else is configured.
	DefaultFolder = "./resources"

	DefaultPort = 80

	// DefaultResyncAfterSeconds is the poll-back interval requested while children are not ready.
	DefaultResyncAfterSeconds = 10

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// DefaultKinds returns the tracked kinds used when the configuration names none.
func DefaultKinds() []KindMapping {
	return []KindMapping{
		{Directory: "secrets", Kind: api.NewKindID(corev1.SchemeGroupVersion.WithKind("Secret"))},
		{Directory: "service-accounts", Kind: api.NewKindID(corev1.SchemeGroupVersion.WithKind("ServiceAccount"))},
	}
}

// GetDefaultConfig returns the default configuration for resource-dispatcher.
func GetDefaultConfig() Config {
	return Config{
		Label:              DefaultLabel,
		Folder:             DefaultFolder,
		Port:               DefaultPort,
		Strategy:           StrategyStatic,
		ResyncAfterSeconds: DefaultResyncAfterSeconds,
		Kinds:              DefaultKinds(),
		LogLevel:           DefaultLogLevel,
		LogFormat:          DefaultLogFormat,
	}
}
