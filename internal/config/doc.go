// Package config loads and validates the resource-dispatcher configuration.
//
// Values are resolved in layers, later layers overriding earlier ones:
//
//  1. Built-in defaults (GetDefaultConfig)
//  2. An optional YAML file passed with --config
//  3. Environment variables (LABEL, TEMPLATES_FOLDER, PORT, ...)
//  4. Command line flags, applied by the cmd package
//
// Example configuration file:
//
//	label: user.kubeflow.org/enabled
//	folder: /etc/dispatcher/resources
//	port: 8080
//	strategy: static
//	resyncAfterSeconds: 10
//	kinds:
//	  - directory: secrets
//	    kind: Secret.v1
//	  - directory: service-accounts
//	    kind: ServiceAccount.v1
//
// Loading problems are reported as ConfigurationError; semantic problems are
// collected by Validate into ValidationErrors.
package config
