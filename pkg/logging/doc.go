// Package logging provides the structured logging used across resource-dispatcher.
//
// It is a thin layer over Go's slog package. Every entry carries a subsystem
// attribute so logs from the webhook, the manifest source and the bootstrap
// code can be filtered independently.
//
// # Usage
//
//	logging.Init(logging.LevelInfo, logging.FormatJSON, os.Stdout)
//
//	logging.Info("Bootstrap", "Serving on %s", addr)
//	logging.Debug("Manifest", "Found %d template files in %s", n, folder)
//	logging.Error("Server", err, "Failed to generate manifests")
//
// # Controller-Runtime Integration
//
// Init also routes the controller-runtime logger to the same slog handler, so
// Kubernetes client code used by the inspect command logs through the same
// pipeline instead of warning about an uninitialized logger. controller-runtime
// binds its logger only once; that binding follows every later Init.
//
// # Thread Safety
//
// All functions are safe for concurrent use. Init may be called again to
// reconfigure the level or output; later calls replace the previous logger.
package logging
