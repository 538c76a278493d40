// Package app wires the dispatcher together: configuration, logging, the
// manifest source, the sync engine, the HTTP server and the optional
// manifest watcher.
//
// Application runs the long-lived webhook process. Render, Check and Inspect
// back the one-shot commands of the CLI and share the same wiring, so what
// they print is exactly what the webhook would answer.
package app
