// Package server exposes the sync hook over HTTP.
//
// Routes:
//
//	POST /<any>    sync request, answered with a JSON SyncResult
//	GET  /healthz  liveness
//	GET  /readyz   validates the manifest folder, 503 when it cannot be served
//	GET  /metrics  Prometheus metrics from the controller-runtime registry
//
// Sync failures are answered with a 500 and a generic message; the details
// are only logged. Every response carries an X-Request-Id header.
package server
