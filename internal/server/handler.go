package server

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"resource-dispatcher/internal/api"
	"resource-dispatcher/internal/manifest"
	"resource-dispatcher/pkg/logging"
)

// Messages returned to the caller. Details stay in the server log.
const (
	msgTemplateProblem  = "Problem with manifest templates"
	msgMalformedRequest = "Malformed sync request"
	msgInternalError    = "Internal error"
	msgNotReady         = "Manifest folder is not valid"
)

// Handler returns the routed HTTP handler.
//
// POST on any path is a sync request. GET serves /healthz, /readyz and
// /metrics. Other methods get 405.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /", instrument("sync", http.HandlerFunc(s.handleSync)))
	mux.Handle("GET /healthz", instrument("healthz", http.HandlerFunc(handleHealthz)))
	mux.Handle("GET /readyz", instrument("readyz", http.HandlerFunc(s.handleReadyz)))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return withRequestID(mux)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	requestID := RequestIDFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodyBytes)

	var req api.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logging.Warn("Server", "[%s] Failed to decode sync request: %v", requestID, err)
		http.Error(w, msgMalformedRequest, http.StatusInternalServerError)
		return
	}
	if err := req.Validate(); err != nil {
		logging.Warn("Server", "[%s] %v", requestID, err)
		http.Error(w, msgMalformedRequest, http.StatusInternalServerError)
		return
	}

	result, err := s.syncer.Sync(req.Parent, req.Children)
	switch {
	case err == nil:
	case manifest.IsParseError(err):
		logging.Error("Server", err, "[%s] Problem with manifest templates", requestID)
		http.Error(w, msgTemplateProblem, http.StatusInternalServerError)
		return
	case api.IsMalformedRequest(err):
		logging.Warn("Server", "[%s] %v", requestID, err)
		http.Error(w, msgMalformedRequest, http.StatusInternalServerError)
		return
	default:
		logging.Error("Server", err, "[%s] Sync failed", requestID)
		http.Error(w, msgInternalError, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.checker.Validate(); err != nil {
		logging.Warn("Server", "[%s] Readiness check failed: %v", RequestIDFromContext(r.Context()), err)
		http.Error(w, msgNotReady, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		logging.Error("Server", err, "Failed to encode response")
		http.Error(w, msgInternalError, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
