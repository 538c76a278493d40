package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resource-dispatcher/internal/api"
	"resource-dispatcher/internal/config"
	"resource-dispatcher/internal/manifest"
	"resource-dispatcher/internal/reconciler"
)

const testLabel = "test.label"

func writeSecrets(t *testing.T, root string, names ...string) {
	t.Helper()
	dir := filepath.Join(root, "secrets")
	require.NoError(t, os.MkdirAll(dir, 0755))
	for _, name := range names {
		content := "apiVersion: v1\nkind: Secret\nmetadata:\n  name: " + name + "\nstringData:\n  AWS_ACCESS_KEY_ID: value\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(content), 0644))
	}
}

func newTestServer(t *testing.T, root string) *Server {
	t.Helper()
	source := manifest.NewStaticSource(root, config.DefaultKinds())
	engine := reconciler.NewEngine(reconciler.Config{Label: testLabel, ResyncAfterSeconds: 10}, source)
	return New(Options{}, engine, source)
}

func post(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/sync", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSync_Scenarios(t *testing.T) {
	root := t.TempDir()
	writeSecrets(t, root, "mlpipeline-minio-artifact", "mlpipeline-minio-artifact2")
	handler := newTestServer(t, root).Handler()

	tests := []struct {
		name       string
		body       string
		wantStatus map[string]interface{}
		children   int
		wantResync bool
	}{
		{
			name:       "not ready",
			body:       `{"parent": {"metadata": {"name": "someName", "labels": {"test.label": "true"}}}, "children": {"Secret.v1": []}}`,
			wantStatus: map[string]interface{}{"resources-ready": "False"},
			children:   2,
			wantResync: true,
		},
		{
			name:       "ready",
			body:       `{"parent": {"metadata": {"name": "someName", "labels": {"test.label": "true"}}}, "children": {"Secret.v1": [{}, {}]}}`,
			wantStatus: map[string]interface{}{"resources-ready": "True"},
			children:   2,
		},
		{
			name:       "ready with children keyed by name",
			body:       `{"parent": {"metadata": {"name": "someName", "labels": {"test.label": "true"}}}, "children": {"Secret.v1": {"a": {}, "b": {}}}}`,
			wantStatus: map[string]interface{}{"resources-ready": "True"},
			children:   2,
		},
		{
			name:       "gated off",
			body:       `{"parent": {"metadata": {"name": "someName", "labels": {"test.label": "false"}}}, "children": {"Secret.v1": []}}`,
			wantStatus: map[string]interface{}{},
			children:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, handler, tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			body := decodeResult(t, rec)
			assert.Equal(t, tt.wantStatus, body["status"])
			children, ok := body["children"].([]interface{})
			require.True(t, ok, "children must be a JSON array")
			assert.Len(t, children, tt.children)
			for _, child := range children {
				metadata := child.(map[string]interface{})["metadata"].(map[string]interface{})
				assert.Equal(t, "someName", metadata["namespace"])
			}

			resync, hasResync := body["resyncAfterSeconds"]
			assert.Equal(t, tt.wantResync, hasResync)
			if hasResync {
				assert.Equal(t, float64(10), resync)
			}
		})
	}
}

func TestSync_TemplateProblem(t *testing.T) {
	root := t.TempDir()
	writeSecrets(t, root, "good")
	require.NoError(t, os.WriteFile(filepath.Join(root, "secrets", "bad.yaml"), []byte("metadata: [secret-value\n"), 0644))
	handler := newTestServer(t, root).Handler()

	rec := post(t, handler, `{"parent": {"metadata": {"name": "ns", "labels": {"test.label": "true"}}}, "children": {"Secret.v1": []}}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Problem with manifest templates", strings.TrimSpace(rec.Body.String()))
	assert.NotContains(t, rec.Body.String(), "secret-value")
}

func TestReadyz_LabelDependentTemplates(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "secrets"), 0755))
	content := "apiVersion: v1\nkind: Secret\nmetadata:\n  name: team\nstringData:\n  team: {{ .labels.team }}\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "secrets", "team.yaml.j2"), []byte(content), 0644))

	source := manifest.NewTemplateSource(root, config.DefaultKinds())
	engine := reconciler.NewEngine(reconciler.Config{Label: testLabel, ResyncAfterSeconds: 10}, source)
	handler := New(Options{}, engine, source).Handler()

	rec := post(t, handler, `{"parent": {"metadata": {"name": "ns", "labels": {"test.label": "true", "team": "a"}}}, "children": {"Secret.v1": []}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"team":"a"`)

	ready := httptest.NewRecorder()
	handler.ServeHTTP(ready, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, ready.Code, ready.Body.String())

	// Broken syntax still fails readiness
	require.NoError(t, os.WriteFile(filepath.Join(root, "secrets", "broken.yaml.j2"), []byte("name: {{ namespace \n"), 0644))
	ready = httptest.NewRecorder()
	handler.ServeHTTP(ready, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, ready.Code)
}

func TestSync_Malformed(t *testing.T) {
	root := t.TempDir()
	writeSecrets(t, root, "a")
	handler := newTestServer(t, root).Handler()

	tests := map[string]string{
		"invalid json":        `{"parent":`,
		"missing parent":      `{"children": {}}`,
		"missing children":    `{"parent": {"metadata": {"name": "ns", "labels": {"test.label": "true"}}}}`,
		"tracked kind absent": `{"parent": {"metadata": {"name": "ns", "labels": {"test.label": "true"}}}, "children": {}}`,
		"empty name":          `{"parent": {"metadata": {"labels": {"test.label": "true"}}}, "children": {"Secret.v1": []}}`,
		"children not a list": `{"parent": {"metadata": {"name": "ns"}}, "children": {"Secret.v1": 3}}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			rec := post(t, handler, body)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, "Malformed sync request", strings.TrimSpace(rec.Body.String()))
		})
	}
}

type failingSyncer struct{ err error }

func (f failingSyncer) Sync(*api.ParentResource, api.ObservedChildren) (*api.SyncResult, error) {
	return nil, f.err
}

type staticChecker struct{ err error }

func (c staticChecker) Validate() error { return c.err }

func TestSync_InternalError(t *testing.T) {
	handler := New(Options{}, failingSyncer{err: errors.New("disk on fire")}, staticChecker{}).Handler()

	rec := post(t, handler, `{"parent": {"metadata": {"name": "ns"}}, "children": {}}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
}

func TestSync_BodyTooLarge(t *testing.T) {
	handler := New(Options{}, failingSyncer{}, staticChecker{}).Handler()

	body := `{"parent": {"metadata": {"name": "` + strings.Repeat("x", MaxRequestBodyBytes) + `"}}, "children": {}}`
	rec := post(t, handler, body)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Malformed sync request", strings.TrimSpace(rec.Body.String()))
}

func TestRoutes(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		checker  Checker
		expected int
	}{
		{name: "healthz", method: http.MethodGet, path: "/healthz", checker: staticChecker{}, expected: http.StatusOK},
		{name: "readyz ok", method: http.MethodGet, path: "/readyz", checker: staticChecker{}, expected: http.StatusOK},
		{name: "readyz failing", method: http.MethodGet, path: "/readyz", checker: staticChecker{err: errors.New("bad")}, expected: http.StatusServiceUnavailable},
		{name: "metrics", method: http.MethodGet, path: "/metrics", checker: staticChecker{}, expected: http.StatusOK},
		{name: "get on sync path", method: http.MethodGet, path: "/sync", checker: staticChecker{}, expected: http.StatusMethodNotAllowed},
		{name: "put", method: http.MethodPut, path: "/", checker: staticChecker{}, expected: http.StatusMethodNotAllowed},
		{name: "delete healthz", method: http.MethodDelete, path: "/healthz", checker: staticChecker{}, expected: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := New(Options{}, failingSyncer{}, tt.checker).Handler()
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.expected {
				t.Errorf("expected status %d, got %d", tt.expected, rec.Code)
			}
		})
	}
}

func TestMetricsExposeSyncCounters(t *testing.T) {
	root := t.TempDir()
	writeSecrets(t, root, "a")
	handler := newTestServer(t, root).Handler()
	post(t, handler, `{"parent": {"metadata": {"name": "ns"}}, "children": {}}`)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "resource_dispatcher_sync_total")
	assert.Contains(t, rec.Body.String(), `resource_dispatcher_http_requests_total{code="200",handler="sync",method="post"}`)
}

func TestRequestID(t *testing.T) {
	handler := New(Options{}, failingSyncer{}, staticChecker{}).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	generated := rec.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestServe_GracefulShutdown(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	listening := make(chan net.Addr, 1)
	srv := New(Options{OnListening: func(addr net.Addr) { listening <- addr }}, failingSyncer{}, staticChecker{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, listener) }()

	addr := <-listening
	resp, err := http.Get("http://" + addr.String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
