package httpapi

import (
	"net/http"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger_EmitsCanonicalLine(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	env := newTestEnvWithLogger(t, zap.New(core))

	resp := doJSON(t, http.MethodGet, env.server.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("http_request entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/healthz" || fields["status"] != int64(http.StatusOK) {
		t.Errorf("fields = %+v", fields)
	}
	if fields["request_id"] == "" {
		t.Error("request_id missing from canonical line")
	}
}

func TestDomainErrorsUseRequestScopedLogger(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	env := newTestEnvWithLogger(t, zap.New(core))

	resp := doJSON(t, http.MethodGet, env.server.URL+"/api/v1/resources/missing", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}

	entries := logs.FilterMessage("domain error").All()
	if len(entries) != 1 {
		t.Fatalf("domain error entries = %d, want 1", len(entries))
	}
	if _, ok := entries[0].ContextMap()["request_id"]; !ok {
		t.Error("domain error log not request-scoped: request_id field missing")
	}
}
