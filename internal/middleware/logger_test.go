package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLogger_AssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	var scoped *slog.Logger
	handler := Logger(base, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scoped = LoggerFrom(r.Context(), nil)
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	id := w.Header().Get(RequestIDHeader)
	if id == "" {
		t.Fatal("Expected a request id header")
	}
	if scoped == nil {
		t.Fatal("Expected a request-scoped logger in the context")
	}
	out := buf.String()
	if !strings.Contains(out, "request_id="+id) {
		t.Errorf("Expected log line with request id, got %q", out)
	}
	if !strings.Contains(out, "status=418") {
		t.Errorf("Expected status in log line, got %q", out)
	}
}

func TestLogger_KeepsIncomingRequestID(t *testing.T) {
	base := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	handler := Logger(base, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("Expected incoming id to be kept, got %q", got)
	}
}

func TestLoggerFrom_Fallback(t *testing.T) {
	fallback := slog.Default()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if LoggerFrom(req.Context(), fallback) != fallback {
		t.Error("Expected fallback logger")
	}
}
