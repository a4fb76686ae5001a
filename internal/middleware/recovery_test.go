package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// panicするハンドラーが500に変換され、プロセスが落ちないことを検証する。
func TestRecoveryMiddleware_PanicBecomes500(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	wrapped := NewRecoveryMiddleware()(next)

	req := httptest.NewRequest(http.MethodGet, "/usuarios", nil)
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if !strings.Contains(w.Body.String(), `"error"`) {
		t.Errorf("body = %s, want JSON error envelope", w.Body.String())
	}
}

// 正常なハンドラーには影響しないことを検証する。
func TestRecoveryMiddleware_PassThrough(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	wrapped := NewRecoveryMiddleware()(next)

	req := httptest.NewRequest(http.MethodDelete, "/usuarios/user-1", nil)
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
}
