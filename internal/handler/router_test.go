package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ssato/usersvc/internal/metrics"
	"github.com/ssato/usersvc/internal/model"
)

// fakeHealthChecker はHealthCheckerのテスト実装。
type fakeHealthChecker struct {
	err error
}

func (f *fakeHealthChecker) PingContext(ctx context.Context) error {
	return f.err
}

func newTestRouter(svc UserServiceInterface, checker HealthChecker) http.Handler {
	reg := prometheus.NewRegistry()
	return NewRouter(&RouterDeps{
		HealthChecker: checker,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:       metrics.NewCollector(reg),
		Gatherer:      reg,
		UserService:   svc,
	})
}

// 全CRUDルートが配線されていることを検証する。
func TestNewRouter_UserRoutesWired(t *testing.T) {
	svc := &mockUserService{
		getFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Email: "a@b.com"}, nil
		},
	}
	router := newTestRouter(svc, &fakeHealthChecker{})

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodPost, "/usuarios", `{"email":"a@b.com"}`, http.StatusCreated},
		{http.MethodGet, "/usuarios", "", http.StatusOK},
		{http.MethodGet, "/usuarios/user-1", "", http.StatusOK},
		{http.MethodPut, "/usuarios/user-1", `{"name":"x"}`, http.StatusOK},
		{http.MethodDelete, "/usuarios/user-1", "", http.StatusNoContent},
	}

	for _, tt := range tests {
		var body *strings.Reader
		if tt.body != "" {
			body = strings.NewReader(tt.body)
		} else {
			body = strings.NewReader("")
		}

		req := httptest.NewRequest(tt.method, tt.path, body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != tt.want {
			t.Errorf("%s %s: status = %d, want %d", tt.method, tt.path, w.Code, tt.want)
		}
	}
}

func TestNewRouter_UnknownRouteReturns404(t *testing.T) {
	router := newTestRouter(&mockUserService{}, &fakeHealthChecker{})

	req := httptest.NewRequest(http.MethodGet, "/unknown", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestNewRouter_MethodNotAllowed(t *testing.T) {
	router := newTestRouter(&mockUserService{}, &fakeHealthChecker{})

	req := httptest.NewRequest(http.MethodPatch, "/usuarios/user-1", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}

// --- /health ---

func TestNewRouter_Health_OK(t *testing.T) {
	router := newTestRouter(&mockUserService{}, &fakeHealthChecker{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestNewRouter_Health_DBDown(t *testing.T) {
	router := newTestRouter(&mockUserService{}, &fakeHealthChecker{err: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

// --- /metrics ---

// リクエスト処理後に/metricsへリクエストメトリクスが現れることを検証する。
func TestNewRouter_MetricsExposed(t *testing.T) {
	router := newTestRouter(&mockUserService{}, &fakeHealthChecker{})

	// 計測対象のリクエストを1件流す
	req := httptest.NewRequest(http.MethodGet, "/usuarios", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "usersvc_http_requests_total") {
		t.Error("expected usersvc_http_requests_total in metrics output")
	}
}
