package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/calendarai/calendarai/internal/model"
)

type httpCall struct {
	method string
	route  string
	status int
}

type fakeHTTPRecorder struct {
	calls []httpCall
}

func (f *fakeHTTPRecorder) RecordHTTPRequest(method, route string, status int, _ time.Duration) {
	f.calls = append(f.calls, httpCall{method: method, route: route, status: status})
}

// TestRouterIntegration_MetricsUsesRoutePattern はメトリクスのラベルに
// chiのルートパターンが使われることを検証する。
func TestRouterIntegration_MetricsUsesRoutePattern(t *testing.T) {
	rec := &fakeHTTPRecorder{}

	r := chi.NewRouter()
	r.Use(NewMetricsMiddleware(rec))
	r.Get("/api/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/items/42", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	if len(rec.calls) != 2 {
		t.Fatalf("recorded %d calls, want 2", len(rec.calls))
	}
	if rec.calls[0] != (httpCall{method: "GET", route: "/api/items/{id}", status: http.StatusAccepted}) {
		t.Errorf("first call = %+v", rec.calls[0])
	}
	if rec.calls[1].route != "unmatched" || rec.calls[1].status != http.StatusNotFound {
		t.Errorf("second call = %+v, want unmatched 404", rec.calls[1])
	}
}

// TestRouterIntegration_ProtectedRoute_WithMiddlewareChain は
// Session -> RateLimit -> CSRF のミドルウェアチェーンがchi.Routerで正しく動作することを検証する。
func TestRouterIntegration_ProtectedRoute_WithMiddlewareChain(t *testing.T) {
	reader := cookieReader("router-test-session", &model.SessionClaims{UserID: "user-router-test"})
	rl := NewRateLimiter(DefaultRateLimiterConfig())
	defer rl.Stop()

	csrfConfig := CSRFConfig{}

	r := chi.NewRouter()
	r.Get("/api/csrf-token", NewCSRFTokenHandler(csrfConfig).ServeHTTP)
	r.Group(func(r chi.Router) {
		r.Use(NewSessionMiddleware(reader))
		r.Use(rl.GeneralMiddleware())
		r.Use(NewCSRFMiddleware(csrfConfig))
		r.Post("/api/protected", func(w http.ResponseWriter, r *http.Request) {
			userID, _ := UserIDFromContext(r.Context())
			w.Write([]byte(userID))
		})
	})

	t.Run("no session", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/protected", nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("session without csrf token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/protected", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "router-test-session"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})

	t.Run("session with csrf token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/protected", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "router-test-session"})
		req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "tok"})
		req.Header.Set("X-CSRF-Token", "tok")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
		if w.Body.String() != "user-router-test" {
			t.Errorf("body = %q, want user-router-test", w.Body.String())
		}
	})
}
