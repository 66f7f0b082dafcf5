package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRouter(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&stubBookingService{}, &stubActionService{}, &stubSweeper{})

	t.Run("health", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if rec.Body.String() != "ok" {
			t.Fatalf("expected ok body, got %q", rec.Body.String())
		}
	})

	t.Run("unknown path returns json 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/nope", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"not_found"`) {
			t.Fatalf("expected json error, got %q", rec.Body.String())
		}
	})

	t.Run("wrong method returns json 405", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/internal/sweep", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"method_not_allowed"`) {
			t.Fatalf("expected json error, got %q", rec.Body.String())
		}
	})
}
