package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/oiueei/oiueei/internal/app"
	"github.com/oiueei/oiueei/internal/domain"
)

type stubActionService struct {
	result app.RedeemResult
	err    error

	gotCode string
}

func (s *stubActionService) Redeem(_ context.Context, code string) (app.RedeemResult, error) {
	s.gotCode = code
	return s.result, s.err
}

func TestHandleRedeemAction(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	booking := domain.Booking{
		Code:      "BOOK01",
		ItemCode:  "ITEM01",
		Category:  domain.CategorySingleUse,
		Status:    domain.BookingStatusAccepted,
		CreatedAt: created,
	}

	t.Run("accept link returns the decided booking", func(t *testing.T) {
		t.Parallel()
		svc := &stubActionService{result: app.RedeemResult{
			Action:        domain.ActionBookingAccept,
			RecipientCode: "OWNER1",
			Booking:       &booking,
		}}
		router := newTestRouter(&stubBookingService{}, svc, nil)

		req := httptest.NewRequest(http.MethodGet, "/actions/TOK001", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		if svc.gotCode != "TOK001" {
			t.Fatalf("expected token code passed through, got %q", svc.gotCode)
		}
		body := rec.Body.String()
		for _, want := range []string{`"action":"BOOKING_ACCEPT"`, `"code":"BOOK01"`, `"status":"ACCEPTED"`} {
			if !strings.Contains(body, want) {
				t.Fatalf("expected %q in %q", want, body)
			}
		}
	})

	t.Run("invite link returns the collection", func(t *testing.T) {
		t.Parallel()
		svc := &stubActionService{result: app.RedeemResult{
			Action:         domain.ActionCollectionInvite,
			RecipientCode:  "GUEST1",
			CollectionCode: "COLL01",
		}}
		router := newTestRouter(&stubBookingService{}, svc, nil)

		req := httptest.NewRequest(http.MethodGet, "/actions/TOK002", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"collection_code":"COLL01"`) {
			t.Fatalf("expected collection code, got %q", rec.Body.String())
		}
		if strings.Contains(rec.Body.String(), `"booking"`) {
			t.Fatalf("expected no booking in invite response, got %q", rec.Body.String())
		}
	})

	t.Run("spent and expired links look the same", func(t *testing.T) {
		t.Parallel()
		for _, serviceErr := range []error{domain.ErrTokenNotFound, domain.ErrTokenExpired} {
			svc := &stubActionService{err: serviceErr}
			router := newTestRouter(&stubBookingService{}, svc, nil)

			req := httptest.NewRequest(http.MethodGet, "/actions/TOK003", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusGone {
				t.Fatalf("expected 410 for %v, got %d", serviceErr, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), `"link_no_longer_valid"`) {
				t.Fatalf("expected uniform link error, got %q", rec.Body.String())
			}
		}
	})

	t.Run("already decided booking", func(t *testing.T) {
		t.Parallel()
		svc := &stubActionService{err: domain.ErrBookingDecided}
		router := newTestRouter(&stubBookingService{}, svc, nil)

		req := httptest.NewRequest(http.MethodGet, "/actions/TOK004", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("stale booking", func(t *testing.T) {
		t.Parallel()
		svc := &stubActionService{err: domain.ErrBookingExpired}
		router := newTestRouter(&stubBookingService{}, svc, nil)

		req := httptest.NewRequest(http.MethodGet, "/actions/TOK005", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusGone {
			t.Fatalf("expected 410, got %d", rec.Code)
		}
	})

	t.Run("internal error", func(t *testing.T) {
		t.Parallel()
		svc := &stubActionService{err: errors.New("boom")}
		router := newTestRouter(&stubBookingService{}, svc, nil)

		req := httptest.NewRequest(http.MethodGet, "/actions/TOK006", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}
