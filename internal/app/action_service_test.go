package app

import (
	"context"
	"testing"
	"time"

	"github.com/oiueei/oiueei/internal/clock"
	"github.com/oiueei/oiueei/internal/domain"
)

func TestActionService_Redeem(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	item := domain.Item{Code: "ITEM01", OwnerCode: "OWNER1", Category: domain.CategoryDateBased, Status: domain.ItemStatusActive, Visible: true}
	pending := domain.Booking{
		Code: "BOOK01", ItemCode: "ITEM01", Category: domain.CategoryDateBased,
		RequesterCode: "GUEST1", RequesterEmail: "guest@example.com", OwnerCode: "OWNER1",
		StartDate: day(2025, 6, 10), EndDate: day(2025, 6, 12),
		Status: domain.BookingStatusPending, CreatedAt: now.Add(-time.Hour),
	}

	setup := func(bookings []domain.Booking) (*ActionService, fixture, *fakeTokenRepo, *fakeCollections) {
		f := newFixture(now, []domain.Item{item}, bookings)
		tokenRepo := newFakeTokenRepo()
		tokens := NewTokenService(tokenRepo, clock.NewFixed(now))
		collections := &fakeCollections{guests: make(map[string][]string)}
		svc := NewActionService(tokens, f.svc, collections)
		return svc, f, tokenRepo, collections
	}

	t.Run("accept link decides the booking", func(t *testing.T) {
		svc, f, tokenRepo, _ := setup([]domain.Booking{pending})
		tokenRepo.tokens["TOK001"] = domain.ActionToken{
			Code: "TOK001", Action: domain.ActionBookingAccept, TargetCode: "BOOK01",
			RecipientCode: "OWNER1", ExpiresAt: now.Add(time.Hour),
		}

		result, err := svc.Redeem(context.Background(), "TOK001")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Action != domain.ActionBookingAccept {
			t.Fatalf("expected accept action, got %s", result.Action)
		}
		if result.Booking == nil || result.Booking.Status != domain.BookingStatusAccepted {
			t.Fatalf("expected accepted booking in result, got %+v", result.Booking)
		}
		if got := f.repo.bookings["BOOK01"].Status; got != domain.BookingStatusAccepted {
			t.Fatalf("expected booking ACCEPTED, got %s", got)
		}
	})

	t.Run("reject link decides the booking", func(t *testing.T) {
		svc, f, tokenRepo, _ := setup([]domain.Booking{pending})
		tokenRepo.tokens["TOK002"] = domain.ActionToken{
			Code: "TOK002", Action: domain.ActionBookingReject, TargetCode: "BOOK01",
			RecipientCode: "OWNER1", ExpiresAt: now.Add(time.Hour),
		}

		result, err := svc.Redeem(context.Background(), "TOK002")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Booking == nil || result.Booking.Status != domain.BookingStatusRejected {
			t.Fatalf("expected rejected booking, got %+v", result.Booking)
		}
		if got := f.repo.bookings["BOOK01"].Status; got != domain.BookingStatusRejected {
			t.Fatalf("expected booking REJECTED, got %s", got)
		}
	})

	t.Run("token is spent even when the decision fails", func(t *testing.T) {
		decided := pending
		decided.Status = domain.BookingStatusRejected
		svc, _, tokenRepo, _ := setup([]domain.Booking{decided})
		tokenRepo.tokens["TOK003"] = domain.ActionToken{
			Code: "TOK003", Action: domain.ActionBookingAccept, TargetCode: "BOOK01",
			RecipientCode: "OWNER1", ExpiresAt: now.Add(time.Hour),
		}

		_, err := svc.Redeem(context.Background(), "TOK003")
		if err != domain.ErrBookingDecided {
			t.Fatalf("expected ErrBookingDecided, got %v", err)
		}
		if _, ok := tokenRepo.tokens["TOK003"]; ok {
			t.Fatalf("expected token consumed")
		}
	})

	t.Run("sibling token fails after the pair is decided", func(t *testing.T) {
		svc, _, tokenRepo, _ := setup([]domain.Booking{pending})
		tokenRepo.tokens["TOK004"] = domain.ActionToken{
			Code: "TOK004", Action: domain.ActionBookingAccept, TargetCode: "BOOK01",
			RecipientCode: "OWNER1", ExpiresAt: now.Add(time.Hour),
		}
		tokenRepo.tokens["TOK005"] = domain.ActionToken{
			Code: "TOK005", Action: domain.ActionBookingReject, TargetCode: "BOOK01",
			RecipientCode: "OWNER1", ExpiresAt: now.Add(time.Hour),
		}

		if _, err := svc.Redeem(context.Background(), "TOK004"); err != nil {
			t.Fatalf("accept: %v", err)
		}
		_, err := svc.Redeem(context.Background(), "TOK005")
		if err != domain.ErrBookingDecided {
			t.Fatalf("expected ErrBookingDecided from sibling, got %v", err)
		}
	})

	t.Run("collection invite adds the recipient as guest", func(t *testing.T) {
		svc, _, tokenRepo, collections := setup(nil)
		tokenRepo.tokens["TOK006"] = domain.ActionToken{
			Code: "TOK006", Action: domain.ActionCollectionInvite, TargetCode: "COLL01",
			RecipientCode: "GUEST2", ExpiresAt: now.Add(time.Hour),
		}

		result, err := svc.Redeem(context.Background(), "TOK006")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.CollectionCode != "COLL01" {
			t.Fatalf("expected collection code, got %q", result.CollectionCode)
		}
		if got := collections.guests["COLL01"]; len(got) != 1 || got[0] != "GUEST2" {
			t.Fatalf("expected guest added, got %+v", got)
		}
	})

	t.Run("magic link only proves possession", func(t *testing.T) {
		svc, _, tokenRepo, collections := setup(nil)
		tokenRepo.tokens["TOK007"] = domain.ActionToken{
			Code: "TOK007", Action: domain.ActionMagicLink, TargetCode: "USER01",
			RecipientCode: "GUEST1", RecipientEmail: "guest@example.com",
			ExpiresAt: now.Add(time.Hour),
		}

		result, err := svc.Redeem(context.Background(), "TOK007")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Action != domain.ActionMagicLink || result.RecipientCode != "GUEST1" {
			t.Fatalf("unexpected result: %+v", result)
		}
		if result.Booking != nil || result.CollectionCode != "" {
			t.Fatalf("expected descriptor only, got %+v", result)
		}
		if len(collections.guests) != 0 {
			t.Fatalf("magic link must not touch collections")
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		svc, _, _, _ := setup(nil)

		_, err := svc.Redeem(context.Background(), "NOPE")
		if err != domain.ErrTokenNotFound {
			t.Fatalf("expected ErrTokenNotFound, got %v", err)
		}
	})
}

type fakeCollections struct {
	guests map[string][]string
}

func (f *fakeCollections) AddGuest(_ context.Context, collectionCode, userCode string) error {
	f.guests[collectionCode] = append(f.guests[collectionCode], userCode)
	return nil
}
