package app

import (
	"context"
	"strconv"
	"time"

	"github.com/oiueei/oiueei/internal/clock"
	"github.com/oiueei/oiueei/internal/domain"
)

type TokenRepository interface {
	// CreateToken inserts a token; a code already in use returns
	// ErrCodeCollision.
	CreateToken(ctx context.Context, token domain.ActionToken) error
	// DeleteToken removes the token and returns it in one atomic step,
	// or (nil, nil) when the code does not exist.
	DeleteToken(ctx context.Context, code string) (*domain.ActionToken, error)
}

// TokenService mints and redeems single-use action tokens. A token stands
// in for one privileged action on one target for one recipient; internal
// codes never appear in outbound links.
type TokenService struct {
	repo  TokenRepository
	clock clock.Clock
	ttl   time.Duration
}

const defaultTokenTTL = 24 * time.Hour

func NewTokenService(repo TokenRepository, clk clock.Clock, opts ...TokenServiceOption) *TokenService {
	svc := &TokenService{
		repo:  repo,
		clock: clk,
		ttl:   defaultTokenTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type TokenServiceOption func(*TokenService)

// WithTokenTTL overrides the default expiry window for new tokens.
func WithTokenTTL(d time.Duration) TokenServiceOption {
	return func(s *TokenService) {
		if d > 0 {
			s.ttl = d
		}
	}
}

type MintInput struct {
	Action         domain.ActionKind
	TargetCode     string
	RecipientCode  string
	RecipientEmail string
	Context        map[string]string
	// TTL overrides the service default when positive.
	TTL time.Duration
}

// Mint creates a token, retrying with a fresh code on collision. The
// retry loop covers random-code collisions, not a uniqueness proof.
func (s *TokenService) Mint(ctx context.Context, in MintInput) (domain.ActionToken, error) {
	now := s.clock.Now()
	ttl := s.ttl
	if in.TTL > 0 {
		ttl = in.TTL
	}

	token := domain.ActionToken{
		Action:         in.Action,
		TargetCode:     in.TargetCode,
		RecipientCode:  in.RecipientCode,
		RecipientEmail: in.RecipientEmail,
		Context:        in.Context,
		CreatedAt:      now,
		ExpiresAt:      now.Add(ttl),
	}

	var err error
	for attempt := 0; attempt < createAttempts; attempt++ {
		token.Code = newCode()
		if err = s.repo.CreateToken(ctx, token); err != domain.ErrCodeCollision {
			break
		}
	}
	if err != nil {
		return domain.ActionToken{}, err
	}
	return token, nil
}

// MintBookingDecision mints the accept/reject pair for an owner-facing
// booking decision. Both tokens target the same booking but carry
// different action kinds, so one booking yields two independent,
// mutually exclusive capabilities.
func (s *TokenService) MintBookingDecision(ctx context.Context, booking domain.Booking, ownerEmail string) (accept, reject domain.ActionToken, err error) {
	payload := bookingContext(booking)

	accept, err = s.Mint(ctx, MintInput{
		Action:         domain.ActionBookingAccept,
		TargetCode:     booking.Code,
		RecipientCode:  booking.OwnerCode,
		RecipientEmail: ownerEmail,
		Context:        payload,
	})
	if err != nil {
		return domain.ActionToken{}, domain.ActionToken{}, err
	}

	reject, err = s.Mint(ctx, MintInput{
		Action:         domain.ActionBookingReject,
		TargetCode:     booking.Code,
		RecipientCode:  booking.OwnerCode,
		RecipientEmail: ownerEmail,
		Context:        payload,
	})
	if err != nil {
		return domain.ActionToken{}, domain.ActionToken{}, err
	}
	return accept, reject, nil
}

// Redeem consumes a token. Deletion and read happen in the same atomic
// step, so two near-simultaneous redemptions of the same code cannot
// both succeed. An expired token is deleted on the failure path too,
// leaving nothing to retry against.
func (s *TokenService) Redeem(ctx context.Context, code string) (domain.ActionToken, error) {
	token, err := s.repo.DeleteToken(ctx, code)
	if err != nil {
		return domain.ActionToken{}, err
	}
	if token == nil {
		return domain.ActionToken{}, domain.ErrTokenNotFound
	}
	if token.Expired(s.clock.Now()) {
		return domain.ActionToken{}, domain.ErrTokenExpired
	}
	return *token, nil
}

const dateLayout = "2006-01-02"

func bookingContext(b domain.Booking) map[string]string {
	payload := map[string]string{
		"item_code":       b.ItemCode,
		"category":        string(b.Category),
		"requester_code":  b.RequesterCode,
		"requester_email": b.RequesterEmail,
	}
	if b.StartDate != nil {
		payload["start_date"] = b.StartDate.Format(dateLayout)
	}
	if b.EndDate != nil {
		payload["end_date"] = b.EndDate.Format(dateLayout)
	}
	if b.DeliveryDate != nil {
		payload["delivery_date"] = b.DeliveryDate.Format(dateLayout)
	}
	if b.Quantity != nil {
		payload["quantity"] = strconv.Itoa(*b.Quantity)
	}
	return payload
}
