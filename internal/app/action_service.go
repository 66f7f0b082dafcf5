package app

import (
	"context"

	"github.com/oiueei/oiueei/internal/domain"
)

// BookingDecider is the slice of the booking engine the redemption path
// needs.
type BookingDecider interface {
	AcceptBooking(ctx context.Context, code string) (domain.Booking, error)
	RejectBooking(ctx context.Context, code string) (domain.Booking, error)
}

// TokenRedeemer consumes action tokens.
type TokenRedeemer interface {
	Redeem(ctx context.Context, code string) (domain.ActionToken, error)
}

// CollectionGateway is the collaborator surface for invite redemption.
type CollectionGateway interface {
	AddGuest(ctx context.Context, collectionCode, userCode string) error
}

// ActionService is the single entry point for every email-triggered
// action: it consumes the token and applies whatever the token encodes.
type ActionService struct {
	tokens      TokenRedeemer
	bookings    BookingDecider
	collections CollectionGateway
}

func NewActionService(tokens TokenRedeemer, bookings BookingDecider, collections CollectionGateway) *ActionService {
	return &ActionService{
		tokens:      tokens,
		bookings:    bookings,
		collections: collections,
	}
}

type RedeemResult struct {
	Action         domain.ActionKind
	RecipientCode  string
	RecipientEmail string
	Context        map[string]string
	// Booking is set for booking decisions.
	Booking *domain.Booking
	// CollectionCode is set for consumed invites.
	CollectionCode string
}

// Redeem consumes the token and dispatches on its action kind. The token
// is gone after this call whether or not the encoded action succeeds;
// a link is spent by following it.
func (s *ActionService) Redeem(ctx context.Context, code string) (RedeemResult, error) {
	token, err := s.tokens.Redeem(ctx, code)
	if err != nil {
		return RedeemResult{}, err
	}

	result := RedeemResult{
		Action:         token.Action,
		RecipientCode:  token.RecipientCode,
		RecipientEmail: token.RecipientEmail,
		Context:        token.Context,
	}

	switch token.Action {
	case domain.ActionBookingAccept:
		booking, err := s.bookings.AcceptBooking(ctx, token.TargetCode)
		if err != nil {
			return RedeemResult{}, err
		}
		result.Booking = &booking

	case domain.ActionBookingReject:
		booking, err := s.bookings.RejectBooking(ctx, token.TargetCode)
		if err != nil {
			return RedeemResult{}, err
		}
		result.Booking = &booking

	case domain.ActionCollectionInvite:
		if err := s.collections.AddGuest(ctx, token.TargetCode, token.RecipientCode); err != nil {
			return RedeemResult{}, err
		}
		result.CollectionCode = token.TargetCode

	case domain.ActionMagicLink:
		// Session issuance belongs to the auth collaborator; redemption
		// only proves possession and returns the descriptor.
	}

	return result, nil
}
