package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/oiueei/oiueei/internal/clock"
	"github.com/oiueei/oiueei/internal/domain"
	"github.com/oiueei/oiueei/internal/notify"
)

type BookingRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateBooking(ctx context.Context, booking domain.Booking) error
	GetBookingForUpdate(ctx context.Context, code string) (domain.Booking, error)
	// UpdateBookingStatus transitions code from one status to another. The
	// update is conditional on the current status still matching from;
	// a miss returns ErrBookingDecided.
	UpdateBookingStatus(ctx context.Context, code string, from, to domain.BookingStatus) error
	HasPendingBooking(ctx context.Context, itemCode string) (bool, error)
	// ListOpenBookings returns the item's PENDING and ACCEPTED bookings,
	// ordered by start date.
	ListOpenBookings(ctx context.Context, itemCode string) ([]domain.Booking, error)
}

// ItemGateway is the engine's entire surface on the reservable item. The
// item record itself belongs to the surrounding system.
type ItemGateway interface {
	// GetForUpdate locks the item row for the rest of the transaction,
	// serializing admission checks per item.
	GetForUpdate(ctx context.Context, code string) (domain.Item, error)
	SetStatus(ctx context.Context, code string, status domain.ItemStatus) error
	AppendDeal(ctx context.Context, code, userCode string) error
	CanView(ctx context.Context, code, userCode string) (bool, error)
}

// UserDirectory resolves a user code to a contact address.
type UserDirectory interface {
	EmailFor(ctx context.Context, userCode string) (string, error)
}

// Dispatcher accepts notification intents. Fire-and-forget from the
// engine's perspective.
type Dispatcher interface {
	Enqueue(ctx context.Context, n notify.Notification) error
}

// DecisionTokens mints the accept/reject token pair for an owner-facing
// booking decision.
type DecisionTokens interface {
	MintBookingDecision(ctx context.Context, booking domain.Booking, ownerEmail string) (accept, reject domain.ActionToken, err error)
}

const createAttempts = 3

type BookingService struct {
	repo       BookingRepository
	items      ItemGateway
	directory  UserDirectory
	tokens     DecisionTokens
	dispatcher Dispatcher
	clock      clock.Clock

	expiry        time.Duration
	maxQuantity   int
	actionBaseURL string
}

const (
	defaultBookingExpiry = 72 * time.Hour
	defaultMaxOrderQty   = 99
	defaultActionBaseURL = "http://localhost:3000/actions"
)

func NewBookingService(
	repo BookingRepository,
	items ItemGateway,
	directory UserDirectory,
	tokens DecisionTokens,
	dispatcher Dispatcher,
	clk clock.Clock,
	opts ...BookingServiceOption,
) *BookingService {
	svc := &BookingService{
		repo:          repo,
		items:         items,
		directory:     directory,
		tokens:        tokens,
		dispatcher:    dispatcher,
		clock:         clk,
		expiry:        defaultBookingExpiry,
		maxQuantity:   defaultMaxOrderQty,
		actionBaseURL: defaultActionBaseURL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type BookingServiceOption func(*BookingService)

// WithBookingExpiry overrides the window after which a pending booking
// stops being decidable.
func WithBookingExpiry(d time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithMaxOrderQuantity overrides the per-order quantity cap.
func WithMaxOrderQuantity(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.maxQuantity = n
		}
	}
}

// WithActionBaseURL overrides the public prefix used in decision links.
func WithActionBaseURL(u string) BookingServiceOption {
	return func(s *BookingService) {
		if u != "" {
			s.actionBaseURL = u
		}
	}
}

type RequestBookingInput struct {
	ItemCode      string
	RequesterCode string
	Payload       domain.BookingPayload
}

// RequestBooking admits a reservation request against the item's category
// rules and creates a PENDING booking. The whole admission check runs
// with the item row locked, so two concurrent requests for the same item
// are serialized. On success the owner is sent an accept/reject link
// pair; failures past the commit only lose the notification, never the
// booking.
func (s *BookingService) RequestBooking(ctx context.Context, in RequestBookingInput) (domain.Booking, error) {
	var (
		booking    domain.Booking
		ownerEmail string
	)

	run := func(code string) error {
		return s.repo.WithTx(ctx, func(txCtx context.Context) error {
			item, err := s.items.GetForUpdate(txCtx, in.ItemCode)
			if err != nil {
				return err
			}
			if !item.Visible {
				return domain.ErrNotInvited
			}
			canView, err := s.items.CanView(txCtx, item.Code, in.RequesterCode)
			if err != nil {
				return err
			}
			if !canView {
				return domain.ErrNotInvited
			}
			if item.OwnerCode == in.RequesterCode {
				return domain.ErrOwnItem
			}

			if err := in.Payload.Validate(item.Category, clock.Today(s.clock), s.maxQuantity); err != nil {
				return err
			}

			switch item.Category {
			case domain.CategorySingleUse:
				if item.Status != domain.ItemStatusActive {
					return domain.ErrItemUnavailable
				}
				pending, err := s.repo.HasPendingBooking(txCtx, item.Code)
				if err != nil {
					return err
				}
				if pending {
					return domain.ErrItemUnavailable
				}
			case domain.CategoryDateBased:
				if err := s.checkOverlap(txCtx, item.Code, in.Payload, ""); err != nil {
					return err
				}
			case domain.CategoryRepeatable:
				// No admission restriction beyond the payload check; the
				// same requester may hold several pending orders.
			}

			requesterEmail, err := s.directory.EmailFor(txCtx, in.RequesterCode)
			if err != nil {
				return err
			}
			ownerEmail, err = s.directory.EmailFor(txCtx, item.OwnerCode)
			if err != nil {
				return err
			}

			booking = domain.Booking{
				Code:           code,
				ItemCode:       item.Code,
				Category:       item.Category,
				RequesterCode:  in.RequesterCode,
				RequesterEmail: requesterEmail,
				OwnerCode:      item.OwnerCode,
				StartDate:      in.Payload.StartDate,
				EndDate:        in.Payload.EndDate,
				DeliveryDate:   in.Payload.DeliveryDate,
				Quantity:       in.Payload.Quantity,
				Status:         domain.BookingStatusPending,
				CreatedAt:      s.clock.Now(),
			}
			if err := s.repo.CreateBooking(txCtx, booking); err != nil {
				return err
			}

			if item.Category == domain.CategorySingleUse {
				if err := s.items.SetStatus(txCtx, item.Code, domain.ItemStatusTaken); err != nil {
					return err
				}
			}
			return nil
		})
	}

	// Code collisions abort the transaction, so the retry re-runs the
	// whole admission under a fresh code.
	var err error
	for attempt := 0; attempt < createAttempts; attempt++ {
		if err = run(newCode()); err != domain.ErrCodeCollision {
			break
		}
	}
	if err != nil {
		return domain.Booking{}, err
	}

	s.notifyOwner(ctx, booking, ownerEmail)
	return booking, nil
}

// AcceptBooking transitions a pending, unexpired booking to ACCEPTED.
// For date-based bookings the overlap check is re-run at accept time:
// a pending request whose window has since been granted to someone else
// can no longer be accepted.
func (s *BookingService) AcceptBooking(ctx context.Context, code string) (domain.Booking, error) {
	var booking domain.Booking

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		b, err := s.repo.GetBookingForUpdate(txCtx, code)
		if err != nil {
			return err
		}
		if b.Status != domain.BookingStatusPending {
			return domain.ErrBookingDecided
		}
		if !b.Decidable(s.clock.Now(), s.expiry) {
			return domain.ErrBookingExpired
		}

		if b.Category == domain.CategoryDateBased {
			// Lock the item row so the re-check is serialized against
			// concurrent admission on the same item.
			if _, err := s.items.GetForUpdate(txCtx, b.ItemCode); err != nil {
				return err
			}
			payload := domain.BookingPayload{StartDate: b.StartDate, EndDate: b.EndDate}
			if err := s.checkOverlap(txCtx, b.ItemCode, payload, b.Code); err != nil {
				return err
			}
		}

		if err := s.repo.UpdateBookingStatus(txCtx, code, domain.BookingStatusPending, domain.BookingStatusAccepted); err != nil {
			return err
		}

		if b.Category == domain.CategorySingleUse {
			if err := s.items.SetStatus(txCtx, b.ItemCode, domain.ItemStatusInactive); err != nil {
				return err
			}
			if err := s.items.AppendDeal(txCtx, b.ItemCode, b.RequesterCode); err != nil {
				return err
			}
		}

		booking = b
		booking.Status = domain.BookingStatusAccepted
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}

	s.notifyRequester(ctx, booking, notify.KindBookingAccepted)
	return booking, nil
}

// RejectBooking transitions a pending booking to REJECTED. Single-use
// items revert to ACTIVE; date ranges simply stop counting toward
// overlap.
func (s *BookingService) RejectBooking(ctx context.Context, code string) (domain.Booking, error) {
	booking, err := s.close(ctx, code, domain.BookingStatusRejected)
	if err != nil {
		return domain.Booking{}, err
	}
	s.notifyRequester(ctx, booking, notify.KindBookingRejected)
	return booking, nil
}

// ExpireBooking is the sweeper's transition: same effect as a rejection
// but the final state is EXPIRED and no party is notified.
func (s *BookingService) ExpireBooking(ctx context.Context, code string) (domain.Booking, error) {
	return s.close(ctx, code, domain.BookingStatusExpired)
}

func (s *BookingService) close(ctx context.Context, code string, to domain.BookingStatus) (domain.Booking, error) {
	var booking domain.Booking

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		b, err := s.repo.GetBookingForUpdate(txCtx, code)
		if err != nil {
			return err
		}
		if b.Status != domain.BookingStatusPending {
			return domain.ErrBookingDecided
		}

		if err := s.repo.UpdateBookingStatus(txCtx, code, domain.BookingStatusPending, to); err != nil {
			return err
		}

		if b.Category == domain.CategorySingleUse {
			if err := s.items.SetStatus(txCtx, b.ItemCode, domain.ItemStatusActive); err != nil {
				return err
			}
		}

		booking = b
		booking.Status = to
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return booking, nil
}

// BlockedPeriods returns the item's open bookings for calendar display.
// The owner sees requester identity and booking codes; guests only get
// the date range and status.
func (s *BookingService) BlockedPeriods(ctx context.Context, itemCode, viewerCode string) ([]domain.BlockedPeriod, error) {
	item, err := s.items.GetForUpdate(ctx, itemCode)
	if err != nil {
		return nil, err
	}
	isOwner := item.OwnerCode == viewerCode
	if !isOwner {
		canView, err := s.items.CanView(ctx, itemCode, viewerCode)
		if err != nil {
			return nil, err
		}
		if !canView {
			return nil, domain.ErrNotInvited
		}
	}

	open, err := s.repo.ListOpenBookings(ctx, itemCode)
	if err != nil {
		return nil, err
	}

	periods := make([]domain.BlockedPeriod, 0, len(open))
	for _, b := range open {
		p := domain.BlockedPeriod{
			StartDate: b.StartDate,
			EndDate:   b.EndDate,
			Status:    b.Status,
		}
		if isOwner {
			p.BookingCode = b.Code
			p.RequesterCode = b.RequesterCode
		}
		periods = append(periods, p)
	}
	return periods, nil
}

// checkOverlap scans the item's open bookings for an inclusive date-range
// intersection with the payload, ignoring excludeCode (used when a
// booking re-validates itself at accept time).
func (s *BookingService) checkOverlap(ctx context.Context, itemCode string, p domain.BookingPayload, excludeCode string) error {
	open, err := s.repo.ListOpenBookings(ctx, itemCode)
	if err != nil {
		return err
	}
	for _, other := range open {
		if other.Code == excludeCode {
			continue
		}
		if other.StartDate == nil || other.EndDate == nil {
			continue
		}
		if domain.Overlaps(*p.StartDate, *p.EndDate, *other.StartDate, *other.EndDate) {
			return domain.ErrDateOverlap
		}
	}
	return nil
}

func (s *BookingService) notifyOwner(ctx context.Context, booking domain.Booking, ownerEmail string) {
	accept, reject, err := s.tokens.MintBookingDecision(ctx, booking, ownerEmail)
	if err != nil {
		slog.Error("failed to mint decision tokens",
			slog.String("booking", booking.Code),
			slog.Any("error", err),
		)
		return
	}

	n := ownerRequestNotification(booking, ownerEmail, s.actionBaseURL, accept.Code, reject.Code, s.clock.Now())
	if err := s.dispatcher.Enqueue(ctx, n); err != nil {
		slog.Error("failed to enqueue owner notification",
			slog.String("booking", booking.Code),
			slog.Any("error", err),
		)
	}
}

func (s *BookingService) notifyRequester(ctx context.Context, booking domain.Booking, kind notify.Kind) {
	n := requesterDecisionNotification(booking, kind, s.clock.Now())
	if err := s.dispatcher.Enqueue(ctx, n); err != nil {
		slog.Error("failed to enqueue requester notification",
			slog.String("booking", booking.Code),
			slog.Any("error", err),
		)
	}
}
