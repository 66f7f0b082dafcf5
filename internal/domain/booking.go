package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending  BookingStatus = "PENDING"
	BookingStatusAccepted BookingStatus = "ACCEPTED"
	BookingStatusRejected BookingStatus = "REJECTED"
	BookingStatusExpired  BookingStatus = "EXPIRED"
)

// Terminal reports whether the status admits no further transitions.
func (s BookingStatus) Terminal() bool {
	return s != BookingStatusPending
}

// Booking is a reservation request against an item. The temporal payload
// depends on the category: date-based bookings carry StartDate/EndDate,
// repeatable ones DeliveryDate/Quantity, single-use ones neither.
// Category is denormalized from the item at creation time and never changes.
type Booking struct {
	Code           string
	ItemCode       string
	Category       Category
	RequesterCode  string
	RequesterEmail string
	OwnerCode      string

	StartDate    *time.Time
	EndDate      *time.Time
	DeliveryDate *time.Time
	Quantity     *int

	Status    BookingStatus
	CreatedAt time.Time
}

// ExpiresAt is the instant after which a pending booking is considered
// abandoned and may be swept.
func (b Booking) ExpiresAt(window time.Duration) time.Time {
	return b.CreatedAt.Add(window)
}

// Decidable reports whether the booking can still be accepted: it must be
// pending and inside the expiry window.
func (b Booking) Decidable(now time.Time, window time.Duration) bool {
	return b.Status == BookingStatusPending && now.Before(b.ExpiresAt(window))
}

// Overlaps reports whether two inclusive date ranges share at least one
// day. Adjacent ranges (one ends the day before the other starts) do not
// overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// BookingPayload is the category-specific part of a booking request,
// validated as a whole before any booking is created.
type BookingPayload struct {
	StartDate    *time.Time
	EndDate      *time.Time
	DeliveryDate *time.Time
	Quantity     *int
}

// Validate checks the payload shape against the item category. today is a
// midnight-UTC calendar day; maxQuantity bounds repeatable orders.
func (p BookingPayload) Validate(category Category, today time.Time, maxQuantity int) error {
	switch category {
	case CategoryDateBased:
		if p.StartDate == nil || p.EndDate == nil {
			return ErrDatesRequired
		}
		if p.DeliveryDate != nil || p.Quantity != nil {
			return ErrUnexpectedFields
		}
		if p.StartDate.Before(today) {
			return ErrPastDate
		}
		if p.EndDate.Before(*p.StartDate) {
			return ErrInvalidDateRange
		}
	case CategoryRepeatable:
		if p.DeliveryDate == nil || p.Quantity == nil {
			return ErrOrderFieldsRequired
		}
		if p.StartDate != nil || p.EndDate != nil {
			return ErrUnexpectedFields
		}
		if p.DeliveryDate.Before(today) {
			return ErrPastDate
		}
		if *p.Quantity < 1 || *p.Quantity > maxQuantity {
			return ErrInvalidQuantity
		}
	case CategorySingleUse:
		if p.StartDate != nil || p.EndDate != nil || p.DeliveryDate != nil || p.Quantity != nil {
			return ErrUnexpectedFields
		}
	default:
		return ErrUnknownCategory
	}
	return nil
}

// BlockedPeriod is one calendar entry for an item. The guest view strips
// requester identity and the booking code.
type BlockedPeriod struct {
	BookingCode   string
	RequesterCode string
	StartDate     *time.Time
	EndDate       *time.Time
	Status        BookingStatus
}
