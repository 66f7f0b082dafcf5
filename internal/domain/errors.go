package domain

import "errors"

var (
	// Invalid actor.
	ErrOwnItem    = errors.New("cannot request your own item")
	ErrNotInvited = errors.New("not authorized to view this item")

	// Invalid payload.
	ErrDatesRequired       = errors.New("start and end dates are required")
	ErrOrderFieldsRequired = errors.New("delivery date and quantity are required")
	ErrUnexpectedFields    = errors.New("payload fields do not match item category")
	ErrPastDate            = errors.New("date must be today or later")
	ErrInvalidDateRange    = errors.New("end date precedes start date")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrUnknownCategory     = errors.New("unknown item category")

	// Conflict.
	ErrItemUnavailable = errors.New("item is not available for reservation")
	ErrDateOverlap     = errors.New("dates overlap with an existing booking")

	// Invalid transition.
	ErrBookingDecided = errors.New("booking already decided")

	// Not found.
	ErrItemNotFound    = errors.New("item not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrTokenNotFound   = errors.New("token not found")
	ErrUserNotFound    = errors.New("user not found")

	// Expired.
	ErrBookingExpired = errors.New("booking expired")
	ErrTokenExpired   = errors.New("token expired")

	ErrCodeCollision = errors.New("code already in use")
)
