// Package notify decouples outbound mail from booking transitions.
// Services enqueue a notification intent; delivery happens asynchronously
// from a Redis-backed outbox so a slow or failing mail hop never blocks
// or corrupts a state transition.
package notify

import "time"

type Kind string

const (
	KindBookingRequested Kind = "BOOKING_REQUESTED"
	KindBookingAccepted  Kind = "BOOKING_ACCEPTED"
	KindBookingRejected  Kind = "BOOKING_REJECTED"
)

// Notification is one outbound message intent. Subject and Body are
// final rendered content; the outbox does not know about bookings.
type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
