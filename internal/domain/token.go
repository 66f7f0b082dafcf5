package domain

import "time"

// ActionKind names the privileged action a token stands in for.
// The set is extensible; redemption dispatches on it.
type ActionKind string

const (
	ActionMagicLink        ActionKind = "MAGIC_LINK"
	ActionCollectionInvite ActionKind = "COLLECTION_INVITE"
	ActionBookingAccept    ActionKind = "BOOKING_ACCEPT"
	ActionBookingReject    ActionKind = "BOOKING_REJECT"
)

// ActionToken is a single-use, time-boxed capability. Its code is the only
// identifier that ever appears in an outbound link; the real target code
// stays server-side. A token is deleted on first successful redemption or
// on the failure path once expired.
type ActionToken struct {
	Code           string
	Action         ActionKind
	TargetCode     string
	RecipientCode  string
	RecipientEmail string
	Context        map[string]string
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// Expired reports whether the token is past its window at now.
func (t ActionToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
