package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oiueei/oiueei/internal/domain"
	"github.com/oiueei/oiueei/internal/notify"
)

// ownerRequestNotification renders the email that asks the owner to
// decide on a new booking. The links carry token codes only; booking and
// item codes stay server-side.
func ownerRequestNotification(b domain.Booking, ownerEmail, baseURL, acceptCode, rejectCode string, now time.Time) notify.Notification {
	acceptLink := fmt.Sprintf("%s/%s", baseURL, acceptCode)
	rejectLink := fmt.Sprintf("%s/%s", baseURL, rejectCode)

	var subject, detail string
	switch b.Category {
	case domain.CategoryDateBased:
		subject = "New reservation request"
		detail = fmt.Sprintf("from %s to %s",
			b.StartDate.Format(dateLayout), b.EndDate.Format(dateLayout))
	case domain.CategoryRepeatable:
		subject = "New order request"
		detail = fmt.Sprintf("%dx for delivery on %s",
			*b.Quantity, b.DeliveryDate.Format(dateLayout))
	default:
		subject = "New reservation request"
		detail = "for your item"
	}

	body := fmt.Sprintf(
		"%s requested your item %s.\nAccept: %s\nReject: %s",
		b.RequesterEmail, detail, acceptLink, rejectLink,
	)

	return notify.Notification{
		ID:        uuid.NewString(),
		Kind:      notify.KindBookingRequested,
		Recipient: ownerEmail,
		Subject:   subject,
		Body:      body,
		CreatedAt: now,
	}
}

// requesterDecisionNotification tells the requester how the owner
// decided.
func requesterDecisionNotification(b domain.Booking, kind notify.Kind, now time.Time) notify.Notification {
	verdict := "accepted"
	if kind == notify.KindBookingRejected {
		verdict = "rejected"
	}

	var detail string
	switch b.Category {
	case domain.CategoryDateBased:
		detail = fmt.Sprintf(" (%s to %s)",
			b.StartDate.Format(dateLayout), b.EndDate.Format(dateLayout))
	case domain.CategoryRepeatable:
		detail = fmt.Sprintf(" (%dx for %s)",
			*b.Quantity, b.DeliveryDate.Format(dateLayout))
	}

	return notify.Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Recipient: b.RequesterEmail,
		Subject:   fmt.Sprintf("Your reservation was %s", verdict),
		Body:      fmt.Sprintf("Your request%s has been %s.", detail, verdict),
		CreatedAt: now,
	}
}
