package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/oiueei/oiueei/internal/app"
	"github.com/oiueei/oiueei/internal/domain"
)

// The surrounding API layer authenticates requests; this subsystem only
// needs the resolved identity.
const userHeader = "X-User-Code"

const dateLayout = "2006-01-02"

// BookingRequester is the minimal interface needed to request a booking.
type BookingRequester interface {
	RequestBooking(ctx context.Context, in app.RequestBookingInput) (domain.Booking, error)
}

// HandleRequestBooking returns the handler for POST /items/:code/request.
func HandleRequestBooking(svc BookingRequester) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		requester := r.Header.Get(userHeader)
		if requester == "" {
			writeError(w, http.StatusUnauthorized, codeMissingIdentity, "missing user identity")
			return
		}

		// Single-use requests carry no payload; an empty body is fine.
		var req requestBookingRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		payload, err := req.payload()
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, err.Error())
			return
		}

		booking, err := svc.RequestBooking(r.Context(), app.RequestBookingInput{
			ItemCode:      ps.ByName("code"),
			RequesterCode: requester,
			Payload:       payload,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(bookingResponseFrom(booking))
	}
}

// CalendarReader is the minimal interface needed to serve an item
// calendar.
type CalendarReader interface {
	BlockedPeriods(ctx context.Context, itemCode, viewerCode string) ([]domain.BlockedPeriod, error)
}

// HandleCalendar returns the handler for GET /items/:code/calendar.
// Owners get requester identity and booking codes; guests only the
// blocked ranges.
func HandleCalendar(svc CalendarReader) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		viewer := r.Header.Get(userHeader)
		if viewer == "" {
			writeError(w, http.StatusUnauthorized, codeMissingIdentity, "missing user identity")
			return
		}

		periods, err := svc.BlockedPeriods(r.Context(), ps.ByName("code"), viewer)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]blockedPeriodResponse, 0, len(periods))
		for _, p := range periods {
			out = append(out, blockedPeriodResponse{
				BookingCode:   p.BookingCode,
				RequesterCode: p.RequesterCode,
				StartDate:     formatDate(p.StartDate),
				EndDate:       formatDate(p.EndDate),
				Status:        string(p.Status),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(out)
	}
}

type requestBookingRequest struct {
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	DeliveryDate string `json:"delivery_date,omitempty"`
	Quantity     *int   `json:"quantity,omitempty"`
}

func (r requestBookingRequest) payload() (domain.BookingPayload, error) {
	var p domain.BookingPayload

	parse := func(value string, dst **time.Time) error {
		if value == "" {
			return nil
		}
		t, err := time.Parse(dateLayout, value)
		if err != nil {
			return err
		}
		t = t.UTC()
		*dst = &t
		return nil
	}

	if err := parse(r.StartDate, &p.StartDate); err != nil {
		return domain.BookingPayload{}, err
	}
	if err := parse(r.EndDate, &p.EndDate); err != nil {
		return domain.BookingPayload{}, err
	}
	if err := parse(r.DeliveryDate, &p.DeliveryDate); err != nil {
		return domain.BookingPayload{}, err
	}
	p.Quantity = r.Quantity
	return p, nil
}

type bookingResponse struct {
	Code         string `json:"code"`
	ItemCode     string `json:"item_code"`
	Category     string `json:"category"`
	Status       string `json:"status"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	DeliveryDate string `json:"delivery_date,omitempty"`
	Quantity     *int   `json:"quantity,omitempty"`
	CreatedAt    string `json:"created_at"`
}

func bookingResponseFrom(b domain.Booking) bookingResponse {
	return bookingResponse{
		Code:         b.Code,
		ItemCode:     b.ItemCode,
		Category:     string(b.Category),
		Status:       string(b.Status),
		StartDate:    formatDate(b.StartDate),
		EndDate:      formatDate(b.EndDate),
		DeliveryDate: formatDate(b.DeliveryDate),
		Quantity:     b.Quantity,
		CreatedAt:    b.CreatedAt.Format(time.RFC3339),
	}
}

type blockedPeriodResponse struct {
	BookingCode   string `json:"booking_code,omitempty"`
	RequesterCode string `json:"requester_code,omitempty"`
	StartDate     string `json:"start_date,omitempty"`
	EndDate       string `json:"end_date,omitempty"`
	Status        string `json:"status"`
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
