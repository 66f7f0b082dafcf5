package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oiueei/oiueei/internal/domain"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeMissingIdentity    = "missing_identity"
	codeInvalidPayload     = "invalid_payload"
	codeOwnItem            = "own_item"
	codeNotInvited         = "not_invited"
	codeItemNotFound       = "item_not_found"
	codeBookingNotFound    = "booking_not_found"
	codeItemUnavailable    = "item_unavailable"
	codeDateOverlap        = "date_overlap"
	codeBookingDecided     = "booking_already_decided"
	codeBookingExpired     = "booking_expired"
	codeLinkInvalid        = "link_no_longer_valid"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps a domain sentinel to a response. Conflicts and
// invalid transitions stay distinguishable from not-found, and token
// failures never reveal whether a code once existed.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrOwnItem):
		writeError(w, http.StatusBadRequest, codeOwnItem, err.Error())
	case errors.Is(err, domain.ErrNotInvited):
		writeError(w, http.StatusForbidden, codeNotInvited, err.Error())

	case errors.Is(err, domain.ErrDatesRequired),
		errors.Is(err, domain.ErrOrderFieldsRequired),
		errors.Is(err, domain.ErrUnexpectedFields),
		errors.Is(err, domain.ErrPastDate),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrUnknownCategory):
		writeError(w, http.StatusBadRequest, codeInvalidPayload, err.Error())

	case errors.Is(err, domain.ErrItemUnavailable):
		writeError(w, http.StatusConflict, codeItemUnavailable, err.Error())
	case errors.Is(err, domain.ErrDateOverlap):
		writeError(w, http.StatusConflict, codeDateOverlap, err.Error())
	case errors.Is(err, domain.ErrBookingDecided):
		writeError(w, http.StatusConflict, codeBookingDecided, err.Error())

	case errors.Is(err, domain.ErrBookingExpired):
		writeError(w, http.StatusGone, codeBookingExpired, err.Error())
	case errors.Is(err, domain.ErrTokenNotFound), errors.Is(err, domain.ErrTokenExpired):
		writeError(w, http.StatusGone, codeLinkInvalid, "this link is no longer valid")

	case errors.Is(err, domain.ErrItemNotFound):
		writeError(w, http.StatusNotFound, codeItemNotFound, err.Error())
	case errors.Is(err, domain.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, codeBookingNotFound, err.Error())

	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
