package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/oiueei/oiueei/internal/app"
)

// ActionRedeemer is the minimal interface needed to redeem an action
// link.
type ActionRedeemer interface {
	Redeem(ctx context.Context, code string) (app.RedeemResult, error)
}

// HandleRedeemAction returns the handler for GET /actions/:code, the
// single path through which every email-triggered action happens. The
// URL carries only the token code, never a real object identifier.
func HandleRedeemAction(svc ActionRedeemer) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		result, err := svc.Redeem(r.Context(), ps.ByName("code"))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := redeemResponse{
			Action:         string(result.Action),
			RecipientCode:  result.RecipientCode,
			CollectionCode: result.CollectionCode,
			Context:        result.Context,
		}
		if result.Booking != nil {
			b := bookingResponseFrom(*result.Booking)
			resp.Booking = &b
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type redeemResponse struct {
	Action         string            `json:"action"`
	RecipientCode  string            `json:"recipient_code"`
	CollectionCode string            `json:"collection_code,omitempty"`
	Booking        *bookingResponse  `json:"booking,omitempty"`
	Context        map[string]string `json:"context,omitempty"`
}
