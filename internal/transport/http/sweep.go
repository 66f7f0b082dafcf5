package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// Sweeper is the minimal interface the scheduler endpoint needs.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// HandleSweep returns the handler for POST /internal/sweep. It is
// invoked by an external scheduler, carries no user identity, and is
// idempotent.
func HandleSweep(svc Sweeper) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		count, err := svc.Sweep(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "sweep failed")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(sweepResponse{Expired: count})
	}
}

type sweepResponse struct {
	Expired int `json:"expired"`
}
