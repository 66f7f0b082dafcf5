package http

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// HandleHealth reports basic liveness for the service.
func HandleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
