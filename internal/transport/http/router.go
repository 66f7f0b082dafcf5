package http

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// RouterDeps bundles the services the router exposes.
type RouterDeps struct {
	Bookings interface {
		BookingRequester
		CalendarReader
	}
	Actions ActionRedeemer
	Sweeper Sweeper
}

// NewRouter wires every route of the reservation subsystem.
func NewRouter(deps RouterDeps) http.Handler {
	router := httprouter.New()

	router.GET("/health", HandleHealth)
	router.POST("/items/:code/request", HandleRequestBooking(deps.Bookings))
	router.GET("/items/:code/calendar", HandleCalendar(deps.Bookings))
	router.GET("/actions/:code", HandleRedeemAction(deps.Actions))
	router.POST("/internal/sweep", HandleSweep(deps.Sweeper))

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})

	return router
}
