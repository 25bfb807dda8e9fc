package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventseating/internal/delivery/http/controllers"
	"eventseating/internal/delivery/http/middleware"
	"eventseating/internal/domain"
)

// Controllers groups the handlers the router mounts.
type Controllers struct {
	Events   *controllers.EventController
	Invitees *controllers.InviteeController
	Guests   *controllers.GuestController
	Seating  *controllers.SeatingController
	CheckIn  *controllers.CheckInController
}

// NewRouter initializes the HTTP router with all application routes.
// Guest-facing RSVP routes are public, /admin routes need an admin token and everything
// else needs an organizer or admin token.
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	authed := middleware.RequireAuth(verifier, logger)
	organizer := middleware.RequireRole(domain.RoleOrganizer, domain.RoleAdmin)
	protect := func(h http.HandlerFunc) http.HandlerFunc { return authed(organizer(h)) }
	admin := middleware.RequireRole(domain.RoleAdmin)
	adminOnly := func(h http.HandlerFunc) http.HandlerFunc { return authed(admin(h)) }

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Guests (public, keyed by access code)
	mux.HandleFunc("POST /rsvp", c.Guests.SubmitRSVP)
	mux.HandleFunc("GET /guests/{code}", c.Guests.LookupByCode)
	mux.HandleFunc("POST /guests/cancel", c.Guests.CancelRSVP)

	// Events
	mux.HandleFunc("POST /events", protect(c.Events.CreateEvent))
	mux.HandleFunc("GET /events", protect(c.Events.ListMyEvents))
	mux.HandleFunc("GET /events/{eventID}", protect(c.Events.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", protect(c.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", protect(c.Events.DeleteEvent))
	mux.HandleFunc("GET /organizer/summary", protect(c.Events.OrganizerSummary))
	mux.HandleFunc("GET /organizer/rsvp-breakdown", protect(c.Events.RSVPBreakdown))

	// Admin
	mux.HandleFunc("GET /admin/events", adminOnly(c.Events.ListAllEvents))
	mux.HandleFunc("GET /admin/statistics", adminOnly(c.Events.PlatformStatistics))

	// Invitees
	mux.HandleFunc("POST /events/{eventID}/invitees", protect(c.Invitees.AddInvitee))
	mux.HandleFunc("POST /events/{eventID}/invitees/import", protect(c.Invitees.ImportInvitees))
	mux.HandleFunc("GET /events/{eventID}/invitees", protect(c.Invitees.ListInvitees))
	mux.HandleFunc("DELETE /events/{eventID}/invitees/{email}", protect(c.Invitees.DeleteInvitee))
	mux.HandleFunc("GET /events/{eventID}/guests", protect(c.Guests.ListGuests))

	// Seating
	mux.HandleFunc("POST /events/{eventID}/seating", protect(c.Seating.CreateConfiguration))
	mux.HandleFunc("PUT /events/{eventID}/seating", protect(c.Seating.UpdateConfiguration))
	mux.HandleFunc("GET /events/{eventID}/seating", protect(c.Seating.GetSeatingView))
	mux.HandleFunc("POST /events/{eventID}/seating/auto-assign", protect(c.Seating.AutoAssign))
	mux.HandleFunc("PUT /events/{eventID}/seating/guests/{guestID}", protect(c.Seating.AssignSeat))
	mux.HandleFunc("DELETE /events/{eventID}/seating/guests/{guestID}", protect(c.Seating.VacateSeat))
	mux.HandleFunc("POST /events/{eventID}/seating/swap", protect(c.Seating.SwapSeats))

	// Check-in
	mux.HandleFunc("POST /check-in", protect(c.CheckIn.CheckIn))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
