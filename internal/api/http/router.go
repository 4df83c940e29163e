package http

import (
	"net/http"

	"garage-booking/internal/security"

	"github.com/gorilla/mux"
)

// NewRouter registers every route under the name its security level is keyed by
// in config.EndpointSecurityConfig.
func NewRouter(h *Handler, tm security.TokenManager) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet).Name("Health")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/customers/login", h.CustomerLogin).Methods(http.MethodPost).Name("CustomerLogin")
	api.HandleFunc("/auth/staff/login", h.StaffLogin).Methods(http.MethodPost).Name("StaffLogin")
	api.HandleFunc("/services", h.ListServices).Methods(http.MethodGet).Name("ListServices")
	api.HandleFunc("/locations", h.ListLocations).Methods(http.MethodGet).Name("ListLocations")
	api.HandleFunc("/vehicles/{registration}", h.LookupVehicle).Methods(http.MethodGet).Name("LookupVehicle")

	api.HandleFunc("/bookings", h.CreateBooking).Methods(http.MethodPost).Name("CreateBooking")
	api.HandleFunc("/bookings/{id}", h.GetBooking).Methods(http.MethodGet).Name("GetBooking")
	api.HandleFunc("/bookings/{id}/confirm", h.ConfirmBooking).Methods(http.MethodPost).Name("ConfirmBooking")
	api.HandleFunc("/bookings/{id}/cancel", h.CancelBooking).Methods(http.MethodPost).Name("CancelBooking")
	api.HandleFunc("/me/bookings", h.ListMyBookings).Methods(http.MethodGet).Name("ListMyBookings")

	api.HandleFunc("/locations/{id}/bookings", h.ListLocationBookings).Methods(http.MethodGet).Name("ListLocationBookings")
	api.HandleFunc("/inventory", h.ListInventory).Methods(http.MethodGet).Name("ListInventory")
	api.HandleFunc("/inventory/{id}/restock", h.RestockItem).Methods(http.MethodPost).Name("RestockItem")

	auth := NewAuthMiddleware(tm)
	r.Use(RequestID, RequestLogger, auth.Middleware)
	return r
}
