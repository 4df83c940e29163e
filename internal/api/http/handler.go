package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"garage-booking/internal/domain"
	"garage-booking/internal/security"
	"garage-booking/internal/service"

	"github.com/gorilla/mux"
)

// Handler serves the booking API over the services.
type Handler struct {
	auth      service.AuthService
	bookings  service.BookingService
	catalog   service.CatalogService
	inventory service.InventoryService
	lookup    service.VehicleLookup
}

// NewHandler wires the API. lookup may be nil when registration lookups are disabled.
func NewHandler(
	auth service.AuthService,
	bookings service.BookingService,
	catalog service.CatalogService,
	inventory service.InventoryService,
	lookup service.VehicleLookup,
) *Handler {
	return &Handler{
		auth:      auth,
		bookings:  bookings,
		catalog:   catalog,
		inventory: inventory,
		lookup:    lookup,
	}
}

const maxBodyBytes = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, codeInvalidID, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// actor returns the caller set by AuthMiddleware.
func actor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	a, ok := security.ActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
	}
	return a, ok
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type customerLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) CustomerLogin(w http.ResponseWriter, r *http.Request) {
	var req customerLoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.auth.LoginCustomer(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type staffLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) StaffLogin(w http.ResponseWriter, r *http.Request) {
	var req staffLoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.auth.LoginStaff(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.catalog.ListServices(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": services})
}

func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.catalog.ListLocations(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"locations": locations})
}

func (h *Handler) LookupVehicle(w http.ResponseWriter, r *http.Request) {
	if h.lookup == nil {
		writeError(w, http.StatusServiceUnavailable, codeLookupUnavailable, "vehicle lookup is not configured")
		return
	}
	reg := domain.NormalizeRegistration(mux.Vars(r)["registration"])
	if reg == "" {
		writeServiceError(w, r, domain.ErrMissingVehicle)
		return
	}
	details, err := h.lookup.Lookup(r.Context(), reg)
	if err != nil {
		if !errors.Is(err, domain.ErrVehicleNotFound) {
			writeError(w, http.StatusBadGateway, codeLookupUnavailable, "vehicle lookup failed")
			return
		}
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}
	var in service.CreateBookingInput
	if !decodeBody(w, r, &in) {
		return
	}
	detail, err := h.bookings.CreateBooking(r.Context(), caller, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	detail, err := h.bookings.GetBooking(r.Context(), caller, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in service.ConfirmBookingInput
	if !decodeBody(w, r, &in) {
		return
	}
	detail, err := h.bookings.ConfirmBooking(r.Context(), caller, id, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	detail, err := h.bookings.CancelBooking(r.Context(), caller, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}
	list, err := h.bookings.ListCustomerBookings(r.Context(), caller)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": list})
}

func (h *Handler) ListLocationBookings(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	list, err := h.bookings.ListLocationBookings(r.Context(), caller, id, r.URL.Query().Get("date"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": list})
}

func (h *Handler) ListInventory(w http.ResponseWriter, r *http.Request) {
	var (
		items []domain.InventoryItem
		err   error
	)
	if r.URL.Query().Get("low") == "true" {
		items, err = h.inventory.ListLowStock(r.Context())
	} else {
		items, err = h.inventory.ListItems(r.Context())
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type restockRequest struct {
	Quantity int32 `json:"quantity"`
}

func (h *Handler) RestockItem(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req restockRequest
	if !decodeBody(w, r, &req) {
		return
	}
	item, err := h.inventory.Restock(r.Context(), caller, id, req.Quantity)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
