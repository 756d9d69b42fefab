package event_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ventar/internal/auth"
	"ventar/internal/events"
	"ventar/internal/logger"
	"ventar/internal/utils"
	"ventar/internal/validate"
)

type Handler struct {
	Service       *events.Service
	Stores        *events.Manager
	Logger        *logger.Logger
	PublicBaseURL string
}

func NewHandler(service *events.Service, stores *events.Manager, log *logger.Logger, publicBaseURL string) *Handler {
	return &Handler{
		Service:       service,
		Stores:        stores,
		Logger:        log,
		PublicBaseURL: publicBaseURL,
	}
}

// List handles GET /api/events. Query params: search, status, date
// (today|upcoming|past), refresh=true to force a re-fetch. Filtering is
// re-derived from the cached collection; only an explicit refresh or a cold
// store hits the data store.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	store := h.Stores.For(session)

	q := r.URL.Query()
	store.SetSearch(q.Get("search"))
	store.SetFilters(events.Filters{
		Status:     q.Get("status"),
		DateBucket: q.Get("date"),
	})

	if store.CurrentState() == events.StateIdle || q.Get("refresh") == "true" {
		if err := store.Refresh(r.Context()); err != nil {
			if errors.Is(err, events.ErrUnauthorized) || errors.Is(err, events.ErrNoSession) {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.RedirectResponse(auth.SignInPath))
				return
			}
			h.Logger.Error("EVENTS", fmt.Sprintf("List: refresh failed: %v", err))
			utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("failed to load events", err.Error()))
			return
		}
	}

	snap := store.Snapshot()
	resp := utils.SuccessResponse("events loaded", snap)
	resp.Warning = snap.Warning
	utils.WriteJSON(w, http.StatusOK, resp)
}

type createRequest struct {
	Name          string `json:"name"`
	WorkshopNo    string `json:"workshop_number"`
	Date          string `json:"date"`
	Capacity      int    `json:"capacity"`
	Registrations int    `json:"registrations"`
	Status        string `json:"status"`
}

// Create handles POST /api/events. Validation failures never reach the data
// store. On success the client navigates away; the next List re-fetches, so
// nothing is inserted into the cached collection here.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	errs := validate.Event(validate.EventForm{
		Name:          req.Name,
		Date:          req.Date,
		Capacity:      req.Capacity,
		Registrations: req.Registrations,
	}, time.Now())
	if !errs.OK() {
		utils.WriteJSON(w, http.StatusUnprocessableEntity, utils.ValidationResponse(errs))
		return
	}

	name := req.Name
	if req.WorkshopNo != "" {
		name = fmt.Sprintf("%s #%s", req.Name, req.WorkshopNo)
	}

	event, err := h.Service.CreateEvent(r.Context(), session.HostID, events.CreateInput{
		Name:          name,
		Date:          req.Date,
		Capacity:      req.Capacity,
		Registrations: req.Registrations,
		Status:        req.Status,
	})
	if err != nil {
		h.Logger.Error("EVENTS", fmt.Sprintf("Create: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("failed to create event", err.Error()))
		return
	}

	h.Stores.For(session).Invalidate()
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("event created", event))
}

type deleteResponse struct {
	CascadeRequired bool   `json:"cascade_required,omitempty"`
	EventID         string `json:"event_id"`
}

// Delete handles DELETE /api/events/{eventID}. A dependency conflict answers
// 409 with cascade_required; the client repeats the call with ?cascade=true
// after the host confirms. Deleting an id that is already gone succeeds.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	eventID := chi.URLParam(r, "eventID")
	cascade := r.URL.Query().Get("cascade") == "true"

	store := h.Stores.For(session)
	err := store.Delete(r.Context(), eventID, cascade)
	switch {
	case errors.Is(err, events.ErrHasRegistrations):
		resp := utils.ErrorResponse("event has registrations", "confirm cascade delete to remove them along with the event")
		resp.Data = deleteResponse{CascadeRequired: true, EventID: eventID}
		utils.WriteJSON(w, http.StatusConflict, resp)
	case errors.Is(err, events.ErrDeleteInFlight):
		utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse("delete already in progress", err.Error()))
	case errors.Is(err, events.ErrNoSession), errors.Is(err, events.ErrStoreClosed):
		utils.WriteJSON(w, http.StatusUnauthorized, utils.RedirectResponse(auth.SignInPath))
	case err != nil:
		h.Logger.Error("EVENTS", fmt.Sprintf("Delete: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("failed to delete event", err.Error()))
	default:
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("event deleted", deleteResponse{EventID: eventID}))
	}
}

// Share handles GET /api/events/{eventID}/share: the public registration URL
// plus a transient copied acknowledgment. No data-store round trip.
func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	eventID := chi.URLParam(r, "eventID")

	link := events.NewShareLink(h.PublicBaseURL, eventID)

	store := h.Stores.For(session)
	store.MarkShared(eventID)

	resp := utils.SuccessResponse("share link ready", link)
	utils.WriteJSON(w, http.StatusOK, resp)
}

// ShareQR handles GET /api/events/{eventID}/share/qr, rendering the share
// URL as a PNG.
func (h *Handler) ShareQR(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	link := events.NewShareLink(h.PublicBaseURL, eventID)
	png, err := link.QR()
	if err != nil {
		h.Logger.Error("EVENTS", fmt.Sprintf("ShareQR: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("failed to render QR code", err.Error()))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
