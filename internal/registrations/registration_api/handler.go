package registration_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ventar/internal/auth"
	"ventar/internal/logger"
	"ventar/internal/models"
	"ventar/internal/registrations"
	"ventar/internal/registrations/qr"
	"ventar/internal/utils"
	"ventar/internal/validate"
)

type Handler struct {
	Service *registrations.Service
	Logger  *logger.Logger
}

func NewHandler(service *registrations.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

// GetEvent handles GET /api/register/{eventID}: the public registration page
// lookup. A deleted event is a message, not a redirect.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	event, err := h.Service.LookupEvent(r.Context(), eventID)
	if errors.Is(err, registrations.ErrEventNotFound) {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("event not found", "Event not found or an error occurred."))
		return
	}
	if err != nil {
		h.Logger.Error("REGISTER", fmt.Sprintf("GetEvent: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("failed to load event", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("event found", event))
}

type registerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Register handles POST /api/register/{eventID}. Validation rejects the
// submission locally before any store round trip.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	errs := validate.Registration(validate.RegistrationForm{Name: req.Name, Email: req.Email})
	if !errs.OK() {
		utils.WriteJSON(w, http.StatusUnprocessableEntity, utils.ValidationResponse(errs))
		return
	}

	confirmation, err := h.Service.Register(r.Context(), eventID, req.Name, req.Email)
	if errors.Is(err, registrations.ErrEventNotFound) {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("event not found", "Event not found or an error occurred."))
		return
	}
	if err != nil {
		h.Logger.Error("REGISTER", fmt.Sprintf("Register: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("registration failed", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("registration successful", confirmation))
}

// ownedEvent resolves the event and requires it to belong to the signed-in
// host. A foreign event id answers not-found so existence never leaks. The
// response has already been written when ok is false.
func (h *Handler) ownedEvent(w http.ResponseWriter, r *http.Request, eventID string) (*models.Event, bool) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.RedirectResponse(auth.SignInPath))
		return nil, false
	}

	event, err := h.Service.LookupEvent(r.Context(), eventID)
	if errors.Is(err, registrations.ErrEventNotFound) {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("event not found", "Event not found or an error occurred."))
		return nil, false
	}
	if err != nil {
		h.Logger.Error("REGISTER", fmt.Sprintf("ownedEvent: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("failed to load event", err.Error()))
		return nil, false
	}
	if event.HostID != session.HostID {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("event not found", "Event not found or an error occurred."))
		return nil, false
	}
	return event, true
}

type checkinRequest struct {
	EncryptedQR string `json:"encrypted_qr"`
}

// CheckIn handles POST /api/events/{eventID}/checkin (protected). The body
// carries the confirmation code scanned at the door. Only the event's own
// host can run its check-in desk.
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	if _, ok := h.ownedEvent(w, r, eventID); !ok {
		return
	}

	var req checkinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}
	if req.EncryptedQR == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request", "encrypted_qr is required"))
		return
	}

	reg, err := h.Service.CheckIn(r.Context(), eventID, req.EncryptedQR)
	switch {
	case errors.Is(err, qr.ErrInvalidCode):
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid QR code", err.Error()))
	case errors.Is(err, registrations.ErrWrongEvent):
		utils.WriteJSON(w, http.StatusForbidden, utils.ErrorResponse("check-in refused", err.Error()))
	case errors.Is(err, registrations.ErrNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("registration not found", err.Error()))
	case err != nil:
		h.Logger.Error("CHECKIN", fmt.Sprintf("CheckIn: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("check-in failed", err.Error()))
	default:
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("checked in", reg))
	}
}

// Attendees handles GET /api/events/{eventID}/attendees (protected). The
// list carries attendee names and emails, so only the event's host sees it.
func (h *Handler) Attendees(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	if _, ok := h.ownedEvent(w, r, eventID); !ok {
		return
	}

	regs, err := h.Service.Attendees(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("REGISTER", fmt.Sprintf("Attendees: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("failed to list attendees", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("attendees loaded", regs))
}
