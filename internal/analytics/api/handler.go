package analytics_api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ventar/internal/analytics"
	"ventar/internal/auth"
	"ventar/internal/events"
	"ventar/internal/logger"
	"ventar/internal/utils"
)

type Handler struct {
	Service *analytics.Service
	Events  *events.Service
	Logger  *logger.Logger
}

func NewHandler(service *analytics.Service, eventsService *events.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Events: eventsService, Logger: log}
}

// RegisterRoutes mounts the analytics routes. Callers wrap them in the
// session guard; every route here assumes a session in context.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/analytics", func(r chi.Router) {
		r.Get("/dashboard", h.GetDashboardStats)
		r.Get("/events/{eventID}", h.GetEventAnalytics)
	})
}

// GetDashboardStats handles GET /api/analytics/dashboard.
func (h *Handler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.RedirectResponse(auth.SignInPath))
		return
	}

	stats, err := h.Service.GetDashboardStats(r.Context(), session.HostID)
	if err != nil {
		h.Logger.Error("ANALYTICS", fmt.Sprintf("dashboard stats: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("failed to load stats", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("stats loaded", stats))
}

// GetEventAnalytics handles GET /api/analytics/events/{eventID}. Hosts only
// see analytics for their own events.
func (h *Handler) GetEventAnalytics(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.RedirectResponse(auth.SignInPath))
		return
	}

	eventID := chi.URLParam(r, "eventID")
	event, err := h.Events.GetEvent(r.Context(), eventID)
	if errors.Is(err, events.ErrNotFound) {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("event not found", "no such event"))
		return
	}
	if err != nil {
		h.Logger.Error("ANALYTICS", fmt.Sprintf("event lookup: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("failed to load event", err.Error()))
		return
	}
	if event.HostID != session.HostID {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("event not found", "no such event"))
		return
	}

	result, err := h.Service.GetEventAnalytics(r.Context(), event)
	if err != nil {
		h.Logger.Error("ANALYTICS", fmt.Sprintf("event analytics: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("failed to load analytics", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("analytics loaded", result))
}
