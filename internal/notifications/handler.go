package notifications

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ventar/internal/auth"
	"ventar/internal/utils"
)

type Handler struct {
	Feed *Feed
}

func NewHandler(feed *Feed) *Handler {
	return &Handler{Feed: feed}
}

// List handles GET /api/notifications (protected).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.RedirectResponse(auth.SignInPath))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("notifications loaded", map[string]any{
		"notifications": h.Feed.List(session.HostID),
		"unread":        h.Feed.UnreadCount(session.HostID),
	}))
}

// Toggle handles POST /api/notifications/{notificationID}/toggle (protected).
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.RedirectResponse(auth.SignInPath))
		return
	}

	id := chi.URLParam(r, "notificationID")
	if !h.Feed.ToggleRead(session.HostID, id) {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("notification not found", "no such notification"))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("notification updated", nil))
}
