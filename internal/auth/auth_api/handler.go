package auth_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ventar/internal/auth"
	"ventar/internal/logger"
	"ventar/internal/models"
	"ventar/internal/utils"
	"ventar/internal/validate"
)

type Handler struct {
	Service  *auth.Service
	Logger   *logger.Logger
	ResetTTL time.Duration
}

func NewHandler(service *auth.Service, log *logger.Logger, resetTTL time.Duration) *Handler {
	return &Handler{Service: service, Logger: log, ResetTTL: resetTTL}
}

type signUpRequest struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token   string          `json:"token"`
	Session *models.Session `json:"session"`
}

// SignUp handles POST /api/auth/signup.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	errs := validate.SignUp(validate.SignUpForm{
		FullName:        req.FullName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if !errs.OK() {
		utils.WriteJSON(w, http.StatusUnprocessableEntity, utils.ValidationResponse(errs))
		return
	}

	session, token, err := h.Service.SignUp(r.Context(), req.Email, req.Password, req.FullName)
	if errors.Is(err, auth.ErrEmailTaken) {
		utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse("sign up failed", err.Error()))
		return
	}
	if err != nil {
		h.Logger.Error("AUTH", fmt.Sprintf("SignUp: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("sign up failed", "could not create account"))
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("account created", sessionResponse{Token: token, Session: session}))
}

// SignIn handles POST /api/auth/login.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	session, token, err := h.Service.SignIn(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("sign in failed", err.Error()))
		return
	}
	if err != nil {
		h.Logger.Error("AUTH", fmt.Sprintf("SignIn: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("sign in failed", "could not sign in"))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("signed in", sessionResponse{Token: token, Session: session}))
}

// SignOut handles POST /api/auth/logout. Always succeeds.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.Service.SignOut(r.Context(), auth.ExtractToken(r))
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("signed out", nil))
}

// Session handles GET /api/auth/session: the mount-time session check.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	session := h.Service.GetSession(r.Context(), auth.ExtractToken(r))
	if session == nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.RedirectResponse(auth.SignInPath))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("session active", session))
}

type resetRequest struct {
	Email      string `json:"email"`
	RedirectTo string `json:"redirect_to"`
}

// ResetPassword handles POST /api/auth/reset-password. The response is the
// same whether or not the email has an account.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	if err := h.Service.ResetPasswordForEmail(r.Context(), req.Email, req.RedirectTo, h.ResetTTL); err != nil {
		h.Logger.Error("AUTH", fmt.Sprintf("ResetPassword: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("reset failed", "could not start password reset"))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("if the account exists, a reset link has been sent", nil))
}
