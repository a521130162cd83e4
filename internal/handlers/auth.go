package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/diewo77/staff-portal/internal/auth"
	"github.com/diewo77/staff-portal/internal/httpx"
	"github.com/diewo77/staff-portal/internal/store"
	"github.com/diewo77/staff-portal/internal/validation"
)

type AuthHandler struct{ Svc *auth.Service }

func NewAuthHandler(svc *auth.Service) *AuthHandler { return &AuthHandler{Svc: svc} }

func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/signup", h.signup)
	mux.HandleFunc("/login", h.login)
	mux.HandleFunc("/logout", h.logout)
}

type signupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	// Validation runs before any store mutation is attempted.
	v := validation.Violations{}
	validation.Required("email", req.Email, v)
	validation.Email("email", req.Email, v)
	validation.Required("password", req.Password, v)
	validation.MinLen("password", req.Password, 8, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	user, err := h.Svc.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateEmail):
			httpx.JSONError(w, http.StatusConflict, "duplicate_email", nil)
		case errors.Is(err, store.ErrValidation):
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "persistence_error", nil)
		}
		return
	}
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}

	sess, err := h.Svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// Distinct codes: the UI can tell a typo from a not-yet-approved
		// account.
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		case errors.Is(err, auth.ErrAccountNotApproved):
			httpx.JSONError(w, http.StatusForbidden, "account_not_approved", nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "persistence_error", nil)
		}
		return
	}
	auth.CreateSession(w, sess.UserID)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"email":        sess.Email,
		"display_name": sess.DisplayName,
		"role":         sess.Role,
	})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	auth.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}
