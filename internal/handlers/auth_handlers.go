// File: internal/handlers/auth_handlers.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/skinai/go-skinai/internal/middleware"
	"github.com/skinai/go-skinai/internal/services/session"
	"github.com/skinai/go-skinai/internal/services/user_services"
)

const authCookieName = "auth_token"

// AuthHandler holds the dependencies for authentication handlers.
type AuthHandler struct {
	AuthService *user_services.AuthService
	Controller  *session.Controller
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service *user_services.AuthService, controller *session.Controller) *AuthHandler {
	return &AuthHandler{AuthService: service, Controller: controller}
}

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account and signs the caller in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	user, token, err := h.AuthService.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	setAuthCookie(w, token)
	if err := h.Controller.RememberUser(r.Context(), user); err != nil {
		writeError(w, "Could not persist profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login validates credentials and issues the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	user, token, err := h.AuthService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user_services.ErrInvalidCredentials) {
			writeError(w, "Invalid email or password", http.StatusUnauthorized)
			return
		}
		writeError(w, "Could not sign in", http.StatusInternalServerError)
		return
	}

	setAuthCookie(w, token)
	if err := h.Controller.RememberUser(r.Context(), user); err != nil {
		writeError(w, "Could not persist profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Logout clears the cookie and wipes the stored profile and chat history.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	if err := h.Controller.SignOut(r.Context()); err != nil {
		writeError(w, "Could not sign out", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the caller's profile: the account behind the validated token
// when the auth middleware ran, otherwise the profile remembered for the
// session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if userID, ok := r.Context().Value(middleware.UserIDKey).(uint); ok {
		if user, err := h.AuthService.GetUserByID(r.Context(), userID); err == nil {
			writeJSON(w, http.StatusOK, user)
			return
		}
	}

	user, ok := h.Controller.CurrentUser(r.Context())
	if !ok {
		writeError(w, "No profile", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
