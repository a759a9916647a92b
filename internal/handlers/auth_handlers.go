package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/booknest/booknest-server/internal/domain"
	"github.com/booknest/booknest-server/pkg/logger"
	"github.com/google/uuid"
)

const oauthStateCookie = "oauth_state"

// SendOTP starts a registration by mailing a verification code.
func (h *Handlers) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.SendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if err := h.authService.SendOTP(r.Context(), &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Verification code sent. Please check your email.",
	})
}

// Register completes a registration with the mailed code and a password.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	resp, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Me returns the profile for the verified claim on the request.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.authService.GetCurrentUser(r.Context(), claims.Sub)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// GoogleLogin redirects to the Google consent screen with a CSRF state nonce.
func (h *Handlers) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	redirectURL, err := h.google.AuthCodeURL(state)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Google sign-in is not available")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}

// GoogleCallback finishes the code flow and hands back to the frontend with
// either ?token= or ?error=.
func (h *Handlers) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.redirectWithError(w, r, "Google sign-in was cancelled")
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		h.redirectWithError(w, r, "Invalid sign-in state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectWithError(w, r, "Missing authorization code")
		return
	}

	googleUser, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		logger.ErrorContext(r.Context(), "Google code exchange failed", "error", err)
		h.redirectWithError(w, r, "Google sign-in failed")
		return
	}

	resp, err := h.authService.ResolveGoogleIdentity(r.Context(), googleUser.ID, googleUser.Email, googleUser.Name)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to resolve google identity", "error", err)
		h.redirectWithError(w, r, capitalize(err.Error()))
		return
	}

	target := fmt.Sprintf("%s/auth/callback?token=%s", h.config.Frontend.BaseURL, url.QueryEscape(resp.Token))
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

func (h *Handlers) redirectWithError(w http.ResponseWriter, r *http.Request, message string) {
	target := fmt.Sprintf("%s/auth/callback?error=%s", h.config.Frontend.BaseURL, url.QueryEscape(message))
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}
