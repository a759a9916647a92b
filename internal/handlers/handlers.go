package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/booknest/booknest-server/internal/domain"
	"github.com/booknest/booknest-server/internal/oauth"
	"github.com/booknest/booknest-server/internal/service"
	"github.com/booknest/booknest-server/pkg/auth"
	"github.com/booknest/booknest-server/pkg/config"
	"github.com/booknest/booknest-server/pkg/logger"
)

type Handlers struct {
	authService service.AuthService
	bookService service.BookService
	google      *oauth.GoogleProvider
	config      *config.Config
}

func New(
	authService service.AuthService,
	bookService service.BookService,
	google *oauth.GoogleProvider,
	config *config.Config,
) *Handlers {
	return &Handlers{
		authService: authService,
		bookService: bookService,
		google:      google,
		config:      config,
	}
}

type contextKey string

const claimsKey contextKey = "claims"

// RequireJWT verifies the bearer token and, when roles are given, requires the
// claim to carry one of them (admin always passes).
func (h *Handlers) RequireJWT(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := auth.Parse(token, h.config.Auth.JWTSecret)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					writeError(w, http.StatusUnauthorized, "Token expired")
					return
				}
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			if len(roles) > 0 && claims.Role != domain.RoleAdmin {
				allowed := false
				for _, role := range roles {
					if claims.Role == role {
						allowed = true
						break
					}
				}
				if !allowed {
					writeError(w, http.StatusForbidden, "Insufficient permissions")
					return
				}
			}

			ctx := context.WithValue(r.Context(), logger.UserIDKey, claims.Sub)
			ctx = context.WithValue(ctx, claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getClaims(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"message": message})
}

// writeDomainError maps the error taxonomy onto HTTP statuses. Anything
// unrecognized is a 500 with a generic message.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"message": "Validation failed",
			"errors":  verr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrAlreadyRegistered),
		errors.Is(err, domain.ErrNoPendingRegistration),
		errors.Is(err, domain.ErrAlreadyVerified),
		errors.Is(err, domain.ErrNoOTPIssued),
		errors.Is(err, domain.ErrOTPMismatch),
		errors.Is(err, domain.ErrOTPExpired),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrPasswordLoginUnavailable),
		errors.Is(err, domain.ErrMissingGoogleEmail):
		writeError(w, http.StatusBadRequest, capitalize(err.Error()))
	case errors.Is(err, domain.ErrEmailNotVerified),
		errors.Is(err, domain.ErrAccountDisabled):
		writeError(w, http.StatusForbidden, capitalize(err.Error()))
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, capitalize(err.Error()))
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrBookNotFound):
		writeError(w, http.StatusNotFound, capitalize(err.Error()))
	case errors.Is(err, domain.ErrOTPRateLimited):
		writeError(w, http.StatusTooManyRequests, capitalize(err.Error()))
	case errors.Is(err, domain.ErrDeliveryFailed):
		writeError(w, http.StatusInternalServerError, capitalize(err.Error()))
	default:
		logger.ErrorContext(r.Context(), "Unhandled error", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}
