package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/clubhub/metrics"
	"github.com/Dosada05/clubhub/services"
)

type contextKey string

const (
	identityContextKey contextKey = "identity"
	claimsContextKey   contextKey = "claims"
)

// Authenticator turns a session token into a resolved club identity.
type Authenticator struct {
	auth     services.AuthService
	identity services.IdentityService
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewAuthenticator creates the auth middleware. m may be nil.
func NewAuthenticator(auth services.AuthService, identity services.IdentityService, m *metrics.Metrics, logger *slog.Logger) *Authenticator {
	return &Authenticator{auth: auth, identity: identity, metrics: m, logger: logger}
}

// bearerToken берёт токен из заголовка Authorization, для websocket из ?token=
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// Authenticate rejects requests without a live session for an existing club
// account. The identity and the session claims are put in the context.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			a.reject(w, r, "missing_token", services.ErrSessionInvalid)
			return
		}

		claims, err := a.auth.Authenticate(r.Context(), token)
		if err != nil {
			a.reject(w, r, "invalid_token", err)
			return
		}

		id, err := a.identity.Resolve(r.Context(), claims.UID)
		if err != nil {
			a.reject(w, r, "unknown_identity", err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		ctx = context.WithValue(ctx, identityContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireCoach must run after Authenticate.
func (a *Authenticator) RequireCoach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := GetIdentityFromContext(r.Context())
		if err := a.identity.RequireCoach(id); err != nil {
			a.reject(w, r, "not_coach", err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) reject(w http.ResponseWriter, r *http.Request, reason string, err error) {
	if a.metrics != nil {
		a.metrics.IncAuthFailure(reason)
	}

	status := http.StatusUnauthorized
	switch {
	case errors.Is(err, services.ErrUnauthorizedIdentity), errors.Is(err, services.ErrForbiddenOperation):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrSessionInvalid):
	default:
		// ошибка хранилища, а не плохой токен
		a.logger.Error("authentication failed", "path", r.URL.Path, "error", err)
		status = http.StatusInternalServerError
		err = errors.New("the server encountered a problem and could not process your request")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
