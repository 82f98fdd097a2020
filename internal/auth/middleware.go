package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

type identityKey struct{}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}

// authenticate resolves the identity of r. The bool is false when the request
// has already been answered.
func (m *SessionManager) authenticate(w http.ResponseWriter, r *http.Request, reject func(http.ResponseWriter, *http.Request)) (*http.Request, bool) {
	identity, err := m.CurrentUser(r)
	if err != nil {
		if !errors.Is(err, ErrUnauthenticated) {
			slog.Error("error resolving session", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return nil, false
		}
		reject(w, r)
		return nil, false
	}
	return r.WithContext(WithIdentity(r.Context(), identity)), true
}

func rejectJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": ErrUnauthenticated.Error()}); err != nil {
		slog.Error("error writing unauthorized response", "error", err)
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusFound)
}

// RequireUser guards JSON API routes, answering 401 when unauthenticated.
func (m *SessionManager) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r, ok := m.authenticate(w, r, rejectJSON); ok {
			next.ServeHTTP(w, r)
		}
	})
}

// RequireLogin guards browser routes, redirecting to the login page when
// unauthenticated.
func (m *SessionManager) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r, ok := m.authenticate(w, r, redirectToLogin); ok {
			next.ServeHTTP(w, r)
		}
	})
}
