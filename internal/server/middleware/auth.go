// Package middleware provides HTTP middleware for operator sessions.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// SessionCookie holds the signed session token of a signed-in operator.
const SessionCookie = "orphaned_data_session"

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

const principalKey ContextKey = "principal"

// TokenValidator validates session tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (Principal, error)
}

// Principal is the WordPress user a request acts as.
type Principal interface {
	GetUserID() int64
	GetLogin() string
	GetCapabilities() []string
}

// Can reports whether p holds capability.
func Can(p Principal, capability string) bool {
	return p != nil && slices.Contains(p.GetCapabilities(), capability)
}

// TokenFromRequest returns the session cookie value, falling back to an
// "Authorization: Bearer" header.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// RequireSession rejects requests without a valid session. Browser requests are
// redirected to loginPath with redirect_to set to the requested URI; requests
// carrying an Authorization header get 401.
func RequireSession(tokens TokenValidator, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token != "" {
				if p, err := tokens.ValidateToken(token); err == nil {
					ctx := context.WithValue(r.Context(), principalKey, p)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			if r.Header.Get("Authorization") != "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			target := loginPath + "?" + url.Values{"redirect_to": {r.URL.RequestURI()}}.Encode()
			http.Redirect(w, r, target, http.StatusSeeOther)
		})
	}
}

// GetPrincipal extracts the signed-in operator from the request context.
func GetPrincipal(r *http.Request) (Principal, error) {
	p, ok := r.Context().Value(principalKey).(Principal)
	if !ok {
		return nil, fmt.Errorf("principal not found in request context")
	}
	return p, nil
}

// WithPrincipal returns ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}
