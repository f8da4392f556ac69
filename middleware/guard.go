// Package middleware provides the net/http guard for bearer-protected
// routes. The guard fails closed: a missing, unverifiable, or revoked access
// token never reaches the wrapped handler.
package middleware

import (
	"context"
	"net/http"
	"strings"

	authcore "github.com/lancerhq/authcore"
	"github.com/lancerhq/authcore/token"
)

type claimsContextKey struct{}

// ClaimsFromContext returns the verified access-token claims injected by
// [Guard].
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*token.Claims)
	return claims, ok
}

// Guard wraps a handler with bearer-token verification. The token is checked
// cryptographically and against the session cache; on success the claims are
// placed in the request context.
func Guard(core *authcore.Core, onError func(http.ResponseWriter, error)) func(http.Handler) http.Handler {
	if onError == nil {
		onError = func(w http.ResponseWriter, _ error) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if core == nil {
				onError(w, authcore.ErrCoreNotReady)
				return
			}

			bearer, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				onError(w, authcore.ErrTokenRequired)
				return
			}

			claims, err := core.Validate(r.Context(), bearer)
			if err != nil {
				onError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, bool) {
	const scheme = "Bearer "
	if !strings.HasPrefix(header, scheme) {
		return "", false
	}
	tok := header[len(scheme):]
	if tok == "" {
		return "", false
	}
	return tok, true
}
