package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/alexedwards/scs/v2"
)

type csrfContextKey string

const csrfTokenCtxKey csrfContextKey = "csrf_token"

// CSRFProtect generates a CSRF token and stores it in the session. On
// state-changing requests (POST, PUT, DELETE, PATCH) it validates that the
// request carries a matching token in the X-CSRF-Token header. Clients read
// the current token from the session endpoint and echo it back.
//
// This middleware must run inside scs LoadAndSave so the session is
// available.
func CSRFProtect(sm *scs.SessionManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := EnsureCSRFToken(sm, r.Context())

		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
			if !csrfTokensMatch(token, r.Header.Get("X-CSRF-Token")) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":"invalid CSRF token"}`))
				return
			}
		}

		ctx := context.WithValue(r.Context(), csrfTokenCtxKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// EnsureCSRFToken returns the session's CSRF token, generating and storing
// one if the session has none yet. The session must be loaded.
func EnsureCSRFToken(sm *scs.SessionManager, ctx context.Context) string {
	token := sm.GetString(ctx, "csrf_token")
	if token == "" {
		token = generateCSRFToken()
		sm.Put(ctx, "csrf_token", token)
	}
	return token
}

// CSRFTokenFromContext retrieves the CSRF token from the request context.
func CSRFTokenFromContext(ctx context.Context) string {
	s, _ := ctx.Value(csrfTokenCtxKey).(string)
	return s
}

// generateCSRFToken returns a 32-byte hex-encoded random string.
func generateCSRFToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand should never fail on supported platforms.
		panic("csrf: failed to generate random token: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// csrfTokensMatch compares two tokens in constant time.
func csrfTokensMatch(expected, actual string) bool {
	if expected == "" || actual == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(actual)) == 1
}
