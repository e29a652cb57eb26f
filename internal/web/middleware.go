package web

import (
	"context"
	"net/http"
	"time"

	"github.com/erazemk/zaloga/internal/auth"
)

type webContextKey string

const webClaimsKey webContextKey = "webclaims"

const tokenCookie = "token"

// CookieAuthMiddleware validates the session cookie, rejects revoked tokens
// and adds the claims to the context. Anonymous requests are sent to /login.
func CookieAuthMiddleware(accounts *auth.Accounts) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(tokenCookie)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			claims, err := accounts.Authenticate(r.Context(), cookie.Value)
			if err != nil {
				clearAuthCookie(w)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), webClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// setAuthCookie stores a session token in the browser.
func setAuthCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = auth.DefaultTokenTTL
	}
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

// clearAuthCookie clears the authentication cookie with consistent attributes.
func clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// GetWebClaims retrieves the JWT claims from web context.
func GetWebClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(webClaimsKey).(*auth.Claims)
	return claims
}

// username returns the signed-in user's name for log lines.
func username(r *http.Request) string {
	if claims := GetWebClaims(r.Context()); claims != nil {
		return claims.Username
	}
	return ""
}
