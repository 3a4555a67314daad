package server

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

// adminAuth protects mutating endpoints with X-Admin-Token header auth.
// An empty token disables auth, which is only acceptable in dev.
func adminAuth(next http.Handler, token string) http.Handler {
	if token == "" {
		slog.Warn("ADMIN_TOKEN not configured - /celebrate is UNPROTECTED. Set ADMIN_TOKEN for production")
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get("X-Admin-Token")
		if got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(token)) == 1 {
			next.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		slog.Warn("admin auth failed", slog.String("path", r.URL.Path), slog.String("remote_addr", r.RemoteAddr))
	})
}
