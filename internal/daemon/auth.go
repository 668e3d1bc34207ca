package daemon

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// TokenAuthMiddleware guards the /v1/ operation surface with the daemon's
// bearer token. Health stays open so autostart can poll it before the
// token file exists. Token comparison is constant-time.
func TokenAuthMiddleware(token string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v1/") {
			next.ServeHTTP(w, r)
			return
		}

		const prefix = "Bearer "
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, prefix) {
			unauthorized(w)
			return
		}
		presented := strings.TrimSpace(auth[len(prefix):])
		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
}
