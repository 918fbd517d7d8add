package middleware

import (
	"net/http"
	"strings"

	"qualcode/internal/auth"
	"qualcode/internal/httputil"
)

// publicPaths skip authentication.
var publicPaths = map[string]bool{
	"/health": true,
}

// Auth verifies the bearer token and stores the caller's id and email on the request.
// OPTIONS requests pass through so CORS pre-flight works.
func Auth(verifier auth.JWTVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, httputil.WithUser(r, claims.GetUserID(), claims.Email))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
