package auth

import (
	"net/http"
	"strings"

	"repairdesk/internal/models"
)

// пути без авторизации
var exempt = map[string]bool{
	"/healthz": true,
	"/readyz":  true,
	"/metrics": true,
}

// Middleware достаёт пользователя из Bearer JWT и кладёт его в контекст.
type Middleware struct {
	Secret []byte
}

func NewMiddleware(secret []byte) *Middleware { return &Middleware{Secret: secret} }

func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if exempt[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := ParseJWT(extractBearer(r), m.Secret)
		if err != nil {
			models.WriteProblem(w, http.StatusUnauthorized, "Unauthorized", "missing or invalid bearer token", nil)
			return
		}
		u, err := claims.User()
		if err != nil {
			models.WriteProblem(w, http.StatusForbidden, "Forbidden", "role "+claims.Role+" is not allowed", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

func extractBearer(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
