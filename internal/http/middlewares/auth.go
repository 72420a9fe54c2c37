package middlewares

import (
	"net/http"
	"strings"

	httpx "github.com/dropDatabas3/launchbase/internal/http"
	jwtx "github.com/dropDatabas3/launchbase/internal/jwt"
)

// RequireAuth valida Authorization: Bearer <JWT access> y guarda las
// claims en el contexto. Token ausente, inválido, vencido o de otra
// variante -> 401.
func RequireAuth(issuer *jwtx.Issuer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="missing bearer token"`)
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token", httpx.CodeUnauthorized)
				return
			}
			raw := strings.TrimSpace(ah[len("Bearer "):])

			claims, err := issuer.Verify(raw, jwtx.KindAccess)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token", httpx.CodeUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}
