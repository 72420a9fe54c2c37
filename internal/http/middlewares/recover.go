package middlewares

import (
	"net/http"

	httpx "github.com/dropDatabas3/launchbase/internal/http"
	"github.com/dropDatabas3/launchbase/internal/observability/logger"
	"go.uber.org/zap"
)

// WithRecover captura panics y devuelve un 500 en lugar de crashear.
func WithRecover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.From(r.Context()).Error("panic recovered",
						zap.Any("panic", rec),
					)
					httpx.WriteError(w, http.StatusInternalServerError,
						"internal_error", "unexpected server error", httpx.CodeInternalFailure)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
