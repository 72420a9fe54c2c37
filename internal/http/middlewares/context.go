package middlewares

import (
	"context"

	"github.com/dropDatabas3/launchbase/internal/jwt"
)

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
	ctxKeyClaims
)

func setRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, rid)
}

// GetRequestID devuelve el request ID del contexto, o "".
func GetRequestID(ctx context.Context) string {
	s, _ := ctx.Value(ctxKeyRequestID).(string)
	return s
}

// WithClaims guarda las claims verificadas del access token.
func WithClaims(ctx context.Context, c jwt.Claims) context.Context {
	return context.WithValue(ctx, ctxKeyClaims, c)
}

// GetClaims devuelve las claims del contexto; ok=false si la ruta no
// pasó por RequireAuth.
func GetClaims(ctx context.Context) (jwt.Claims, bool) {
	c, ok := ctx.Value(ctxKeyClaims).(jwt.Claims)
	return c, ok
}

// GetUserID es un shortcut sobre GetClaims.
func GetUserID(ctx context.Context) string {
	c, _ := GetClaims(ctx)
	return c.UserID
}
