// Package handlers expone los endpoints HTTP. Cada handler es un struct
// con sus dependencias explícitas y un Register(chi.Router) que monta
// sus rutas; la composición vive en internal/app.
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/launchbase/internal/auth"
	httpx "github.com/dropDatabas3/launchbase/internal/http"
	"github.com/dropDatabas3/launchbase/internal/http/middlewares"
	"github.com/dropDatabas3/launchbase/internal/observability/logger"
	"github.com/dropDatabas3/launchbase/internal/rate"
	"github.com/dropDatabas3/launchbase/internal/security/password"
)

// AuthHandler cubre registro, login local y ciclo de vida de tokens.
type AuthHandler struct {
	Svc          *auth.Service
	Policy       password.Policy
	LoginLimiter rate.Limiter
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/auth/register", h.register)
	r.Method(http.MethodPost, "/auth/login",
		middlewares.ChainFunc(h.login, middlewares.WithRateLimit(h.LoginLimiter)))
	r.Post("/auth/refresh-token", h.refresh)
	r.Post("/auth/verify-token", h.verify)
}

type claimsOut struct {
	Email    string `json:"email"`
	UserID   string `json:"userId"`
	UserName string `json:"userName,omitempty"`
}

type registerIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var in registerIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if in.Email == "" || !strings.Contains(in.Email, "@") || in.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", "email and name are required", httpx.CodeValidation)
		return
	}
	if n := utf8.RuneCountInString(in.Name); n < 2 || n > 50 {
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", "name must be 2-50 chars", httpx.CodeValidation)
		return
	}
	if !h.Policy.Validate(in.Password) {
		httpx.WriteError(w, http.StatusBadRequest, "validation_error",
			"password must be 8-32 chars with upper, lower, digit and symbol", httpx.CodeValidation)
		return
	}

	sess, err := h.Svc.Register(r.Context(), in.Name, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			httpx.WriteError(w, http.StatusConflict, "email_taken", "email already registered", httpx.CodeEmailTaken)
			return
		}
		writeInternal(w, r, "register", err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"token":        sess.Token,
		"refreshToken": sess.RefreshToken,
		"payload": claimsOut{
			Email:    sess.Claims.Email,
			UserID:   sess.Claims.UserID,
			UserName: sess.Claims.UserName,
		},
	})
}

type loginIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var in loginIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}

	sess, err := h.Svc.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			writeUnauthorized(w)
			return
		}
		writeInternal(w, r, "login", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"token":        sess.Token,
		"refreshToken": sess.RefreshToken,
		"user": claimsOut{
			Email:    sess.Claims.Email,
			UserID:   sess.Claims.UserID,
			UserName: sess.Claims.UserName,
		},
	})
}

type refreshIn struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var in refreshIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}

	out, err := h.Svc.Refresh(r.Context(), in.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			writeUnauthorized(w)
			return
		}
		writeInternal(w, r, "refresh", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"token":        out.Token,
		"refreshToken": out.RefreshToken,
		"user":         out.User,
	})
}

type verifyIn struct {
	Token string `json:"token"`
}

func (h *AuthHandler) verify(w http.ResponseWriter, r *http.Request) {
	var in verifyIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}

	claims, err := h.Svc.VerifyToken(r.Context(), in.Token)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			writeUnauthorized(w)
			return
		}
		writeInternal(w, r, "verify", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, claimsOut{
		Email:    claims.Email,
		UserID:   claims.UserID,
		UserName: claims.UserName,
	})
}

// writeUnauthorized responde 401 con mensaje genérico: nunca filtramos
// si falló la credencial, el token o la existencia de la cuenta.
func writeUnauthorized(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials or token", httpx.CodeUnauthorized)
}

func writeInternal(w http.ResponseWriter, r *http.Request, op string, err error) {
	logger.From(r.Context()).Error(op+" failed", logger.Err(err))
	httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "unexpected server error", httpx.CodeInternalFailure)
}
