package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/launchbase/internal/auth"
	httpx "github.com/dropDatabas3/launchbase/internal/http"
	"github.com/dropDatabas3/launchbase/internal/http/middlewares"
	"github.com/dropDatabas3/launchbase/internal/rate"
	"github.com/dropDatabas3/launchbase/internal/security/password"
)

// PasswordHandler cubre forgot/reset de contraseña.
type PasswordHandler struct {
	Svc     *auth.Service
	Policy  password.Policy
	Limiter rate.Limiter
}

func (h *PasswordHandler) Register(r chi.Router) {
	r.Method(http.MethodPost, "/auth/forgot-password",
		middlewares.ChainFunc(h.forgot, middlewares.WithRateLimit(h.Limiter)))
	r.Post("/auth/reset-password", h.reset)
}

func (h *PasswordHandler) forgot(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if !httpx.ReadJSON(w, r, &in) {
		return
	}

	msg, err := h.Svc.ForgotPassword(r.Context(), in.Email)
	if err != nil {
		writeInternal(w, r, "forgot password", err)
		return
	}
	// siempre 200 con el mismo body, exista o no la cuenta
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func (h *PasswordHandler) reset(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	if !h.Policy.Validate(in.NewPassword) {
		httpx.WriteError(w, http.StatusBadRequest, "validation_error",
			"password must be 8-32 chars with upper, lower, digit and symbol", httpx.CodeValidation)
		return
	}

	msg, err := h.Svc.ResetPassword(r.Context(), in.Token, in.NewPassword)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			writeUnauthorized(w)
			return
		}
		writeInternal(w, r, "reset password", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": msg})
}
