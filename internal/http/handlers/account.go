package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/launchbase/internal/auth"
	httpx "github.com/dropDatabas3/launchbase/internal/http"
	"github.com/dropDatabas3/launchbase/internal/http/middlewares"
	jwtx "github.com/dropDatabas3/launchbase/internal/jwt"
)

// AccountHandler cubre detalle y actualización de cuenta. Ambas rutas
// van detrás de RequireAuth.
type AccountHandler struct {
	Svc    *auth.Service
	Issuer *jwtx.Issuer
}

func (h *AccountHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middlewares.RequireAuth(h.Issuer))
		r.Get("/auth/account/details", h.details)
		r.Post("/auth/account/update", h.update)
	})
}

func (h *AccountHandler) details(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", "email query param is required", httpx.CodeValidation)
		return
	}

	u, err := h.Svc.AccountDetails(r.Context(), email)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			writeUnauthorized(w)
			return
		}
		writeInternal(w, r, "account details", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

type accountUpdateIn struct {
	Email          string  `json:"email"`
	PrimaryContact *string `json:"primaryContact,omitempty"`
	CompanyName    *string `json:"companyName,omitempty"`
	CompanyWebsite *string `json:"companyWebsite,omitempty"`
	JobTitle       *string `json:"jobTitle,omitempty"`
	Industry       *string `json:"industry,omitempty"`
	CompanySize    *string `json:"companySize,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Location       *string `json:"location,omitempty"`
	LinkedIn       *string `json:"linkedin,omitempty"`
}

func (h *AccountHandler) update(w http.ResponseWriter, r *http.Request) {
	var in accountUpdateIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Email) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", "email is required", httpx.CodeValidation)
		return
	}

	msg, u, err := h.Svc.UpdateAccount(r.Context(), auth.UpdateAccountInput{
		Email:          in.Email,
		PrimaryContact: in.PrimaryContact,
		CompanyName:    in.CompanyName,
		CompanyWebsite: in.CompanyWebsite,
		JobTitle:       in.JobTitle,
		Industry:       in.Industry,
		CompanySize:    in.CompanySize,
		Phone:          in.Phone,
		Location:       in.Location,
		LinkedIn:       in.LinkedIn,
	})
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			writeUnauthorized(w)
			return
		}
		writeInternal(w, r, "account update", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": msg,
		"user":    u,
	})
}
