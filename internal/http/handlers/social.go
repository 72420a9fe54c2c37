package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/launchbase/internal/auth"
	httpx "github.com/dropDatabas3/launchbase/internal/http"
	"github.com/dropDatabas3/launchbase/internal/oauth"
)

// SocialHandler cubre login federado con Google y LinkedIn. signin y
// signup comparten flujo: find-or-create por email.
type SocialHandler struct {
	Svc *auth.Service
}

func (h *SocialHandler) Register(r chi.Router) {
	r.Post("/auth/google-signin", h.googleToken)
	r.Post("/auth/google-signup", h.googleToken)
	r.Post("/auth/google-callback", h.googleCallback)
	r.Post("/auth/linkedin-signin", h.linkedinToken)
	r.Post("/auth/linkedin-signup", h.linkedinToken)
	r.Post("/auth/linkedin-callback", h.linkedinCallback)
}

func (h *SocialHandler) googleToken(w http.ResponseWriter, r *http.Request) {
	var in struct {
		TokenID string `json:"tokenId"`
	}
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	h.respond(w, r, func(ctx context.Context) (*auth.UserSession, error) {
		return h.Svc.GoogleLogin(ctx, in.TokenID)
	})
}

func (h *SocialHandler) googleCallback(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Code string `json:"code"`
	}
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	h.respond(w, r, func(ctx context.Context) (*auth.UserSession, error) {
		return h.Svc.GoogleCallback(ctx, in.Code)
	})
}

func (h *SocialHandler) linkedinToken(w http.ResponseWriter, r *http.Request) {
	var in struct {
		AccessToken string `json:"accessToken"`
	}
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	h.respond(w, r, func(ctx context.Context) (*auth.UserSession, error) {
		return h.Svc.LinkedinLogin(ctx, in.AccessToken)
	})
}

func (h *SocialHandler) linkedinCallback(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Code string `json:"code"`
	}
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	h.respond(w, r, func(ctx context.Context) (*auth.UserSession, error) {
		return h.Svc.LinkedinCallback(ctx, in.Code)
	})
}

func (h *SocialHandler) respond(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context) (*auth.UserSession, error)) {
	out, err := fn(r.Context())
	if err != nil {
		// verificación/exchange del provider fallida -> 401, sin detalle
		if errors.Is(err, oauth.ErrInvalid) {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized",
				"provider assertion rejected", httpx.CodeFederation)
			return
		}
		if errors.Is(err, auth.ErrUnauthorized) {
			writeUnauthorized(w)
			return
		}
		writeInternal(w, r, "social login", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"token":        out.Token,
		"refreshToken": out.RefreshToken,
		"user":         out.User,
	})
}
