package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stripe/stripe-go/v81"

	"github.com/dropDatabas3/launchbase/internal/billing"
	httpx "github.com/dropDatabas3/launchbase/internal/http"
	"github.com/dropDatabas3/launchbase/internal/http/middlewares"
	jwtx "github.com/dropDatabas3/launchbase/internal/jwt"
	"github.com/dropDatabas3/launchbase/internal/store/core"
)

// BillingHandler cubre cargos y suscripciones. Todas las rutas van
// detrás de RequireAuth; el usuario sale de las claims del token.
type BillingHandler struct {
	Billing *billing.Service
	Users   core.UserRepository
	Issuer  *jwtx.Issuer

	// CheckoutPriceID/TrialDays: defaults del plan cuando el request no
	// trae priceId explícito.
	CheckoutPriceID string
	TrialDays       int64
}

func (h *BillingHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middlewares.RequireAuth(h.Issuer))

		r.Post("/stripe/charge", h.createCharge)
		r.Get("/stripe/charges", h.listCharges)
		r.Get("/stripe/charges/{chargeID}", h.getCharge)

		r.Post("/subscription/checkout", h.checkout)
		r.Get("/subscription/details", h.subscriptionDetails)
		r.Post("/subscription/cancel", h.cancelSubscription)
		r.Get("/subscription/history", h.history)
	})
}

// currentUser resuelve el usuario autenticado desde las claims.
func (h *BillingHandler) currentUser(w http.ResponseWriter, r *http.Request) *core.User {
	claims, ok := middlewares.GetClaims(r.Context())
	if !ok {
		writeUnauthorized(w)
		return nil
	}
	u, err := h.Users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeUnauthorized(w)
			return nil
		}
		writeInternal(w, r, "billing user lookup", err)
		return nil
	}
	return u
}

func writePaymentErr(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, billing.ErrPayment) {
		httpx.WriteError(w, http.StatusPaymentRequired, "payment_failed", err.Error(), httpx.CodePaymentFailed)
		return
	}
	writeInternal(w, r, op, err)
}

type chargeIn struct {
	Amount      int64  `json:"amount"` // en centavos
	Currency    string `json:"currency,omitempty"`
	Source      string `json:"source"`
	Description string `json:"description,omitempty"`
}

func (h *BillingHandler) createCharge(w http.ResponseWriter, r *http.Request) {
	u := h.currentUser(w, r)
	if u == nil {
		return
	}
	var in chargeIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	if in.Amount <= 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", "amount must be greater than zero", httpx.CodeValidation)
		return
	}

	ch, err := h.Billing.CreateCharge(r.Context(), u, billing.ChargeInput{
		AmountCents: in.Amount,
		Currency:    in.Currency,
		Source:      in.Source,
		Description: in.Description,
	})
	if err != nil {
		writePaymentErr(w, r, "create charge", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, ch)
}

func (h *BillingHandler) listCharges(w http.ResponseWriter, r *http.Request) {
	u := h.currentUser(w, r)
	if u == nil {
		return
	}
	charges, err := h.Billing.ListCharges(r.Context(), u, 50)
	if err != nil {
		writePaymentErr(w, r, "list charges", err)
		return
	}
	if charges == nil {
		charges = []*stripe.Charge{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"charges": charges})
}

func (h *BillingHandler) getCharge(w http.ResponseWriter, r *http.Request) {
	u := h.currentUser(w, r)
	if u == nil {
		return
	}
	ch, err := h.Billing.GetCharge(r.Context(), chi.URLParam(r, "chargeID"))
	if err != nil {
		writePaymentErr(w, r, "get charge", err)
		return
	}
	// un cargo de otro customer no se expone
	if ch.Customer == nil || ch.Customer.ID != u.StripeCustomerID {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "charge not found", httpx.CodeValidation)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ch)
}

type checkoutIn struct {
	PriceID    string `json:"priceId,omitempty"`
	SuccessURL string `json:"successUrl"`
	CancelURL  string `json:"cancelUrl"`
}

func (h *BillingHandler) checkout(w http.ResponseWriter, r *http.Request) {
	u := h.currentUser(w, r)
	if u == nil {
		return
	}
	var in checkoutIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	priceID := in.PriceID
	if priceID == "" {
		priceID = h.CheckoutPriceID
	}
	if priceID == "" || in.SuccessURL == "" || in.CancelURL == "" {
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", "priceId, successUrl and cancelUrl are required", httpx.CodeValidation)
		return
	}

	sess, err := h.Billing.CreateCheckoutSession(r.Context(), u, billing.CheckoutInput{
		PriceID:    priceID,
		SuccessURL: in.SuccessURL,
		CancelURL:  in.CancelURL,
		TrialDays:  h.TrialDays,
	})
	if err != nil {
		writePaymentErr(w, r, "create checkout", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]string{
		"sessionId": sess.ID,
		"url":       sess.URL,
	})
}

func (h *BillingHandler) subscriptionDetails(w http.ResponseWriter, r *http.Request) {
	u := h.currentUser(w, r)
	if u == nil {
		return
	}
	sub, err := h.Billing.SubscriptionDetails(r.Context(), u)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "no active subscription", httpx.CodeValidation)
			return
		}
		writePaymentErr(w, r, "subscription details", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sub)
}

type cancelIn struct {
	AtPeriodEnd bool `json:"atPeriodEnd"`
}

func (h *BillingHandler) cancelSubscription(w http.ResponseWriter, r *http.Request) {
	u := h.currentUser(w, r)
	if u == nil {
		return
	}
	var in cancelIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	sub, err := h.Billing.CancelSubscription(r.Context(), u, in.AtPeriodEnd)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "no active subscription", httpx.CodeValidation)
			return
		}
		writePaymentErr(w, r, "cancel subscription", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sub)
}

func (h *BillingHandler) history(w http.ResponseWriter, r *http.Request) {
	u := h.currentUser(w, r)
	if u == nil {
		return
	}
	invoices, err := h.Billing.BillingHistory(r.Context(), u, 50)
	if err != nil {
		writePaymentErr(w, r, "billing history", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"invoices": invoices})
}
