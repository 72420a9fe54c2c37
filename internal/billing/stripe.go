// Package billing envuelve el SDK de Stripe detrás de una interfaz
// chica: clientes, cargos one-shot y suscripciones con checkout hosted.
package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"

	"github.com/dropDatabas3/launchbase/internal/observability/logger"
	"github.com/dropDatabas3/launchbase/internal/store/core"
)

// ErrPayment marca fallas que vienen de la pasarela (card declined,
// recurso inexistente, etc.) y no de infraestructura nuestra.
var ErrPayment = errors.New("payment_failed")

// Service es la fachada de billing. Todos los métodos reciben el
// usuario ya resuelto; la creación lazy del customer de Stripe pasa
// por ensureCustomer.
type Service struct {
	api    *client.API
	users  core.UserRepository
	mirror core.BillingRepository
}

// NewService arma la fachada. mirror puede ser nil (sin espejo local).
func NewService(secretKey string, users core.UserRepository, mirror core.BillingRepository) *Service {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Service{api: api, users: users, mirror: mirror}
}

// mirrorCharge persiste el espejo local del cargo. Best-effort: un
// fallo acá no revierte el cargo ya hecho en Stripe, sólo se loguea.
func (s *Service) mirrorCharge(ctx context.Context, userID string, ch *stripe.Charge) {
	if s.mirror == nil || ch == nil {
		return
	}
	err := s.mirror.RecordPayment(ctx, &core.Payment{
		UserID:       userID,
		StripeCharge: ch.ID,
		AmountCents:  ch.Amount,
		Currency:     string(ch.Currency),
		Status:       string(ch.Status),
	})
	if err != nil {
		logger.From(ctx).Warn("payment mirror failed",
			logger.UserID(userID), logger.String("charge", ch.ID), logger.Err(err))
	}
}

func (s *Service) mirrorSubscription(ctx context.Context, userID string, sub *stripe.Subscription) {
	if s.mirror == nil || sub == nil {
		return
	}
	rec := &core.Subscription{
		UserID:             userID,
		StripeSubscription: sub.ID,
		Status:             string(sub.Status),
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		rec.PriceID = sub.Items.Data[0].Price.ID
	}
	if sub.CurrentPeriodEnd > 0 {
		t := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		rec.CurrentPeriodEnd = &t
	}
	if err := s.mirror.UpsertSubscription(ctx, rec); err != nil {
		logger.From(ctx).Warn("subscription mirror failed",
			logger.UserID(userID), logger.String("subscription", sub.ID), logger.Err(err))
	}
}

// ensureCustomer devuelve el customer ID de Stripe del usuario,
// creándolo (y persistiéndolo) la primera vez.
func (s *Service) ensureCustomer(ctx context.Context, u *core.User) (string, error) {
	if u.StripeCustomerID != "" {
		return u.StripeCustomerID, nil
	}
	params := &stripe.CustomerParams{
		Email: stripe.String(u.Email),
		Name:  stripe.String(u.Name),
	}
	params.Context = ctx
	cust, err := s.api.Customers.New(params)
	if err != nil {
		return "", wrapStripe(err)
	}
	if err := s.users.SetStripeCustomerID(ctx, u.ID, cust.ID); err != nil {
		return "", fmt.Errorf("persist customer id: %w", err)
	}
	u.StripeCustomerID = cust.ID
	logger.From(ctx).Info("stripe customer created",
		logger.UserID(u.ID), logger.String("customer", cust.ID))
	return cust.ID, nil
}

// --- Cargos ---

type ChargeInput struct {
	AmountCents int64
	Currency    string // default "usd"
	Source      string // token de tarjeta (tok_...)
	Description string
}

func (s *Service) CreateCharge(ctx context.Context, u *core.User, in ChargeInput) (*stripe.Charge, error) {
	cust, err := s.ensureCustomer(ctx, u)
	if err != nil {
		return nil, err
	}
	cur := in.Currency
	if cur == "" {
		cur = "usd"
	}
	params := &stripe.ChargeParams{
		Amount:      stripe.Int64(in.AmountCents),
		Currency:    stripe.String(cur),
		Customer:    stripe.String(cust),
		Description: stripe.String(in.Description),
	}
	params.Context = ctx
	if in.Source != "" {
		if err := params.SetSource(in.Source); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPayment, err)
		}
	}
	ch, err := s.api.Charges.New(params)
	if err != nil {
		return nil, wrapStripe(err)
	}
	s.mirrorCharge(ctx, u.ID, ch)
	return ch, nil
}

func (s *Service) GetCharge(ctx context.Context, chargeID string) (*stripe.Charge, error) {
	params := &stripe.ChargeParams{}
	params.Context = ctx
	ch, err := s.api.Charges.Get(chargeID, params)
	if err != nil {
		return nil, wrapStripe(err)
	}
	return ch, nil
}

// ListCharges devuelve los cargos del customer del usuario (vacío si
// todavía no tiene customer).
func (s *Service) ListCharges(ctx context.Context, u *core.User, limit int64) ([]*stripe.Charge, error) {
	if u.StripeCustomerID == "" {
		return nil, nil
	}
	params := &stripe.ChargeListParams{Customer: stripe.String(u.StripeCustomerID)}
	params.Context = ctx
	if limit > 0 {
		params.Limit = stripe.Int64(limit)
	}
	var out []*stripe.Charge
	it := s.api.Charges.List(params)
	for it.Next() {
		out = append(out, it.Charge())
	}
	if err := it.Err(); err != nil {
		return nil, wrapStripe(err)
	}
	return out, nil
}

// --- Suscripciones ---

type CheckoutInput struct {
	PriceID    string
	SuccessURL string
	CancelURL  string
	TrialDays  int64 // 0 = sin trial
}

// CreateCheckoutSession arma una sesión hosted de Checkout en modo
// suscripción y devuelve la URL a la que redirigir al usuario.
func (s *Service) CreateCheckoutSession(ctx context.Context, u *core.User, in CheckoutInput) (*stripe.CheckoutSession, error) {
	cust, err := s.ensureCustomer(ctx, u)
	if err != nil {
		return nil, err
	}
	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(cust),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{
			string(stripe.PaymentMethodTypeCard),
		}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(in.PriceID),
			Quantity: stripe.Int64(1),
		}},
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
	}
	params.Context = ctx
	if in.TrialDays > 0 {
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			TrialPeriodDays: stripe.Int64(in.TrialDays),
		}
	}
	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, wrapStripe(err)
	}
	return sess, nil
}

// SubscriptionDetails devuelve la suscripción activa del usuario, con
// el último invoice expandido. Sin suscripción -> core.ErrNotFound.
func (s *Service) SubscriptionDetails(ctx context.Context, u *core.User) (*stripe.Subscription, error) {
	if u.StripeCustomerID == "" {
		return nil, core.ErrNotFound
	}
	params := &stripe.SubscriptionListParams{Customer: stripe.String(u.StripeCustomerID)}
	params.Context = ctx
	params.AddExpand("data.latest_invoice.payment_intent")
	it := s.api.Subscriptions.List(params)
	for it.Next() {
		sub := it.Subscription()
		if sub.Status == stripe.SubscriptionStatusCanceled {
			continue
		}
		s.mirrorSubscription(ctx, u.ID, sub)
		return sub, nil
	}
	if err := it.Err(); err != nil {
		return nil, wrapStripe(err)
	}
	return nil, core.ErrNotFound
}

// CancelSubscription cancela la suscripción activa. atPeriodEnd deja el
// acceso hasta el fin del período pago; false cancela al instante.
func (s *Service) CancelSubscription(ctx context.Context, u *core.User, atPeriodEnd bool) (*stripe.Subscription, error) {
	sub, err := s.SubscriptionDetails(ctx, u)
	if err != nil {
		return nil, err
	}
	if atPeriodEnd {
		params := &stripe.SubscriptionParams{CancelAtPeriodEnd: stripe.Bool(true)}
		params.Context = ctx
		out, err := s.api.Subscriptions.Update(sub.ID, params)
		if err != nil {
			return nil, wrapStripe(err)
		}
		s.mirrorSubscription(ctx, u.ID, out)
		return out, nil
	}
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	out, err := s.api.Subscriptions.Cancel(sub.ID, params)
	if err != nil {
		return nil, wrapStripe(err)
	}
	s.mirrorSubscription(ctx, u.ID, out)
	return out, nil
}

// BillingHistory lista los invoices del customer (vacío sin customer).
func (s *Service) BillingHistory(ctx context.Context, u *core.User, limit int64) ([]*stripe.Invoice, error) {
	if u.StripeCustomerID == "" {
		return nil, nil
	}
	params := &stripe.InvoiceListParams{Customer: stripe.String(u.StripeCustomerID)}
	params.Context = ctx
	if limit > 0 {
		params.Limit = stripe.Int64(limit)
	}
	var out []*stripe.Invoice
	it := s.api.Invoices.List(params)
	for it.Next() {
		out = append(out, it.Invoice())
	}
	if err := it.Err(); err != nil {
		return nil, wrapStripe(err)
	}
	return out, nil
}

// wrapStripe normaliza errores del SDK: los *stripe.Error (rechazos de
// la pasarela) se marcan como ErrPayment, el resto sube tal cual.
func wrapStripe(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		return fmt.Errorf("%w: %s", ErrPayment, se.Msg)
	}
	return err
}
