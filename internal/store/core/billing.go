package core

import (
	"context"
	"time"
)

// Payment es el espejo local de un cargo de Stripe.
type Payment struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	StripeCharge string    `json:"stripe_charge"`
	AmountCents  int64     `json:"amount_cents"`
	Currency     string    `json:"currency"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// Subscription es el espejo local de una suscripción de Stripe. Se
// upserta cada vez que la vemos pasar (checkout, details, cancel).
type Subscription struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"user_id"`
	StripeSubscription string     `json:"stripe_subscription"`
	PriceID            string     `json:"price_id"`
	Status             string     `json:"status"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// BillingRepository persiste los espejos locales de billing.
type BillingRepository interface {
	RecordPayment(ctx context.Context, p *Payment) error
	UpsertSubscription(ctx context.Context, s *Subscription) error
	ListPayments(ctx context.Context, userID string) ([]*Payment, error)
}
