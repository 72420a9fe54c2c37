package pg

import (
	"context"

	"github.com/google/uuid"

	"github.com/dropDatabas3/launchbase/internal/store/core"
)

// RecordPayment persiste el espejo local de un cargo. Idempotente por
// stripe_charge: un retry del handler no duplica la fila.
func (s *Store) RecordPayment(ctx context.Context, p *core.Payment) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Currency == "" {
		p.Currency = "usd"
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO payments (id, user_id, stripe_charge, amount_cents, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (stripe_charge) DO UPDATE SET status = EXCLUDED.status`,
		p.ID, p.UserID, p.StripeCharge, p.AmountCents, p.Currency, p.Status,
	)
	return err
}

// UpsertSubscription refresca el espejo local de la suscripción.
func (s *Store) UpsertSubscription(ctx context.Context, sub *core.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO subscriptions (id, user_id, stripe_subscription, price_id, status, current_period_end)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (stripe_subscription) DO UPDATE SET
			status = EXCLUDED.status,
			price_id = EXCLUDED.price_id,
			current_period_end = EXCLUDED.current_period_end,
			updated_at = now()`,
		sub.ID, sub.UserID, sub.StripeSubscription, sub.PriceID, sub.Status, sub.CurrentPeriodEnd,
	)
	return err
}

func (s *Store) ListPayments(ctx context.Context, userID string) ([]*core.Payment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, stripe_charge, amount_cents, currency, status, created_at
		FROM payments WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*core.Payment
	for rows.Next() {
		var p core.Payment
		if err := rows.Scan(&p.ID, &p.UserID, &p.StripeCharge, &p.AmountCents, &p.Currency, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
