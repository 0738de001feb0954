package repository

import (
	"context"
	"database/sql"

	"github.com/oralable/oralable/internal/database"
)

// SubscriptionRepo handles per-account tier rows.
type SubscriptionRepo struct {
	db *sql.DB
}

func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo {
	return &SubscriptionRepo{db: db}
}

func (r *SubscriptionRepo) Upsert(ctx context.Context, s Subscription) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO subscriptions(account_id, tier, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(account_id) DO UPDATE SET
	 tier=excluded.tier,
	 updated_at=excluded.updated_at;
	`, s.AccountID, s.Tier, s.UpdatedAt)
	return err
}

// EnsureDefault seeds the basic tier for the anonymous account so the
// tier picker always has state to reflect. Idempotent, safe on every
// startup.
func (r *SubscriptionRepo) EnsureDefault(ctx context.Context) error {
	existing, err := r.Get(ctx, AnonymousAccountID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return r.Upsert(ctx, Subscription{
		AccountID: AnonymousAccountID,
		Tier:      "basic",
		UpdatedAt: database.Now(),
	})
}

// Get returns the subscription for accountID, or nil when absent.
func (r *SubscriptionRepo) Get(ctx context.Context, accountID string) (*Subscription, error) {
	row := r.db.QueryRowContext(ctx, `SELECT account_id, tier, updated_at FROM subscriptions WHERE account_id = ?`, accountID)
	var s Subscription
	if err := row.Scan(&s.AccountID, &s.Tier, &s.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
