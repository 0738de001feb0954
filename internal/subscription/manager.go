// Package subscription owns the tier state shown by the tier picker and
// the settings summary. All writes go through the manager.
package subscription

import (
	"context"
	"errors"

	"github.com/oralable/oralable/internal/database"
	"github.com/oralable/oralable/internal/database/repository"
	"github.com/oralable/oralable/internal/logging"
	"github.com/oralable/oralable/internal/pubsub"
)

// ErrUpgradeUnavailable is returned while the purchase flow is not built.
var ErrUpgradeUnavailable = errors.New("subscription upgrades are not available yet")

// State is the published subscription snapshot.
type State struct {
	Tier Tier
}

// Manager is the single writer of subscription state.
type Manager struct {
	store     *pubsub.Store[State]
	repo      *repository.SubscriptionRepo
	accountID string
	log       logging.Logger
}

// NewManager loads the persisted tier for accountID, falling back to
// basic when the row is missing or carries an unknown tier.
func NewManager(ctx context.Context, repo *repository.SubscriptionRepo, accountID string, log logging.Logger) (*Manager, error) {
	if log == nil {
		log = logging.Nop{}
	}
	if accountID == "" {
		accountID = repository.AnonymousAccountID
	}
	m := &Manager{
		store:     pubsub.NewStore(State{Tier: TierBasic}),
		repo:      repo,
		accountID: accountID,
		log:       log.With("component", "subscription"),
	}
	if repo != nil {
		row, err := repo.Get(ctx, accountID)
		if err != nil {
			return nil, err
		}
		if row != nil {
			tier, err := ParseTier(row.Tier)
			if err != nil {
				m.log.Warn(ctx, "stored tier invalid, using basic", "tier", row.Tier)
				tier = TierBasic
			}
			m.store.Set(State{Tier: tier})
		}
	}
	return m, nil
}

// State returns the current snapshot.
func (m *Manager) State() State { return m.store.Get() }

// CurrentTier returns the active tier.
func (m *Manager) CurrentTier() Tier { return m.store.Get().Tier }

// Subscribe observes published snapshots.
func (m *Manager) Subscribe(buffer int) (<-chan State, func()) {
	return m.store.Subscribe(buffer)
}

// ResetToBasic persists and publishes the basic tier. Calling it while
// already basic is a state no-op, though the row timestamp still moves.
func (m *Manager) ResetToBasic(ctx context.Context) error {
	if err := m.persist(ctx, TierBasic); err != nil {
		return err
	}
	if m.CurrentTier() != TierBasic {
		m.log.Info(ctx, "tier reset", "tier", TierBasic)
	}
	m.store.Set(State{Tier: TierBasic})
	return nil
}

// Upgrade would start the purchase flow for tier. The flow does not
// exist yet; callers surface the returned error to the user.
func (m *Manager) Upgrade(ctx context.Context, tier Tier) error {
	m.log.Info(ctx, "upgrade requested", "tier", tier)
	return ErrUpgradeUnavailable
}

func (m *Manager) persist(ctx context.Context, tier Tier) error {
	if m.repo == nil {
		return nil
	}
	return m.repo.Upsert(ctx, repository.Subscription{
		AccountID: m.accountID,
		Tier:      string(tier),
		UpdatedAt: database.Now(),
	})
}
