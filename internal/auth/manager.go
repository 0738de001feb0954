// Package auth owns the sign-in session: who is signed in, the last
// sign-in error, and session persistence. Screens read published state
// and call HandleSignIn/SignOut; they never write state themselves.
package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/oralable/oralable/internal/database"
	"github.com/oralable/oralable/internal/database/repository"
	"github.com/oralable/oralable/internal/logging"
	"github.com/oralable/oralable/internal/pubsub"
)

// State is the published authentication snapshot.
type State struct {
	Authenticated bool
	UserID        string
	Email         string
	FullName      string
	Err           string // last sign-in error, empty when none
}

// Manager is the single writer of authentication state.
type Manager struct {
	store  *pubsub.Store[State]
	repo   *repository.SessionRepo
	tokens TokenStore
	log    logging.Logger
}

// NewManager restores any persisted session so a restart stays signed in.
func NewManager(ctx context.Context, repo *repository.SessionRepo, tokens TokenStore, log logging.Logger) (*Manager, error) {
	if log == nil {
		log = logging.Nop{}
	}
	m := &Manager{
		store:  pubsub.NewStore(State{}),
		repo:   repo,
		tokens: tokens,
		log:    log.With("component", "auth"),
	}
	if repo != nil {
		s, err := repo.Current(ctx)
		if err != nil {
			return nil, err
		}
		if s != nil {
			st := State{Authenticated: true, UserID: s.UserID}
			if s.Email != nil {
				st.Email = *s.Email
			}
			if s.FullName != nil {
				st.FullName = *s.FullName
			}
			m.store.Set(st)
			m.log.Info(ctx, "session restored", "user", s.UserID)
		}
	}
	return m, nil
}

// State returns the current snapshot.
func (m *Manager) State() State { return m.store.Get() }

// IsAuthenticated reports whether a session is active.
func (m *Manager) IsAuthenticated() bool { return m.store.Get().Authenticated }

// Subscribe observes published snapshots.
func (m *Manager) Subscribe(buffer int) (<-chan State, func()) {
	return m.store.Subscribe(buffer)
}

// DisplayName returns the full name, else the email local part, else "User".
func (m *Manager) DisplayName() string {
	st := m.store.Get()
	if name := strings.TrimSpace(st.FullName); name != "" {
		return name
	}
	if st.Email != "" {
		if at := strings.IndexByte(st.Email, '@'); at > 0 {
			return st.Email[:at]
		}
		return st.Email
	}
	return "User"
}

// HandleSignIn is the single entry point for a provider completion,
// success or failure. A failed result publishes the error and leaves
// authentication state untouched; a successful one persists the session
// and token, then publishes the authenticated state.
func (m *Manager) HandleSignIn(ctx context.Context, res CredentialResult) {
	if res.Err != nil {
		m.log.Warn(ctx, "sign-in failed", "err", res.Err)
		m.store.Update(func(st State) State {
			st.Err = res.Err.Error()
			return st
		})
		return
	}

	if m.repo != nil {
		s := repository.Session{
			ID:        uuid.NewString(),
			UserID:    res.UserID,
			CreatedAt: database.Now(),
		}
		if res.Email != "" {
			email := res.Email
			s.Email = &email
		}
		if res.FullName != "" {
			name := res.FullName
			s.FullName = &name
		}
		if err := m.repo.Put(ctx, s); err != nil {
			m.log.Error(ctx, "persist session", "err", err)
			m.store.Update(func(st State) State {
				st.Err = "could not save your session: " + err.Error()
				return st
			})
			return
		}
	}
	if m.tokens != nil && res.IdentityToken != "" {
		if err := m.tokens.StoreIdentityToken(res.UserID, res.IdentityToken); err != nil {
			m.log.Warn(ctx, "store identity token", "err", err)
		}
	}

	m.store.Set(State{
		Authenticated: true,
		UserID:        res.UserID,
		Email:         res.Email,
		FullName:      res.FullName,
	})
	m.log.Info(ctx, "signed in", "user", res.UserID)
}

// SignOut clears the session and token and publishes the signed-out
// state. It deliberately does not touch app-mode selection; each screen
// decides whether sign-out also forces re-selection.
func (m *Manager) SignOut(ctx context.Context) {
	st := m.store.Get()
	if m.repo != nil {
		if err := m.repo.Clear(ctx); err != nil {
			m.log.Error(ctx, "clear session", "err", err)
		}
	}
	if m.tokens != nil && st.UserID != "" {
		if err := m.tokens.DeleteIdentityToken(st.UserID); err != nil {
			m.log.Warn(ctx, "delete identity token", "err", err)
		}
	}
	m.store.Set(State{})
	m.log.Info(ctx, "signed out", "user", st.UserID)
}

// ClearError drops the last sign-in error after the user acknowledged it.
func (m *Manager) ClearError() {
	m.store.Update(func(st State) State {
		st.Err = ""
		return st
	})
}
