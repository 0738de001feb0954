package repository

import (
	"context"
	"database/sql"

	"github.com/oralable/oralable/internal/database"
)

// SessionRepo handles the signed-in session row.
type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Put replaces any existing session with s. One signed-in account at a time.
func (r *SessionRepo) Put(ctx context.Context, s Session) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
		INSERT INTO sessions(id, user_id, email, full_name, created_at)
		VALUES (?, ?, ?, ?, ?);
		`, s.ID, s.UserID, s.Email, s.FullName, s.CreatedAt)
		return err
	})
}

// Current returns the session row, or nil when signed out.
func (r *SessionRepo) Current(ctx context.Context) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, user_id, email, full_name, created_at FROM sessions LIMIT 1`)
	var s Session
	if err := row.Scan(&s.ID, &s.UserID, &s.Email, &s.FullName, &s.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Clear removes all session rows.
func (r *SessionRepo) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions`)
	return err
}
