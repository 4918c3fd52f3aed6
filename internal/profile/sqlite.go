package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLite keeps profiles in the local database next to the accounts. The
// profiles table comes from the auth migrations.
type SQLite struct {
	db *sql.DB
}

// NewSQLite wraps an already migrated database.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) Get(ctx context.Context, id string) (Profile, error) {
	var name sql.NullString
	var email string
	err := s.db.QueryRowContext(ctx,
		`SELECT name, email FROM profiles WHERE id = ?`, id,
	).Scan(&name, &email)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	return Profile{ID: id, Name: name.String, Email: email}, nil
}

func (s *SQLite) Put(ctx context.Context, p Profile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, name, email) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		     name = excluded.name,
		     email = excluded.email,
		     updated_at = CURRENT_TIMESTAMP`,
		p.ID, p.Name, p.Email,
	)
	if err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}
