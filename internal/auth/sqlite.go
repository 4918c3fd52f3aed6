package auth

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"golang.org/x/crypto/bcrypt"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLite stores accounts and the session in a local database.
type SQLite struct {
	db   *sql.DB
	cost int
}

// Option tweaks a SQLite backend.
type Option func(*SQLite)

// WithBcryptCost overrides the hashing cost; tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *SQLite) { s.cost = cost }
}

// OpenSQLite opens (creating if needed) the database file at path and
// migrates it. Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLite, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// One writer; also keeps an in-memory database alive across calls.
	db.SetMaxOpenConns(1)

	s, err := NewSQLite(ctx, db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLite migrates db and wraps it.
func NewSQLite(ctx context.Context, db *sql.DB, opts ...Option) (*SQLite, error) {
	if err := Migrate(ctx, db); err != nil {
		return nil, err
	}
	s := &SQLite{db: db, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	for _, r := range results {
		log.Debug("migration applied", "source", r.Source.Path, "took", r.Duration)
	}
	return nil
}

// DB is the underlying database; the profile store shares it.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) SignIn(ctx context.Context, email, password string) (string, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return "", err
	}

	var id, hash string
	err = s.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM accounts WHERE email = ?`, email,
	).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("lookup account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	if err := s.setSession(ctx, s.db, id); err != nil {
		return "", err
	}
	log.Info("signed in", "user", id)
	return id, nil
}

func (s *SQLite) CreateUser(ctx context.Context, email, password string) (string, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return "", err
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return "", ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: %v", ErrWeakPassword, err)
		}
		return "", fmt.Errorf("hash password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts WHERE email = ?`, email).Scan(&exists); err != nil {
		return "", fmt.Errorf("check email: %w", err)
	}
	if exists > 0 {
		return "", ErrEmailInUse
	}

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO accounts (id, email, password_hash) VALUES (?, ?, ?)`,
		id, email, string(hash),
	); err != nil {
		return "", fmt.Errorf("insert account: %w", err)
	}
	if err := s.setSession(ctx, tx, id); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}

	log.Info("account created", "user", id)
	return id, nil
}

func (s *SQLite) SignOut(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

func (s *SQLite) CurrentUser(ctx context.Context) (string, bool) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT account_id FROM session WHERE slot = 1`).Scan(&id)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Warn("read session", "err", err)
		}
		return "", false
	}
	return id, true
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLite) setSession(ctx context.Context, db execer, id string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO session (slot, account_id) VALUES (1, ?)
		 ON CONFLICT(slot) DO UPDATE SET account_id = excluded.account_id, signed_in = CURRENT_TIMESTAMP`,
		id,
	)
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}
