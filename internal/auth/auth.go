// Package auth is the identity backend: accounts, password checks and the
// signed-in session.
package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
)

var (
	ErrInvalidEmail       = errors.New("auth: invalid email")
	ErrEmailInUse         = errors.New("auth: email already registered")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrWeakPassword       = errors.New("auth: weak password")
)

// messages are the user-facing texts for the sentinel errors.
var messages = []struct {
	err  error
	text string
}{
	{ErrInvalidEmail, "The email address is badly formatted."},
	{ErrEmailInUse, "The email address is already in use by another account."},
	{ErrInvalidCredentials, "The supplied auth credential is incorrect, malformed or has expired."},
	{ErrWeakPassword, "The given password is invalid. Password should be at least 6 characters."},
}

// MinPasswordLength is the shortest password the backend accepts.
const MinPasswordLength = 6

// Backend authenticates users. Both SignIn and CreateUser leave the
// returned user signed in.
type Backend interface {
	SignIn(ctx context.Context, email, password string) (string, error)
	CreateUser(ctx context.Context, email, password string) (string, error)
	SignOut(ctx context.Context) error
	CurrentUser(ctx context.Context) (string, bool)
}

// NormalizeEmail trims and lower-cases an address and checks its syntax.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// Message is the text shown to the user for a backend failure.
func Message(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.text
		}
	}
	return err.Error()
}
