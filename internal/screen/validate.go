package screen

import (
	"strings"
	"unicode/utf8"

	"vapajomi/internal/auth"
	"vapajomi/internal/i18n"
)

// Field names a form input.
type Field int

const (
	FieldName Field = iota
	FieldEmail
	FieldPassword
	FieldConfirm
)

// FieldError is a validation failure shown next to its input.
type FieldError struct {
	Field   Field
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

// LoginForm is the login screen input, trimmed by Normalize.
type LoginForm struct {
	Email    string
	Password string
}

// RegisterForm is the registration screen input.
type RegisterForm struct {
	Name     string
	Email    string
	Password string
	Confirm  string
}

// Normalize trims every field.
func (f LoginForm) Normalize() LoginForm {
	return LoginForm{Email: strings.TrimSpace(f.Email), Password: strings.TrimSpace(f.Password)}
}

// Normalize trims every field.
func (f RegisterForm) Normalize() RegisterForm {
	return RegisterForm{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Password: strings.TrimSpace(f.Password),
		Confirm:  strings.TrimSpace(f.Confirm),
	}
}

// ValidateLogin checks a normalized form, first failure wins.
func ValidateLogin(f LoginForm) *FieldError {
	switch {
	case f.Email == "":
		return fieldError(FieldEmail, "field_email_required")
	case f.Password == "":
		return fieldError(FieldPassword, "field_password_required")
	case tooShort(f.Password):
		return fieldError(FieldPassword, "field_password_short")
	}
	return nil
}

// ValidateRegistration checks a normalized form, first failure wins.
func ValidateRegistration(f RegisterForm) *FieldError {
	switch {
	case f.Name == "":
		return fieldError(FieldName, "field_name_required")
	case f.Email == "":
		return fieldError(FieldEmail, "field_email_required")
	case f.Password == "":
		return fieldError(FieldPassword, "field_password_required")
	case tooShort(f.Password):
		return fieldError(FieldPassword, "field_password_short")
	case f.Password != f.Confirm:
		return fieldError(FieldConfirm, "field_password_mismatch")
	}
	return nil
}

func tooShort(password string) bool {
	return utf8.RuneCountInString(password) < auth.MinPasswordLength
}

func fieldError(field Field, key string) *FieldError {
	return &FieldError{Field: field, Message: i18n.T(key)}
}
