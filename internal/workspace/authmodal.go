package workspace

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/illegalcall/codeshell/internal/apperr"
)

type AuthMode string

const (
	ModeSignIn AuthMode = "signin"
	ModeSignUp AuthMode = "signup"
)

const minPasswordLength = 6

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

// AuthModal is the sign in / sign up dialog.
type AuthModal struct {
	Open  bool     `json:"open"`
	Mode  AuthMode `json:"mode"`
	Error string   `json:"error,omitempty"`
}

func (m AuthModal) Opened(mode AuthMode) AuthModal {
	if mode != ModeSignUp {
		mode = ModeSignIn
	}
	return AuthModal{Open: true, Mode: mode}
}

func (m AuthModal) Closed() AuthModal {
	return AuthModal{Mode: m.Mode}
}

// Switched flips between sign in and sign up and clears any error.
func (m AuthModal) Switched() AuthModal {
	if m.Mode == ModeSignUp {
		m.Mode = ModeSignIn
	} else {
		m.Mode = ModeSignUp
	}
	m.Error = ""
	return m
}

func (m AuthModal) Failed(msg string) AuthModal {
	m.Error = msg
	return m
}

// AuthForm is what the dialog submits.
type AuthForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
}

// Validate checks a form for the given mode and normalises the email.
func (f *AuthForm) Validate(mode AuthMode) error {
	f.Email = strings.TrimSpace(f.Email)
	if f.Email == "" || f.Password == "" {
		return apperr.Validation("Email and password are required")
	}
	if _, err := mail.ParseAddress(f.Email); err != nil {
		return apperr.Validation("Email address is invalid")
	}
	if mode == ModeSignUp {
		if len(f.Password) < minPasswordLength {
			return apperr.Validation("Password must be at least 6 characters")
		}
		if f.Username != "" {
			if err := ValidateUsername(f.Username); err != nil {
				return err
			}
		}
	}
	return nil
}

// ValidateUsername checks the username format shared by signup and profile edits.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return apperr.Validation("Username must be 3-30 letters, digits or underscores")
	}
	return nil
}
