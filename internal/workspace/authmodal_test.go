package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/illegalcall/codeshell/internal/apperr"
)

func TestAuthForm_Validate(t *testing.T) {
	tests := []struct {
		name    string
		form    AuthForm
		mode    AuthMode
		wantErr string
	}{
		{"ok signin", AuthForm{Email: " ada@example.com ", Password: "x"}, ModeSignIn, ""},
		{"missing fields", AuthForm{Email: "ada@example.com"}, ModeSignIn, "Email and password are required"},
		{"bad email", AuthForm{Email: "ada", Password: "secret1"}, ModeSignIn, "Email address is invalid"},
		{"short password on signup", AuthForm{Email: "ada@example.com", Password: "123"}, ModeSignUp, "Password must be at least 6 characters"},
		{"bad username", AuthForm{Email: "ada@example.com", Password: "secret1", Username: "a!"}, ModeSignUp, "Username must be 3-30 letters, digits or underscores"},
		{"ok signup", AuthForm{Email: "ada@example.com", Password: "secret1", Username: "ada_l"}, ModeSignUp, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate(tt.mode)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				assert.Equal(t, "ada@example.com", tt.form.Email)
				return
			}
			assert.True(t, apperr.Is(err, apperr.KindValidation))
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestAuthModal_Transitions(t *testing.T) {
	m := AuthModal{}.Opened("bogus")
	assert.True(t, m.Open)
	assert.Equal(t, ModeSignIn, m.Mode)

	m = m.Failed("Invalid login credentials").Switched()
	assert.Equal(t, ModeSignUp, m.Mode)
	assert.Empty(t, m.Error)

	closed := m.Closed()
	assert.False(t, closed.Open)
	assert.Equal(t, ModeSignUp, closed.Mode)
}
