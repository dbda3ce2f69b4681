package auth

import (
	"context"
	"fmt"

	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"

	"github.com/illegalcall/codeshell/internal/models"
)

// Session is what the auth modal receives after signing in or up. AccessToken is
// empty when the project requires email confirmation before the first sign in.
type Session struct {
	AccessToken  string       `json:"access_token,omitempty"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	ExpiresIn    int          `json:"expires_in,omitempty"`
	User         *models.User `json:"user"`
}

// Accounts performs account operations against the Supabase auth server.
type Accounts struct {
	client gotrue.Client
}

func NewAccounts(client gotrue.Client) *Accounts {
	return &Accounts{client: client}
}

func (a *Accounts) SignUp(ctx context.Context, email, password, username string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req := types.SignupRequest{
		Email:    email,
		Password: password,
	}
	if username != "" {
		req.Data = map[string]interface{}{"username": username}
	}
	resp, err := a.client.Signup(req)
	if err != nil {
		return nil, fmt.Errorf("signup failed: %w", err)
	}
	return &Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		User:         userFromGotrue(resp.User),
	}, nil
}

func (a *Accounts) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := a.client.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	return &Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		User:         userFromGotrue(resp.User),
	}, nil
}

// SignOut revokes the refresh tokens of the session that token belongs to.
func (a *Accounts) SignOut(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := a.client.WithToken(token).Logout(); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	return nil
}
