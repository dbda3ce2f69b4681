package auth

import (
	"context"
	"fmt"

	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"

	"github.com/illegalcall/codeshell/internal/models"
)

// GotrueProvider verifies tokens against the Supabase auth server's /user endpoint.
type GotrueProvider struct {
	client gotrue.Client
}

func NewGotrueProvider(client gotrue.Client) *GotrueProvider {
	return &GotrueProvider{client: client}
}

func (p *GotrueProvider) VerifyToken(ctx context.Context, token string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := p.client.WithToken(token).GetUser()
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	return userFromGotrue(resp.User), nil
}

func userFromGotrue(u types.User) *models.User {
	return &models.User{
		ID:          u.ID.String(),
		Email:       u.Email,
		DisplayName: metadataString(u.UserMetadata, "display_name", "full_name", "name", "username"),
		AvatarURL:   metadataString(u.UserMetadata, "avatar_url", "picture"),
	}
}

// metadataString returns the first non-empty string value among keys.
func metadataString(meta map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := meta[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
