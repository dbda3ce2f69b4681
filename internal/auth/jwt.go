package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/illegalcall/codeshell/internal/models"
)

// Claims is the payload of a Supabase access token.
type Claims struct {
	Email        string                 `json:"email"`
	Role         string                 `json:"role"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// JWTProvider verifies Supabase access tokens locally with the project's JWT secret.
type JWTProvider struct {
	secret []byte
}

func NewJWTProvider(secret string) *JWTProvider {
	return &JWTProvider{secret: []byte(secret)}
}

func (p *JWTProvider) VerifyToken(_ context.Context, token string) (*models.User, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}

	return &models.User{
		ID:          claims.Subject,
		Email:       claims.Email,
		DisplayName: metadataString(claims.UserMetadata, "display_name", "full_name", "name", "username"),
		AvatarURL:   metadataString(claims.UserMetadata, "avatar_url", "picture"),
	}, nil
}
