package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illegalcall/codeshell/internal/auth"
	"github.com/illegalcall/codeshell/internal/config"
	"github.com/illegalcall/codeshell/internal/pkg/supabase"
	"github.com/illegalcall/codeshell/internal/storage"
	"github.com/illegalcall/codeshell/internal/store"
)

func testClients() *supabase.Clients {
	return supabase.NewClients("http://localhost:54321", "anon", "service-key-for-tests")
}

func TestNewStore(t *testing.T) {
	cfg := &config.Config{Data: config.DataConfig{Provider: config.DataProviderMemory}}
	s, closeFn, err := newStore(context.Background(), cfg, testClients())
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &store.MemoryStore{}, s)

	cfg.Data.Provider = config.DataProviderPostgrest
	s, _, err = newStore(context.Background(), cfg, testClients())
	require.NoError(t, err)
	assert.IsType(t, &store.PostgrestStore{}, s)

	cfg.Data.Provider = "mongo"
	_, _, err = newStore(context.Background(), cfg, testClients())
	assert.Error(t, err)
}

func TestNewAuthProvider(t *testing.T) {
	cfg := &config.Config{Auth: config.AuthConfig{Provider: config.AuthProviderGotrue}}
	p, err := newAuthProvider(cfg, testClients())
	require.NoError(t, err)
	assert.IsType(t, &auth.GotrueProvider{}, p)

	cfg.Auth.Provider = config.AuthProviderJWT
	_, err = newAuthProvider(cfg, testClients())
	assert.Error(t, err, "short secrets are refused")

	cfg.Supabase.JWTSecret = "0123456789abcdef0123456789abcdef"
	p, err = newAuthProvider(cfg, testClients())
	require.NoError(t, err)
	assert.IsType(t, &auth.JWTProvider{}, p)
}

func TestNewStorage(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Backend: config.StorageLocal, TempDir: t.TempDir(), Bucket: "deployments"}}
	s, err := newStorage(cfg, testClients())
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalStorage{}, s)

	cfg.Storage.Backend = config.StorageSupabase
	s, err = newStorage(cfg, testClients())
	require.NoError(t, err)
	assert.IsType(t, &storage.SupabaseStorage{}, s)
}
