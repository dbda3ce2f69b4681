package main

import (
	"context"
	"fmt"

	"github.com/illegalcall/codeshell/internal/auth"
	"github.com/illegalcall/codeshell/internal/config"
	"github.com/illegalcall/codeshell/internal/pkg/supabase"
	"github.com/illegalcall/codeshell/internal/storage"
	"github.com/illegalcall/codeshell/internal/store"
	"github.com/illegalcall/codeshell/pkg/database"
)

// newStore returns the configured data provider and a func that releases it.
func newStore(ctx context.Context, cfg *config.Config, sb *supabase.Clients) (store.Store, func(), error) {
	switch cfg.Data.Provider {
	case config.DataProviderPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		if err := database.CreateTables(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store.NewPostgresStore(db), func() { db.Close() }, nil
	case config.DataProviderPostgrest:
		return store.NewPostgrestStore(sb.Rest), func() {}, nil
	case config.DataProviderMemory:
		return store.NewMemoryStore(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown data provider %q", cfg.Data.Provider)
}

func newAuthProvider(cfg *config.Config, sb *supabase.Clients) (auth.Provider, error) {
	switch cfg.Auth.Provider {
	case config.AuthProviderGotrue:
		return auth.NewGotrueProvider(sb.Auth), nil
	case config.AuthProviderJWT:
		if len(cfg.Supabase.JWTSecret) < 32 {
			return nil, fmt.Errorf("SUPABASE_JWT_SECRET must be at least 32 characters")
		}
		return auth.NewJWTProvider(cfg.Supabase.JWTSecret), nil
	}
	return nil, fmt.Errorf("unknown auth provider %q", cfg.Auth.Provider)
}

func newStorage(cfg *config.Config, sb *supabase.Clients) (storage.Storage, error) {
	switch cfg.Storage.Backend {
	case config.StorageLocal:
		return storage.NewLocalStorage(cfg.Storage.TempDir)
	case config.StorageSupabase:
		return storage.NewSupabaseStorage(sb.Storage, cfg.Storage.Bucket), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}
