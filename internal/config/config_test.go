package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, AuthProviderGotrue, cfg.Auth.Provider)
	assert.Equal(t, DataProviderPostgres, cfg.Data.Provider)
	assert.Equal(t, "deploy-to-vercel", cfg.Deploy.FunctionName)
	assert.Equal(t, "app-previews", cfg.Kafka.Topic)
	assert.Equal(t, time.Second, cfg.Profile.RetryDelay)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("AUTH_PROVIDER", AuthProviderJWT)
	t.Setenv("DATA_PROVIDER", DataProviderPostgrest)
	t.Setenv("PROFILE_RETRY_DELAY_MS", "250")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("GO_ENV", "production")

	cfg := LoadConfig()

	assert.Equal(t, AuthProviderJWT, cfg.Auth.Provider)
	assert.Equal(t, DataProviderPostgrest, cfg.Data.Provider)
	assert.Equal(t, 250*time.Millisecond, cfg.Profile.RetryDelay)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.True(t, cfg.IsProduction())
}

func TestLoadEnvAsInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("SERVER_MAX_REQUESTS", "lots")
	assert.Equal(t, 100, loadEnvAsInt("SERVER_MAX_REQUESTS", 100))
}
