package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "jwt-secret")
	t.Setenv("API_MASTER_SECRET", "master-secret")
}

func TestFromEnv_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "")
	t.Setenv("DATA_PATH", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("GENERATE_TIMEOUT", "")
	t.Setenv("GIN_MODE", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "roster.db", cfg.DataPath)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Equal(t, "server", cfg.LogEnv)
	assert.Zero(t, cfg.GenerateTimeout)
}

func TestFromEnv_Timeout(t *testing.T) {
	setRequired(t)

	t.Setenv("GENERATE_TIMEOUT", "1500ms")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, cfg.GenerateTimeout)

	t.Setenv("GENERATE_TIMEOUT", "5")
	cfg, err = FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.GenerateTimeout)

	t.Setenv("GENERATE_TIMEOUT", "soon")
	_, err = FromEnv()
	assert.Error(t, err)
}

func TestFromEnv_MissingSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("API_MASTER_SECRET", "master-secret")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg := &Config{
		Port:            "http",
		DataPath:        "roster.db",
		JWTSecret:       "a",
		APIMasterSecret: "b",
		AdminUsername:   "admin",
		AdminPassword:   "admin123",
		LogEnv:          "server",
	}
	assert.Error(t, Validate(cfg))

	cfg.Port = "8080"
	assert.NoError(t, Validate(cfg))

	cfg.GinMode = "verbose"
	assert.Error(t, Validate(cfg))
}
