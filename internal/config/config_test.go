package config_test

import (
	"testing"

	"github.com/restoq/foodsupply-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "foodsupply", cfg.MongoDB.Database)
	assert.Equal(t, 24*60*60, cfg.JWT.ExpiresIn)
	assert.Equal(t, "X-Payment-Signature", cfg.Payment.SignatureHeader)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("FOODSUPPLY_TEST_KEY", "value")

	assert.Equal(t, "value", config.GetEnv("FOODSUPPLY_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", config.GetEnv("FOODSUPPLY_TEST_MISSING", "fallback"))
}
