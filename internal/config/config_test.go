package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", "canteen.db")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("LOGIN_RATE_LIMIT", "3")

	cfg := Load()

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "canteen.db", cfg.DatabaseDSN)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, 3, cfg.LoginRateLimit)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.False(t, cfg.AllowStaffSignup)
}

func TestEnvHelpersFallBack(t *testing.T) {
	t.Setenv("CANTEEN_TEST_INT", "nope")
	t.Setenv("CANTEEN_TEST_BOOL", "maybe")

	assert.Equal(t, 7, getEnvInt("CANTEEN_TEST_INT", 7))
	assert.False(t, getEnvBool("CANTEEN_TEST_BOOL", false))
	assert.Equal(t, "x", getEnv("CANTEEN_TEST_MISSING", "x"))
}
