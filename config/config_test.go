package config

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/inkwell-go/apperror"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/inkwell?sslmode=disable")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "auth_token", cfg.Auth.CookieName)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, http.SameSiteLaxMode, cfg.Auth.SameSite)
	assert.False(t, cfg.Auth.CookieSecure)
	assert.Equal(t, "/login", cfg.Auth.LoginPath)
	assert.Contains(t, cfg.Auth.PublicPaths, "/register")
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres://u:p@db:5432/inkwell?sslmode=disable", cfg.DB.DSN())
	assert.Equal(t, int64(4<<20), cfg.Upload.MaxImageBytes)
	assert.False(t, cfg.Upload.Enabled())
}

func TestLoadConfig_MissingSecretIsFatal(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/inkwell")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadConfig_ProductionSecureCookie(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.Auth.CookieSecure)
}

func TestLoadConfig_CollectsErrors(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SESSION_TTL", "soon")
	t.Setenv("SESSION_SAMESITE", "none")
	t.Setenv("DB_PORT", "five")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_TTL")
	assert.Contains(t, err.Error(), "SESSION_SAMESITE")
	assert.Contains(t, err.Error(), "DB_PORT")

	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.ConfigError, appErr.Type)
}

func TestLoadConfig_ComposesDSNFromParts(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "blog")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "inkwell")
	t.Setenv("DB_HOST", "pg")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres://blog:pw@pg:5432/inkwell?sslmode=disable", cfg.DB.DSN())
}

func TestLoadConfig_StrictSameSiteAndLists(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SESSION_SAMESITE", "Strict")
	t.Setenv("PROTECTED_PREFIXES", "/api/uploads, /drafts ,")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, http.SameSiteStrictMode, cfg.Auth.SameSite)
	assert.Equal(t, []string{"/api/uploads", "/drafts"}, cfg.Auth.ProtectedPrefixes)
}
