package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("BACKEND", "LOCAL")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("BACKEND_TIMEOUT_SECONDS", "abc")
	t.Setenv("EMAIL_TEST_MODE", "off")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("OFFICE_PASSWORD_HASH", "")

	cfg := Load()
	assert.Equal(t, BackendLocal, cfg.Backend)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.Equal(t, 15, cfg.BackendTimeoutSeconds)
	assert.False(t, cfg.EmailTestMode)
	assert.Equal(t, "BKS", cfg.KodePrefix)
	assert.NotEmpty(t, cfg.SessionSecret)
	assert.False(t, cfg.OfficeAuthEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("FLAG_A", "yes")
	t.Setenv("FLAG_B", "0")
	t.Setenv("FLAG_C", "maybe")

	assert.True(t, getEnvBool("FLAG_A", false))
	assert.False(t, getEnvBool("FLAG_B", true))
	assert.True(t, getEnvBool("FLAG_C", true))
	assert.False(t, getEnvBool("FLAG_MISSING", false))
}

func TestValidateSessionSecret(t *testing.T) {
	assert.NoError(t, ValidateSessionSecret("change-me", "development"))
	assert.NoError(t, ValidateSessionSecret("a-very-long-random-secret-value-0123456789", "production"))
}

func TestGenerateSecureSecret(t *testing.T) {
	a, b := GenerateSecureSecret(), GenerateSecureSecret()
	assert.Len(t, a, 44)
	assert.NotEqual(t, a, b)
}
