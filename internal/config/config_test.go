package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseURL(t *testing.T) {
	t.Helper()
	t.Setenv("API_BASE_URL", "https://api.agefabric.test")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseURL(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "admin", cfg.AdminCookieName)
	assert.Empty(t, cfg.AdminJWTSecret)
	assert.Equal(t, 0, cfg.BackendMaxRetries)
	assert.Equal(t, 15*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 7*24*time.Hour, cfg.DraftTTL)
	assert.Equal(t, time.Hour, cfg.HandoffTTL)
	assert.Equal(t, MediaBackendMemory, cfg.MediaBackend)
	assert.False(t, cfg.AuditEnabled)
}

func TestLoad_MissingBaseURL(t *testing.T) {
	t.Setenv("API_BASE_URL", "")

	cfg, err := Load()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_BASE_URL is required")
}

func TestLoad_RelativeBaseURL(t *testing.T) {
	t.Setenv("API_BASE_URL", "/api")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absolute URL")
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	setBaseURL(t)
	t.Setenv("HTTP_PORT", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_MinioRequiresCredentials(t *testing.T) {
	setBaseURL(t)
	t.Setenv("MEDIA_BACKEND", "minio")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MINIO_ENDPOINT")

	t.Setenv("MINIO_ENDPOINT", "minio:9000")
	t.Setenv("MINIO_ACCESS_KEY", "key")
	t.Setenv("MINIO_SECRET_KEY", "secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "intake-media", cfg.MinioBucket)
}

func TestLoad_UnknownMediaBackend(t *testing.T) {
	setBaseURL(t)
	t.Setenv("MEDIA_BACKEND", "s3")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MEDIA_BACKEND")
}

func TestLoad_InvalidOTELSampleRate(t *testing.T) {
	setBaseURL(t)
	t.Setenv("OTEL_SAMPLE_RATE", "2.0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTEL_SAMPLE_RATE must be between 0.0 and 1.0")
}

func TestLoad_CustomTTLs(t *testing.T) {
	setBaseURL(t)
	t.Setenv("DRAFT_TTL", "48h")
	t.Setenv("HANDOFF_TTL", "15m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, cfg.DraftTTL)
	assert.Equal(t, 15*time.Minute, cfg.HandoffTTL)
}

func TestConfig_Derived(t *testing.T) {
	setBaseURL(t)
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("POSTGRES_PASSWORD", "pw")
	t.Setenv("OTEL_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "redis.internal:6379", cfg.RedisConfig().Addr())
	pc := cfg.PostgresConfig()
	assert.Equal(t, "postgres://catalog_admin:pw@localhost:5432/catalog_admin?sslmode=disable", pc.DSN())
	tc := cfg.TracingConfig()
	assert.True(t, tc.Enabled)
	assert.Equal(t, ServiceName, tc.ServiceName)
	assert.Equal(t, 500*time.Millisecond, cfg.SlowQueryThreshold())
}

func TestLoad_RateLimit(t *testing.T) {
	setBaseURL(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20.0, cfg.RateLimitRPS)
	assert.Equal(t, 40, cfg.RateLimitBurst)

	t.Setenv("RATE_LIMIT_BURST", "0")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RATE_LIMIT_BURST")

	t.Setenv("RATE_LIMIT_RPS", "0")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.RateLimitRPS)
}
