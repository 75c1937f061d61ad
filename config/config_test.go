package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/gym")
	t.Setenv("GYM_SERVICE_TOKEN", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5300", cfg.Port)
	assert.Equal(t, 10*time.Minute, cfg.ProfileCacheTTL)
	assert.Equal(t, "0 3 * * 1", cfg.SnapshotCron)
	assert.False(t, cfg.AllowDemoReset)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/gym")
	t.Setenv("GYM_SERVICE_TOKEN", "secret")
	t.Setenv("PROFILE_CACHE_TTL", "90s")
	t.Setenv("ALLOW_DEMO_RESET", "true")
	t.Setenv("TIMEZONE", "America/Bogota")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.ProfileCacheTTL)
	assert.True(t, cfg.AllowDemoReset)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, "America/Bogota", cfg.Location.String())
}

func TestLoadRequiresDatabaseAndToken(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("GYM_SERVICE_TOKEN", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/gym")
	t.Setenv("GYM_SERVICE_TOKEN", "secret")
	t.Setenv("TIMEZONE", "Mars/Olympus")

	_, err := Load()
	assert.Error(t, err)
}

func TestOriginsTrimsEntries(t *testing.T) {
	cfg := &Config{AllowedOrigins: " http://a.test , ,http://b.test"}
	assert.Equal(t, "http://a.test,http://b.test", cfg.Origins())
}
