package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("STUDIO_DATABASE_URL", "postgres://studio@localhost/studio")
	t.Setenv("STUDIO_STRICT_REFERENCES", "true")
	t.Setenv("STUDIO_RATE_LIMIT_MAX", "10")

	cfg, err := loadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "postgres://studio@localhost/studio", cfg.DatabaseURL)
	assert.True(t, cfg.StrictReferences)
	assert.Equal(t, 10, cfg.RateLimit.Max)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, defaultAddr, cfg.Addr)
	assert.Equal(t, 15*time.Second, cfg.Graceful.ShutdownTimeout)
}

func TestApplyPlatformDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://platform/db")
	t.Setenv("PORT", "9090")

	cfg := Config{Addr: defaultAddr}
	cfg.applyPlatformDefaults()
	assert.Equal(t, "postgres://platform/db", cfg.DatabaseURL)
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr)

	cfg = Config{Addr: "127.0.0.1:7000", DatabaseURL: "postgres://explicit/db"}
	cfg.applyPlatformDefaults()
	assert.Equal(t, "postgres://explicit/db", cfg.DatabaseURL)
	assert.Equal(t, "127.0.0.1:7000", cfg.Addr)
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		DatabaseURL: "postgres://x",
		RateLimit:   RateLimitConfig{Max: 1, Window: time.Second},
	}
	require.NoError(t, valid.validate())

	noDB := valid
	noDB.DatabaseURL = ""
	assert.ErrorContains(t, noDB.validate(), "database URL is required")

	noMax := valid
	noMax.RateLimit.Max = 0
	assert.Error(t, noMax.validate())
}
