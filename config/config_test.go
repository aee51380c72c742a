package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.edu/, https://b.example.edu")
	t.Setenv("ACTIVE_USER_WINDOW", "2m")
	t.Setenv("STATS_CACHE_TTL", "not-a-duration")
	t.Setenv("RATE_LIMIT_GLOBAL_THRESHOLD", "abc")

	cfg, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"https://a.example.edu", "https://b.example.edu"}, cfg.AllowedOrigins)
	assert.Equal(t, 2*time.Minute, cfg.ActiveUserWindow)
	assert.Equal(t, time.Minute, cfg.StatsCacheTTL)
	assert.Equal(t, 120, cfg.RateLimitGlobalThreshold)
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("SOME_FLAG", "true")
	assert.True(t, getEnvBool("SOME_FLAG", false))
	t.Setenv("SOME_FLAG", "nope")
	assert.False(t, getEnvBool("SOME_FLAG", false))
}

func TestStorageConfigured(t *testing.T) {
	cfg := &Config{S3Bucket: "b", S3AccessKey: "k"}
	assert.False(t, cfg.StorageConfigured())
	cfg.S3SecretKey = "s"
	assert.True(t, cfg.StorageConfigured())
}
