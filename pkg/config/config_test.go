package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, int64(10*1024*1024), cfg.Ingest.MaxFileSizeBytes)
	assert.Equal(t, 20, cfg.Ingest.MaxFiles)
	assert.Equal(t, 30*time.Minute, cfg.Ingest.CacheTTL)
	assert.Equal(t, 5*time.Minute, cfg.Ingest.CacheSweepInterval)
	assert.Equal(t, 2*time.Hour, cfg.Sessions.TTL)
	assert.Equal(t, time.Hour, cfg.Exports.SignedURLTTL)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 500, cfg.Calculator.CurveMaxPoints)
}

func TestOverridesAndFallbacks(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("SESSION_TTL", "not-a-duration")
	v.Set("INGEST_MAX_FILES", -1)
	v.Set("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	cfg := fromViper(v)

	assert.Equal(t, 2*time.Hour, cfg.Sessions.TTL)
	assert.Equal(t, 20, cfg.Ingest.MaxFiles)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}
