package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PLATFORM_FEE_RATE", "0.10")
	t.Setenv("JOB_TRANSITION_POLICY", "strict")
	t.Setenv("STORAGE_TYPE", "local")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.10, cfg.PlatformFeeRate)
	assert.Equal(t, TransitionPolicyStrict, cfg.JobTransitionPolicy)
	assert.Equal(t, int64(5*1024*1024), cfg.UploadMaxBytes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PLATFORM_FEE_RATE", "0.15")
	t.Setenv("JOB_TRANSITION_POLICY", "permissive")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("DB_MAX_CONNECTIONS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.15, cfg.PlatformFeeRate)
	assert.Equal(t, TransitionPolicyPermissive, cfg.JobTransitionPolicy)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, 25, cfg.DBMaxConnections)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			PlatformFeeRate:     0.10,
			JobTransitionPolicy: TransitionPolicyStrict,
			StorageType:         "local",
			RealtimeBroker:      "redis",
			StatsDispatch:       "inline",
			UploadMaxBytes:      1024,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"negative fee", func(c *Config) { c.PlatformFeeRate = -0.1 }, true},
		{"fee of one", func(c *Config) { c.PlatformFeeRate = 1 }, true},
		{"unknown policy", func(c *Config) { c.JobTransitionPolicy = "loose" }, true},
		{"s3 without bucket", func(c *Config) { c.StorageType = "s3" }, true},
		{"s3 with bucket", func(c *Config) { c.StorageType = "s3"; c.S3Bucket = "gigs" }, false},
		{"unknown broker", func(c *Config) { c.RealtimeBroker = "kafka" }, true},
		{"unknown dispatch", func(c *Config) { c.StatsDispatch = "cron" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
