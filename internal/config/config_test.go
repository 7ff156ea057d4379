package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/shipping/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 300, cfg.CacheExpirySeconds)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL())
	assert.Equal(t, 5*time.Second, cfg.DPETimeout)
	assert.True(t, cfg.HomeDeliveryEnabled)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("CACHE_EXPIRY_SECONDS", "60")
	t.Setenv("DPE_USE_MOCK", "true")
	t.Setenv("PUDO_ENABLED", "false")

	cfg, err := config.Load("")

	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.CacheTTL())
	assert.True(t, cfg.DPEUseMock)
	assert.False(t, cfg.PUDOEnabled)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("REDIS_ADDR=cache:6380\nSTORAGE_USE_MEMORY=true\n"), 0o600))
	t.Setenv("REDIS_ADDR", "")
	os.Unsetenv("REDIS_ADDR")
	t.Setenv("STORAGE_USE_MEMORY", "")
	os.Unsetenv("STORAGE_USE_MEMORY")

	cfg, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, "cache:6380", cfg.RedisAddr)
	assert.True(t, cfg.StorageUseMemory)
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestLoad_RejectsNonPositiveTTL(t *testing.T) {
	for _, v := range []string{"0", "-5"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("CACHE_EXPIRY_SECONDS", v)
			_, err := config.Load("")
			assert.ErrorContains(t, err, "CACHE_EXPIRY_SECONDS")
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := &config.Config{Port: 8080, CacheExpirySeconds: 10, DPEUseMock: true, StorageUseMemory: true}
	assert.NoError(t, cfg.Validate())

	cfg.Port = 0
	assert.Error(t, cfg.Validate())

	cfg.Port = 8080
	cfg.DPEUseMock = false
	assert.ErrorContains(t, cfg.Validate(), "DPE_BASE_URL")
}

func TestConfig_Attributes(t *testing.T) {
	cfg := &config.Config{ServiceName: "shipping-options", Version: "1.0.0", CacheExpirySeconds: 60, DPEUseMock: true}

	attrs := map[string]interface{}{}
	for _, kv := range cfg.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}

	assert.Equal(t, "shipping-options", attrs["service.name"])
	assert.Equal(t, int64(60), attrs["cache.expiry_seconds"])
	assert.Equal(t, true, attrs["dpe.mock"])
	assert.Equal(t, false, attrs["storage.memory"])
}
