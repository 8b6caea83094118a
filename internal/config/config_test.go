package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, int64(16<<20), cfg.MaxBodyBytes)
	assert.Equal(t, BackendMemory, cfg.CatalogBackend)
	assert.Equal(t, BackendMemory, cfg.CartBackend)
	assert.Equal(t, 15*time.Minute, cfg.CartCacheTTL)
	assert.Equal(t, 30*time.Minute, cfg.OrderTTL)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Equal(t, "1234", cfg.AdminPassword)
	assert.Equal(t, "THB", cfg.Currency)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CART_BACKEND", "mongo")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("CART_CACHE_TTL", "2m")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, BackendMongo, cfg.CartBackend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2*time.Minute, cfg.CartCacheTTL)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ADMIN_USERNAME=owner\nCURRENCY=EUR\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("ADMIN_USERNAME")
		os.Unsetenv("CURRENCY")
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "owner", cfg.AdminUsername)
	assert.Equal(t, "EUR", cfg.Currency)
}

func TestLoad_InvalidBackend(t *testing.T) {
	t.Setenv("CATALOG_BACKEND", "postgres")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "unknown catalog backend")
}

func TestValidate(t *testing.T) {
	valid := Config{
		CatalogBackend: BackendSQLite,
		CartBackend:    BackendMongo,
		SessionSecret:  "s",
		MaxBodyBytes:   1,
		RateLimit:      1,
		RateBurst:      1,
	}
	require.NoError(t, valid.Validate())

	noSecret := valid
	noSecret.SessionSecret = ""
	assert.Error(t, noSecret.Validate())

	badCart := valid
	badCart.CartBackend = "redis"
	assert.Error(t, badCart.Validate())

	badLimit := valid
	badLimit.RateBurst = 0
	assert.Error(t, badLimit.Validate())
}
