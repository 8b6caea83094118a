// Package config loads the storefront settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

type Config struct {
	HTTPPort        string        `envconfig:"HTTP_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s"`
	RequestTimeout  time.Duration `envconfig:"HTTP_REQUEST_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	MaxBodyBytes    int64         `envconfig:"MAX_REQUEST_BODY_BYTES" default:"16777216"`

	SessionSecret string `envconfig:"SESSION_SECRET" default:"storefront-dev-secret-change-me"`
	SecureCookies bool   `envconfig:"SECURE_COOKIES" default:"false"`

	CatalogBackend string `envconfig:"CATALOG_BACKEND" default:"memory"`
	DBPath         string `envconfig:"DB_PATH" default:"./storefront.db"`
	MigrationsPath string `envconfig:"MIGRATIONS_PATH" default:"./internal/catalog/migrations"`

	CartBackend  string        `envconfig:"CART_BACKEND" default:"memory"`
	MongoURI     string        `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDB      string        `envconfig:"MONGO_DB" default:"storefront"`
	MongoTimeout time.Duration `envconfig:"MONGO_TIMEOUT" default:"10s"`

	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CartCacheTTL  time.Duration `envconfig:"CART_CACHE_TTL" default:"15m"`
	OrderTTL      time.Duration `envconfig:"LAST_ORDER_TTL" default:"30m"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_ORDER_TOPIC" default:"checkout-completed"`

	AdminUsername string `envconfig:"ADMIN_USERNAME" default:"admin"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"1234"`
	UploadDir     string `envconfig:"UPLOAD_DIR" default:"./static/images"`
	StaticDir     string `envconfig:"STATIC_DIR" default:"./static"`

	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`
	RateLimit      float64  `envconfig:"RATE_LIMIT_RPS" default:"20"`
	RateBurst      int      `envconfig:"RATE_LIMIT_BURST" default:"40"`

	Currency       string `envconfig:"CURRENCY" default:"THB"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogDevelopment bool   `envconfig:"LOG_DEVELOPMENT" default:"false"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over .env entries.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.CatalogBackend {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("unknown catalog backend %q", c.CatalogBackend)
	}
	switch c.CartBackend {
	case BackendMemory, BackendMongo:
	default:
		return fmt.Errorf("unknown cart backend %q", c.CartBackend)
	}
	if c.SessionSecret == "" {
		return errors.New("session secret is required")
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("max request body size must be positive")
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return errors.New("rate limit and burst must be positive")
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + c.HTTPPort
}
