package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server   ServerConfig
	App      AppConfig
	Store    StoreConfig
	Catalog  CatalogConfig
	Notify   NotifyConfig
	Sync     SyncConfig
	Checkout CheckoutConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"tienda-local-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// StoreConfig holds the local persistent store settings.
type StoreConfig struct {
	Path           string `envconfig:"STORE_PATH" default:"./data/tienda.db"`
	LegacyCartPath string `envconfig:"STORE_LEGACY_CART_PATH" default:"./data/carrito-legacy.json"`
}

// CatalogConfig holds the bundled product catalog settings.
type CatalogConfig struct {
	Path string `envconfig:"CATALOG_PATH" default:"./data/productos.json"`
}

// NotifyConfig holds the cross-instance broadcast settings. Redis is
// optional; without it the counter stays consistent per instance only.
type NotifyConfig struct {
	Channel       string `envconfig:"NOTIFY_CHANNEL" default:"carrito-updates"`
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// SyncConfig holds pending-action replay settings. An empty endpoint keeps
// the queue as a local-only audit log.
type SyncConfig struct {
	Endpoint string        `envconfig:"SYNC_ENDPOINT" default:""`
	Interval time.Duration `envconfig:"SYNC_INTERVAL" default:"30s"`
	Timeout  time.Duration `envconfig:"SYNC_TIMEOUT" default:"10s"`
}

// CheckoutConfig holds the WhatsApp hand-off settings.
type CheckoutConfig struct {
	WhatsAppNumber string `envconfig:"CHECKOUT_WHATSAPP_NUMBER" default:"573113081706"`
	StoreName      string `envconfig:"CHECKOUT_STORE_NAME" default:"NKD Pereira"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (n *NotifyConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", n.RedisHost, n.RedisPort)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
