package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Env      string // Env is the current environment: local, development, production.
	Database DatabaseConfig
	Server   ServerConfig
	Listing  ListingConfig
	Currency CurrencyConfig
	AMQP     AMQPConfig
	Local    LocalConfig
}

// DatabaseConfig holds document store connection settings
type DatabaseConfig struct {
	Driver             string // postgres or sqlite3
	DSN                string // full connection string, used when set
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
	Migrate            bool
}

// ServerConfig holds REST relay configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins []string
	StaticDir      string
}

// ListingConfig holds pagination settings
type ListingConfig struct {
	PageSize     int
	DefaultLimit int
	MaxLimit     int
}

// CurrencyConfig points at the static conversion table
type CurrencyConfig struct {
	Base      string
	RatesFile string
}

// AMQPConfig holds the inquiry notification queue settings.
// An empty URL disables publishing.
type AMQPConfig struct {
	URL   string
	Queue string
}

// LocalConfig holds the path of the persisted local browse state
type LocalConfig struct {
	StatePath string
}

// Load reads configuration from an optional .env file and environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	driver := v.GetString("DB_DRIVER")
	if driver != "postgres" && driver != "sqlite3" {
		return nil, fmt.Errorf("config: unsupported DB_DRIVER %q (want postgres or sqlite3)", driver)
	}

	cfg := &Config{
		Env: v.GetString("APP_ENV"),
		Database: DatabaseConfig{
			Driver:             driver,
			DSN:                firstNonEmpty(v.GetString("DATABASE_URL"), v.GetString("PG_DSN")),
			Host:               v.GetString("PG_HOST"),
			Port:               v.GetInt("PG_PORT"),
			User:               v.GetString("PG_USER"),
			Password:           v.GetString("PG_PASSWORD"),
			Database:           v.GetString("PG_DATABASE"),
			SSLMode:            v.GetString("PG_SSLMODE"),
			MaxConnections:     v.GetInt("DB_MAX_CONNECTIONS"),
			MaxIdleConnections: v.GetInt("DB_MAX_IDLE_CONNECTIONS"),
			Migrate:            v.GetBool("DB_MIGRATE"),
		},
		Server: ServerConfig{
			Port:           v.GetInt("SERVER_PORT"),
			Host:           v.GetString("SERVER_HOST"),
			GinMode:        v.GetString("GIN_MODE"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			StaticDir:      v.GetString("STATIC_DIR"),
		},
		Listing: ListingConfig{
			PageSize:     v.GetInt("LISTING_PAGE_SIZE"),
			DefaultLimit: v.GetInt("LISTING_DEFAULT_LIMIT"),
			MaxLimit:     v.GetInt("LISTING_MAX_LIMIT"),
		},
		Currency: CurrencyConfig{
			Base:      strings.ToUpper(v.GetString("CURRENCY_BASE")),
			RatesFile: v.GetString("CURRENCY_RATES_FILE"),
		},
		AMQP: AMQPConfig{
			URL:   v.GetString("AMQP_URL"),
			Queue: v.GetString("AMQP_INQUIRY_QUEUE"),
		},
		Local: LocalConfig{
			StatePath: v.GetString("LOCAL_STATE_PATH"),
		},
	}

	if cfg.Listing.PageSize <= 0 {
		return nil, fmt.Errorf("config: LISTING_PAGE_SIZE must be positive, got %d", cfg.Listing.PageSize)
	}
	if cfg.Listing.MaxLimit < cfg.Listing.DefaultLimit {
		cfg.Listing.MaxLimit = cfg.Listing.DefaultLimit
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "production")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("PG_HOST", "localhost")
	v.SetDefault("PG_PORT", 5432)
	v.SetDefault("PG_USER", "postgres")
	v.SetDefault("PG_PASSWORD", "")
	v.SetDefault("PG_DATABASE", "residence")
	v.SetDefault("PG_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNECTIONS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNECTIONS", 5)
	v.SetDefault("DB_MIGRATE", true)

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("STATIC_DIR", "./web")

	v.SetDefault("LISTING_PAGE_SIZE", 6)
	v.SetDefault("LISTING_DEFAULT_LIMIT", 50)
	v.SetDefault("LISTING_MAX_LIMIT", 200)

	v.SetDefault("CURRENCY_BASE", "USD")
	v.SetDefault("CURRENCY_RATES_FILE", "")

	v.SetDefault("AMQP_URL", "")
	v.SetDefault("AMQP_INQUIRY_QUEUE", "inquiries")

	v.SetDefault("LOCAL_STATE_PATH", "residence-state.json")
}

// GetDSN returns the connection string for the configured driver
func (c *Config) GetDSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}

	if c.Database.Driver == "sqlite3" {
		return c.Database.Database + ".db"
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// Helper functions

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
