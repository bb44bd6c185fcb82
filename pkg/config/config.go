package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// DBConfig holds database configuration
type DBConfig struct {
	Host            string        `env:"DB_HOST" envDefault:"localhost"`
	Port            string        `env:"DB_PORT" envDefault:"5432"`
	User            string        `env:"DB_USER" envDefault:"postgres"`
	Password        string        `env:"DB_PASSWORD" envDefault:"password"`
	DBName          string        `env:"DB_NAME"`
	SSLMode         string        `env:"DB_SSL_MODE" envDefault:"disable"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"100"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
	LogLevel        string        `env:"DB_LOG_LEVEL" envDefault:"warn"`
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// GormLogLevel maps the configured level name onto gorm's logger levels.
func (c *DBConfig) GormLogLevel() logger.LogLevel {
	switch strings.ToLower(c.LogLevel) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string        `env:"SERVER_PORT" envDefault:"8080"`
	Env             string        `env:"APP_ENV" envDefault:"development"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SigningKey      string `env:"JWT_SIGNING_KEY" envDefault:"defaultsecretkey"`
	ExpirationHours int    `env:"JWT_EXPIRATION_HOURS" envDefault:"24"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string `env:"METRICS_PREFIX"`
}

// TenancyConfig holds the values the tenant resolver treats as constants.
type TenancyConfig struct {
	RootDomain         string   `env:"ROOT_DOMAIN" envDefault:"localhost"`
	PreviewPathPrefix  string   `env:"PREVIEW_PATH_PREFIX" envDefault:"/preview"`
	ReservedSubdomains []string `env:"RESERVED_SUBDOMAINS" envSeparator:"," envDefault:"www,admin,api,app,preview,static,mail"`
}

// RedisConfig holds the tenant cache configuration. An empty URL disables the cache.
type RedisConfig struct {
	URL            string        `env:"REDIS_URL"`
	TenantCacheTTL time.Duration `env:"TENANT_CACHE_TTL" envDefault:"1m"`
}

// RateLimitConfig holds the storefront rate limiter settings
type RateLimitConfig struct {
	RequestsPerSecond float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	Burst             int     `env:"RATE_LIMIT_BURST" envDefault:"40"`
}

// Config holds all configuration
type Config struct {
	ServiceName string
	DB          DBConfig
	Server      ServerConfig
	JWT         JWTConfig
	Log         LogConfig
	Metrics     MetricsConfig
	Tenancy     TenancyConfig
	Redis       RedisConfig
	RateLimit   RateLimitConfig
}

// Load loads configuration from the environment, reading a .env file first when present
func Load(serviceName string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	config := &Config{ServiceName: serviceName}
	if err := env.Parse(config); err != nil {
		return nil, errors.Wrap(err, "failed to parse environment")
	}

	if config.DB.DBName == "" {
		config.DB.DBName = serviceName
	}
	if config.Metrics.Prefix == "" {
		config.Metrics.Prefix = serviceName
	}
	config.Tenancy.RootDomain = strings.ToLower(strings.TrimSpace(config.Tenancy.RootDomain))

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks values that would otherwise fail late at request time
func (c *Config) Validate() error {
	if c.Tenancy.RootDomain == "" {
		return errors.New("ROOT_DOMAIN must not be empty")
	}
	if !strings.HasPrefix(c.Tenancy.PreviewPathPrefix, "/") || len(c.Tenancy.PreviewPathPrefix) < 2 {
		return errors.Errorf("PREVIEW_PATH_PREFIX must start with '/' and name a segment, got %q", c.Tenancy.PreviewPathPrefix)
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.JWT.ExpirationHours <= 0 {
		return errors.New("JWT_EXPIRATION_HOURS must be positive")
	}
	return nil
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("db_host", c.DB.Host),
		zap.String("db_port", c.DB.Port),
		zap.String("db_user", c.DB.User),
		zap.String("db_name", c.DB.DBName),
		zap.String("server_port", c.Server.Port),
		zap.String("root_domain", c.Tenancy.RootDomain),
		zap.String("preview_prefix", c.Tenancy.PreviewPathPrefix),
		zap.Bool("tenant_cache", c.Redis.URL != ""),
	}
}
