package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/odyssey-erp/odyssey-auth/internal/auth"
	"github.com/odyssey-erp/odyssey-auth/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-auth/internal/platform/db"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv             string        `envconfig:"APP_ENV" default:"development"`
	AppAddr            string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout     time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout    time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout  time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`
	AppShutdownTimeout time.Duration `envconfig:"APP_SHUTDOWN_TIMEOUT" default:"10s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	PGDSN            string `envconfig:"PG_DSN"`
	PGMaxConns       int32  `envconfig:"PG_MAX_CONNS" default:"10"`
	PGConnectRetries uint64 `envconfig:"PG_CONNECT_RETRIES" default:"5"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer string        `envconfig:"JWT_ISSUER" default:"odyssey-auth"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	ScryptN         int           `envconfig:"SCRYPT_N" default:"16384"`
	ScryptR         int           `envconfig:"SCRYPT_R" default:"8"`
	ScryptP         int           `envconfig:"SCRYPT_P" default:"1"`
	ScryptKeyLen    int           `envconfig:"SCRYPT_KEY_LEN" default:"32"`
	ScryptSaltLen   int           `envconfig:"SCRYPT_SALT_LEN" default:"16"`
	HashTimeout     time.Duration `envconfig:"HASH_TIMEOUT" default:"5s"`
	HashConcurrency int64         `envconfig:"HASH_CONCURRENCY" default:"0"`

	// ExposeCredential keeps the hashed credential in register responses.
	ExposeCredential bool `envconfig:"EXPOSE_CREDENTIAL" default:"true"`

	RateLimitPerMinute int      `envconfig:"RATE_LIMIT_PER_MINUTE" default:"60"`
	CORSOrigins        []string `envconfig:"CORS_ORIGINS"`

	WorkerConcurrency int    `envconfig:"WORKER_CONCURRENCY" default:"5"`
	WorkerMetricsAddr string `envconfig:"WORKER_METRICS_ADDR" default:":9091"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("jwt secret must be provided")
	}
	if c.PGDSN == "" && !c.AllowsMemoryStore() {
		return fmt.Errorf("PG_DSN must be provided when APP_ENV=%s", c.AppEnv)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if err := c.HashParams().Validate(); err != nil {
		return err
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// AllowsMemoryStore reports whether users may be kept in process memory
// when no database is configured.
func (c *Config) AllowsMemoryStore() bool {
	return c != nil && (c.AppEnv == "test" || c.AppEnv == "development")
}

// RedisOptions returns the Redis connection settings shared by the cache
// client and the job queue.
func (c *Config) RedisOptions() cache.Options {
	return cache.Options{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB}
}

// DBOptions returns the Postgres pool settings.
func (c *Config) DBOptions() db.Options {
	return db.Options{MaxConns: c.PGMaxConns, ConnectRetries: c.PGConnectRetries}
}

// HashParams returns the scrypt parameters.
func (c *Config) HashParams() auth.HashParams {
	return auth.HashParams{
		N:       c.ScryptN,
		R:       c.ScryptR,
		P:       c.ScryptP,
		KeyLen:  c.ScryptKeyLen,
		SaltLen: c.ScryptSaltLen,
	}
}
