// Package config handles configuration for the server component, including
// defaults, a JSON or YAML file overlay, environment variables and
// command-line flags, applied in that order.
package config

import (
	"time"
)

// Config holds runtime settings for the GoalKeeper server.
//
// Fields:
//   - Addr: HTTP bind address.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey: HMAC secret for signing session cookies (HS256).
//   - SessionTTL: lifetime of a session cookie.
//   - RedisAddr: Redis address for logout revocations. Empty keeps them in memory.
//   - NATSURL: NATS endpoint for domain events. Empty disables publishing.
//   - OTLPEndpoint: OTLP/HTTP trace collector. Empty disables tracing.
//   - RateLimit: requests per minute per client on the auth routes.
//   - RetentionWindow: age after which completed daily goals are cleaned up.
type Config struct {
	Addr            string        `env:"ADDR, overwrite"`
	DatabaseDSN     string        `env:"DATABASE_DSN, overwrite"`
	SecretKey       string        `env:"SECRET_KEY, overwrite"`
	SessionTTL      time.Duration `env:"SESSION_TTL, overwrite"`
	CookieName      string        `env:"COOKIE_NAME, overwrite"`
	CookieSecure    bool          `env:"COOKIE_SECURE, overwrite"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS, overwrite"`
	RateLimit       int           `env:"RATE_LIMIT, overwrite"`
	RedisAddr       string        `env:"REDIS_ADDR, overwrite"`
	NATSURL         string        `env:"NATS_URL, overwrite"`
	OTLPEndpoint    string        `env:"OTLP_ENDPOINT, overwrite"`
	LogFormat       string        `env:"LOG_FORMAT, overwrite"`
	Debug           bool          `env:"DEBUG, overwrite"`
	RetentionWindow time.Duration `env:"RETENTION_WINDOW, overwrite"`
	BcryptCost      int           `env:"BCRYPT_COST, overwrite"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, overwrite"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey must be overridden in production.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.SessionTTL = 30 * 24 * time.Hour
	c.CookieName = "goalkeeper_session"
	c.CookieSecure = false
	c.AllowedOrigins = []string{"http://localhost:5173"}
	c.RateLimit = 20
	c.LogFormat = "json"
	c.RetentionWindow = 7 * 24 * time.Hour
	c.BcryptCost = 10
	c.ShutdownTimeout = 10 * time.Second
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional config file, the environment and finally command-line
// flags. Invalid input panics, as the server cannot start without a config.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg); err != nil {
		panic(err)
	}
	if err := parseEnv(cfg); err != nil {
		panic(err)
	}
	parseFlags(cfg)
	return cfg
}
