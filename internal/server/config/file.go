package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/goalkeeper/internal/flagx"
	"github.com/dmitrijs2005/goalkeeper/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk form of Config. Durations accept both "15m" and
// integer nanoseconds. Absent keys leave the current value untouched.
type FileConfig struct {
	Addr            *string         `json:"addr" yaml:"addr"`
	DatabaseDSN     *string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey       *string         `json:"secret_key" yaml:"secret_key"`
	SessionTTL      *timex.Duration `json:"session_ttl" yaml:"session_ttl"`
	CookieName      *string         `json:"cookie_name" yaml:"cookie_name"`
	CookieSecure    *bool           `json:"cookie_secure" yaml:"cookie_secure"`
	AllowedOrigins  []string        `json:"allowed_origins" yaml:"allowed_origins"`
	RateLimit       *int            `json:"rate_limit" yaml:"rate_limit"`
	RedisAddr       *string         `json:"redis_addr" yaml:"redis_addr"`
	NATSURL         *string         `json:"nats_url" yaml:"nats_url"`
	OTLPEndpoint    *string         `json:"otlp_endpoint" yaml:"otlp_endpoint"`
	LogFormat       *string         `json:"log_format" yaml:"log_format"`
	Debug           *bool           `json:"debug" yaml:"debug"`
	RetentionWindow *timex.Duration `json:"retention_window" yaml:"retention_window"`
	BcryptCost      *int            `json:"bcrypt_cost" yaml:"bcrypt_cost"`
	ShutdownTimeout *timex.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// parseFile loads the config file named by -c/-config (or GOALKEEPER_CONFIG)
// into config. Files ending in .yaml or .yml are read as YAML, anything else
// as JSON.
func parseFile(config *Config) error {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return nil
	}
	return loadFile(path, config)
}

func loadFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	fc.apply(config)
	return nil
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.Addr, fc.Addr)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	setString(&c.SecretKey, fc.SecretKey)
	if fc.SessionTTL != nil {
		c.SessionTTL = fc.SessionTTL.Duration
	}
	setString(&c.CookieName, fc.CookieName)
	if fc.CookieSecure != nil {
		c.CookieSecure = *fc.CookieSecure
	}
	if fc.AllowedOrigins != nil {
		c.AllowedOrigins = fc.AllowedOrigins
	}
	if fc.RateLimit != nil {
		c.RateLimit = *fc.RateLimit
	}
	setString(&c.RedisAddr, fc.RedisAddr)
	setString(&c.NATSURL, fc.NATSURL)
	setString(&c.OTLPEndpoint, fc.OTLPEndpoint)
	setString(&c.LogFormat, fc.LogFormat)
	if fc.Debug != nil {
		c.Debug = *fc.Debug
	}
	if fc.RetentionWindow != nil {
		c.RetentionWindow = fc.RetentionWindow.Duration
	}
	if fc.BcryptCost != nil {
		c.BcryptCost = *fc.BcryptCost
	}
	if fc.ShutdownTimeout != nil {
		c.ShutdownTimeout = fc.ShutdownTimeout.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
