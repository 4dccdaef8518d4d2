package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		Driver string
		DSN    string
	}
	Auth struct {
		Secret   string
		TokenTTL time.Duration
	}
	Tx struct {
		Timeout time.Duration
		// MaxRetries of 0 turns write-conflict retries off.
		MaxRetries int
	}
	// BaseURL prefixes short codes when building a link's shortUrl.
	BaseURL         string
	LogLevel        string
	SessionLifetime time.Duration
	InsecureCookies bool
}

var drivers = map[string]bool{"sqlite3": true, "postgres": true, "pgx": true, "mysql": true}

// Load reads config from environment (JOE_ prefix), an optional .env file,
// and an optional joe-bookmarks.yaml. Real environment variables win over .env.
func Load() (*Config, error) {
	_ = godotenv.Load() // optional .env

	v := viper.New()
	v.SetEnvPrefix("JOE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("joe-bookmarks")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("db.driver", "sqlite3")
	v.SetDefault("db.dsn", "file:joe-bookmarks.db")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("session.lifetime", "720h")
	v.SetDefault("short.base_url", "http://localhost:8080")
	v.SetDefault("tx.timeout", "5s")
	v.SetDefault("tx.max_retries", 2)
	v.SetDefault("log.level", "info")

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.Auth.Secret = v.GetString("auth.secret")
	cfg.Tx.MaxRetries = v.GetInt("tx.max_retries")
	cfg.BaseURL = strings.TrimRight(v.GetString("short.base_url"), "/")
	cfg.LogLevel = v.GetString("log.level")
	cfg.InsecureCookies = v.GetBool("insecure_cookies")

	var err error
	if cfg.Auth.TokenTTL, err = duration(v, "auth.token_ttl"); err != nil {
		return nil, err
	}
	if cfg.SessionLifetime, err = duration(v, "session.lifetime"); err != nil {
		return nil, err
	}
	if cfg.Tx.Timeout, err = duration(v, "tx.timeout"); err != nil {
		return nil, err
	}

	if !drivers[cfg.DB.Driver] {
		return nil, fmt.Errorf("JOE_DB_DRIVER must be one of sqlite3, postgres, pgx, mysql; got %q", cfg.DB.Driver)
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("JOE_DB_DSN is required")
	}
	if cfg.Auth.Secret == "" {
		return nil, fmt.Errorf("JOE_AUTH_SECRET is required")
	}
	if cfg.Auth.TokenTTL <= 0 {
		return nil, fmt.Errorf("JOE_AUTH_TOKEN_TTL must be positive")
	}
	if cfg.Tx.Timeout <= 0 {
		return nil, fmt.Errorf("JOE_TX_TIMEOUT must be positive")
	}
	if cfg.Tx.MaxRetries < 0 {
		return nil, fmt.Errorf("JOE_TX_MAX_RETRIES must be zero or more; got %d", cfg.Tx.MaxRetries)
	}

	return cfg, nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		env := "JOE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		return 0, fmt.Errorf("invalid %s: %w", env, err)
	}
	return d, nil
}
