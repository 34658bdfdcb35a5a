// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env         string        // APP_ENV: "development", "production", ...
	Port        string        // APP_PORT
	DBUser      string        // DB_USER
	DBPass      string        // DB_PASS (empty allowed)
	DBHost      string        // DB_HOST
	DBPort      string        // DB_PORT
	DBName      string        // DB_NAME
	DBMigrate   bool          // DB_MIGRATE: apply embedded migrations at startup
	JWTSecret   string        // JWT_SECRET
	TokenTTL    time.Duration // TOKEN_TTL: session lifetime, also the revocation TTL
	BcryptCost  int           // BCRYPT_COST
	FrontendURL string        // FRONTEND_URL: allowed CORS origin
	RabbitMQURL string        // RABBITMQ_URL, then AMQP_URL
	LogLevel    string        // LOG_LEVEL
}

// IsProduction switches the session cookie to Secure with SameSite=None.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production") || strings.EqualFold(c.Env, "prod")
}

// Load is Parse that exits the process on a configuration error.
func Load() Config {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// Parse reads the environment.  Required variables missing or unparsable
// values produce an error naming the variable.
func Parse() (Config, error) {
	var missing []string
	req := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := Config{
		Env:         envStr("APP_ENV", "development"),
		Port:        envStr("APP_PORT", "3000"),
		DBUser:      req("DB_USER"),
		DBPass:      os.Getenv("DB_PASS"),
		DBHost:      req("DB_HOST"),
		DBPort:      envStr("DB_PORT", "3306"),
		DBName:      req("DB_NAME"),
		DBMigrate:   envBool("DB_MIGRATE", true),
		JWTSecret:   req("JWT_SECRET"),
		FrontendURL: envStr("FRONTEND_URL", "http://localhost:5173"),
		RabbitMQURL: envStr("RABBITMQ_URL", os.Getenv("AMQP_URL")),
		LogLevel:    envStr("LOG_LEVEL", "info"),
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.TokenTTL, err = parseDur("TOKEN_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	if cfg.BcryptCost, err = parseInt("BCRYPT_COST", 10); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %q", key, s)
	}
	return n, nil
}

func parseDur(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q", key, s)
	}
	return d, nil
}
