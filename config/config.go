/*
Package config loads server configuration from the environment.

PURPOSE:
  Centralizes the runtime knobs: listen port, database path, admin
  secret, and access-log retention. A .env file in the working directory
  is loaded first (missing file is fine), then real environment
  variables win.

VARIABLES:
  PORT                       HTTP port (default 8080)
  DB_PATH                    SQLite database path (default payroll.db)
  ADMIN_SECRET               Plain admin secret; hashed at startup.
                             Empty disables the admin surface.
  ACCESS_LOG_RETENTION_DAYS  Days of access log to keep (default 90)

SEE ALSO:
  - cmd/server/main.go: Flags override these values
  - api/auth.go: How the secret hash is used
*/
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the server's runtime configuration.
type Config struct {
	Port                   int
	DBPath                 string
	AdminSecret            string
	AccessLogRetentionDays int
}

// Load reads the .env file (if present) and the environment.
func Load() (*Config, error) {
	// A missing .env is not an error; the environment alone is enough.
	_ = godotenv.Load()

	cfg := &Config{
		Port:                   8080,
		DBPath:                 "payroll.db",
		AdminSecret:            os.Getenv("ADMIN_SECRET"),
		AccessLogRetentionDays: 90,
	}

	if raw := os.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("config: invalid PORT %q", raw)
		}
		cfg.Port = port
	}

	if raw := os.Getenv("DB_PATH"); raw != "" {
		cfg.DBPath = raw
	}

	if raw := os.Getenv("ACCESS_LOG_RETENTION_DAYS"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			return nil, fmt.Errorf("config: invalid ACCESS_LOG_RETENTION_DAYS %q", raw)
		}
		cfg.AccessLogRetentionDays = days
	}

	return cfg, nil
}
