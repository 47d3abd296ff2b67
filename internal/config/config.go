// Package config loads application configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration of the order-store server.
// Each field corresponds to an environment variable; strings for
// identifiers, since values are only ever passed through to DSNs.
type Config struct {
	Env    string // application environment (e.g. "dev", "prod")
	Port   string // HTTP port to listen on
	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name
}

// Load reads the server configuration.  A .env file in the working
// directory is applied first if present; real environment variables
// win over it.  Missing required variables are fatal.
func Load() Config {
	loadDotenv()
	return Config{
		Env:    getenv("APP_ENV", "dev"),
		Port:   must("APP_PORT"),
		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"), // empty allowed
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),
	}
}

// ClientConfig holds the cashier terminal's configuration.
type ClientConfig struct {
	APIBaseURL string // base URL of the order-store server
}

// LoadClient reads the POS client configuration.  The API URL
// defaults to a local server so the terminal works out of the box in
// development.
func LoadClient() ClientConfig {
	loadDotenv()
	return ClientConfig{
		APIBaseURL: getenv("API_BASE_URL", "http://localhost:8080"),
	}
}

// loadDotenv applies .env when the file exists.  godotenv never
// overrides variables that are already set, which is the precedence we
// want: the environment beats the file.
func loadDotenv() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Printf("config: could not load .env: %v", err)
		}
	}
}

// must retrieves a required environment variable.  If the variable is
// unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// getenv returns the variable's value or a default when unset.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
