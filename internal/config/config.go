package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration. It is built once in main and
// passed into component constructors; business logic never reaches for
// the environment directly.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBUser string
	DBPass string // optional
	DBHost string
	DBPort string
	DBName string

	AccessSecret  string // HS256 secret for access tokens, >= 32 bytes
	RefreshSecret string // HS256 secret for refresh tokens, >= 32 bytes

	AccessTTLMin   int // access token time-to-live in minutes
	RefreshTTLDays int // refresh token time-to-live in days

	BcryptCost        int // bcrypt cost for password hashing
	PasswordMinLength int // minimum new-password length
}

// minSecretBytes matches the token codec's requirement; the process
// refuses to start with a weaker secret rather than running insecurely.
const minSecretBytes = 32

// Load reads configuration from environment variables. Missing required
// variables and under-length secrets are fatal.
func Load() Config {
	cfg := Config{
		Env:               getenv("APP_ENV", "dev"),
		Port:              getenv("APP_PORT", "8080"),
		DBUser:            must("DB_USER"),
		DBPass:            os.Getenv("DB_PASS"),
		DBHost:            must("DB_HOST"),
		DBPort:            must("DB_PORT"),
		DBName:            must("DB_NAME"),
		AccessSecret:      must("JWT_ACCESS_SECRET"),
		RefreshSecret:     must("JWT_REFRESH_SECRET"),
		AccessTTLMin:      envInt("ACCESS_TOKEN_TTL_MIN", 30),
		RefreshTTLDays:    envInt("REFRESH_TOKEN_TTL_DAYS", 7),
		BcryptCost:        envInt("BCRYPT_COST", 12),
		PasswordMinLength: envInt("PASSWORD_MIN_LENGTH", 8),
	}
	if len(cfg.AccessSecret) < minSecretBytes {
		log.Fatalf("JWT_ACCESS_SECRET must be at least %d bytes", minSecretBytes)
	}
	if len(cfg.RefreshSecret) < minSecretBytes {
		log.Fatalf("JWT_REFRESH_SECRET must be at least %d bytes", minSecretBytes)
	}
	return cfg
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
