package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	HTTPPort       string
	DBDriver       string // postgres | sqlite
	DatabaseDSN    string
	JWTSecret      string
	CORSOrigins    string
	AdminUsername  string
	AdminPassword  string
	LogLevel       string
	LogPretty      bool
	LoginRateLimit int // login attempts per minute per IP
	// lets self-registration pick cook or admin
	AllowStaffSignup bool
}

const defaultDSN = "host=localhost user=postgres password=postgres dbname=canteen port=5432 sslmode=disable"

func Load() *Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		DBDriver:       getEnv("DB_DRIVER", "postgres"),
		DatabaseDSN:    getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		CORSOrigins:    getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		AdminUsername:  getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:  getEnv("ADMIN_PASSWORD", "admin"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogPretty:      getEnvBool("LOG_PRETTY", false),
		LoginRateLimit: getEnvInt("LOGIN_RATE_LIMIT", 10),

		AllowStaffSignup: getEnvBool("ALLOW_STAFF_SIGNUP", false),
	}

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is not set")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal().Msg("JWT_SECRET must be at least 32 characters")
	}
	if cfg.DBDriver == "postgres" && cfg.DatabaseDSN == defaultDSN {
		log.Warn().Msg("DATABASE_DSN uses the default value, set your own postgres connection for production")
	}
	if cfg.AllowStaffSignup {
		log.Warn().Msg("ALLOW_STAFF_SIGNUP is on, anyone can register as cook or admin")
	}
	if cfg.AdminPassword == "admin" {
		log.Warn().Msg("ADMIN_PASSWORD uses the default value, change it after the first login")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
