package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string // postgres, sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	// DBPath is only used by the sqlite driver
	DBPath string

	JWTSecret    string
	JWTTTL       time.Duration
	CookieName   string
	CookieSecure bool

	ServerPort     string
	AllowedOrigins string
	LogFormat      string // text, plain
	LogColors      bool
	RateLimit      bool

	BlacklistCleanupInterval time.Duration
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "ecoaware"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "ecoaware.db"),

		JWTSecret:    getEnv("JWT_SECRET", "secret"),
		JWTTTL:       time.Duration(getEnvInt("JWT_TTL_HOURS", 24*7)) * time.Hour,
		CookieName:   getEnv("COOKIE_NAME", "token"),
		CookieSecure: getEnvBool("COOKIE_SECURE", false),

		ServerPort:     getEnv("SERVER_PORT", "5000"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		LogColors:      getEnvBool("LOG_COLORS", true),
		RateLimit:      getEnvBool("RATE_LIMIT_ENABLED", true),

		BlacklistCleanupInterval: time.Duration(getEnvInt("BLACKLIST_CLEANUP_INTERVAL_MINUTES", 60)) * time.Minute,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		log.Printf("Invalid value %q for %s, using %d", value, key, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return b
}
