package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Settings is the resolved runtime configuration. It is loaded once by the
// entry point and passed down; nothing in the repository reads env vars
// after that.
type Settings struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
	DBTimeZone string
	DBEcho     bool

	// AdminDatabaseURL, when set, is used to grant schema privileges to
	// DBUser if table creation fails with a permission error.
	AdminDatabaseURL string

	DataDir   string
	BatchSize int

	LogLevel string
	LogFile  string

	JWTSecret string
	HTTPAddr  string

	// ElectricMarkers are case-insensitive substrings that classify a
	// transport type name as electric.
	ElectricMarkers []string
}

// Load reads .env (if present) and then the process environment.
func Load() Settings {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found – relying on env vars")
	}
	return FromEnv()
}

// FromEnv builds Settings from environment variables, applying defaults.
func FromEnv() Settings {
	return Settings{
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBName:           getEnv("DB_NAME", "greentrack"),
		DBUser:           getEnv("DB_USER", "greentrack_user"),
		DBPassword:       getEnv("DB_PASSWORD", "securepass"),
		DBSSLMode:        getEnv("DB_SSLMODE", "disable"),
		DBTimeZone:       getEnv("DB_TIMEZONE", "UTC"),
		DBEcho:           getBool("DB_ECHO", false),
		AdminDatabaseURL: getEnv("ADMIN_DATABASE_URL", ""),
		DataDir:          getEnv("DATA_DIR", "data/raw"),
		BatchSize:        getInt("INGEST_BATCH_SIZE", 500),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFile:          getEnv("LOG_FILE", ""),
		JWTSecret:        getEnv("JWT_SECRET", "supersecret"),
		HTTPAddr:         getEnv("HTTP_ADDR", "0.0.0.0:8080"),
		ElectricMarkers:  getList("ELECTRIC_MARKERS", []string{"elektro", "electric"}),
	}
}

// DSN builds the key/value Postgres connection string.
func (s Settings) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		s.DBHost, s.DBUser, s.DBPassword, s.DBName, s.DBPort, s.DBSSLMode, s.DBTimeZone,
	)
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

func getBool(key string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(getEnv(key, "")))
	if err != nil {
		return def
	}
	return v
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(getEnv(key, "")))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func getList(key string, def []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
