package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file if present. A missing file is not
// fatal; the error is returned so the caller can log it.
func LoadEnv(files ...string) error {
	return godotenv.Load(files...)
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetDurationEnv parses values like "5s" or "30m".
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// GetListEnv splits a comma separated variable, dropping empty entries.
func GetListEnv(key string, defaultVal []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DSN builds a libpq style connection string.
func (c DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type EventsConfig struct {
	// Sink is one of "kafka", "redis" or "none".
	Sink         string
	KafkaBrokers []string
	Topic        string
}

type LedgerConfig struct {
	LockTimeout          time.Duration
	MaxReferenceAttempts int
}

type Config struct {
	Env          string
	Port         string
	LogLevel     string
	JWTSecret    string
	CORSOrigins  string
	RateLimitMax int
	Database     DatabaseConfig
	Redis        RedisConfig
	Events       EventsConfig
	Ledger       LedgerConfig
}

// Load reads the whole configuration from the environment.
func Load() Config {
	return Config{
		Env:          GetEnv("ENV", "development"),
		Port:         GetEnv("PORT", "3000"),
		LogLevel:     GetEnv("LOG_LEVEL", "info"),
		JWTSecret:    GetEnv("JWT_SECRET", ""),
		CORSOrigins:  GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		RateLimitMax: GetIntEnv("RATE_LIMIT_MAX", 30),
		Database: DatabaseConfig{
			Host:            GetEnv("DB_HOST", "localhost"),
			Port:            GetEnv("DB_PORT", "5432"),
			User:            GetEnv("DB_USER", "postgres"),
			Password:        GetEnv("DB_PASSWORD", "postgres"),
			Name:            GetEnv("DB_NAME", "ledgerpay"),
			SSLMode:         GetEnv("DB_SSLMODE", "disable"),
			MaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetIntEnv("REDIS_DB", 0),
			CacheTTL: GetDurationEnv("CACHE_TTL", 5*time.Minute),
		},
		Events: EventsConfig{
			Sink:         GetEnv("EVENTS_SINK", "none"),
			KafkaBrokers: GetListEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:        GetEnv("KAFKA_TOPIC", "ledger.transactions"),
		},
		Ledger: LedgerConfig{
			LockTimeout:          GetDurationEnv("LEDGER_LOCK_TIMEOUT", 5*time.Second),
			MaxReferenceAttempts: GetIntEnv("LEDGER_MAX_REFERENCE_ATTEMPTS", 5),
		},
	}
}
