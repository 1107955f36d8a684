package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the engine. It is loaded once
// at process start; the SLA and routing tables derived from it are immutable
// and passed explicitly to the components that need them.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Monitor      MonitorConfig
	Escalation   EscalationConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines collaborator authentication parameters. APIKeyHash is
// a bcrypt hash of the shared collaborator API key; empty disables auth.
type AuthConfig struct {
	JWTSecret       string
	TokenTTLMinutes int
	APIKeyHash      string
}

// MonitorConfig tunes the SLA monitor.
type MonitorConfig struct {
	ScanIntervalSeconds int
	WarningRatio        float64
	CriticalRatio       float64
	AlertStateTTLHours  int
	AutoCloseAfterHours int
}

// EscalationConfig tunes the decision engine.
type EscalationConfig struct {
	MaxFailedAttempts int
	BreachRatio       float64
	MinConfidence     float64
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults
// where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk-engine"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("AUTH_JWT_SECRET", "dev-secret"),
			TokenTTLMinutes: getEnvAsInt("AUTH_TOKEN_TTL_MINUTES", 60),
			APIKeyHash:      os.Getenv("AUTH_API_KEY_HASH"),
		},
		Monitor: MonitorConfig{
			ScanIntervalSeconds: getEnvAsInt("SLA_SCAN_INTERVAL_SECONDS", 60),
			WarningRatio:        getEnvAsFloat("SLA_WARNING_RATIO", 0.8),
			CriticalRatio:       getEnvAsFloat("SLA_CRITICAL_RATIO", 0.9),
			AlertStateTTLHours:  getEnvAsInt("SLA_ALERT_STATE_TTL_HOURS", 168),
			AutoCloseAfterHours: getEnvAsInt("SLA_AUTO_CLOSE_AFTER_HOURS", 24),
		},
		Escalation: EscalationConfig{
			MaxFailedAttempts: getEnvAsInt("ESCALATION_MAX_FAILED_ATTEMPTS", 3),
			BreachRatio:       getEnvAsFloat("ESCALATION_BREACH_RATIO", 0.9),
			MinConfidence:     getEnvAsFloat("ESCALATION_MIN_CONFIDENCE", 0.5),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ScanInterval returns the monitor cycle period.
func (m MonitorConfig) ScanInterval() time.Duration {
	if m.ScanIntervalSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(m.ScanIntervalSeconds) * time.Second
}

// AutoCloseAfter returns how long a resolved ticket may sit without follow-up
// before it is closed automatically. Zero disables auto-close.
func (m MonitorConfig) AutoCloseAfter() time.Duration {
	if m.AutoCloseAfterHours <= 0 {
		return 0
	}
	return time.Duration(m.AutoCloseAfterHours) * time.Hour
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
