package config

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	SMTP      SMTPConfig
	RateLimit RateLimitConfig
	Outbox    OutboxConfig
	Metrics   MetricsConfig
}

type AppConfig struct {
	Port     string
	Env      string
	BaseURL  string
	LogLevel string
}

type DBConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
}

type RedisConfig struct {
	Host        string
	Port        string
	Password    string
	DB          int
	PoolSize    int
	DialTimeout time.Duration
	PingTimeout time.Duration
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	CookieName    string
}

// SMTPConfig configures the outgoing mail transport. An empty Host selects
// the log notifier.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type RateLimitConfig struct {
	AuthLimit     int
	AuthWindow    time.Duration
	BookingLimit  int
	BookingWindow time.Duration
	AdminLimit    int
	AdminWindow   time.Duration
}

type OutboxConfig struct {
	SweepInterval time.Duration
	BatchSize     int
	QueueSize     int
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Running from the environment only is fine, e.g. inside containers.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	config := &Config{
		App: AppConfig{
			Port:     viper.GetString("APP_PORT"),
			Env:      viper.GetString("APP_ENV"),
			BaseURL:  viper.GetString("APP_BASE_URL"),
			LogLevel: viper.GetString("LOG_LEVEL"),
		},
		DB: DBConfig{
			Host:        viper.GetString("DB_HOST"),
			Port:        viper.GetString("DB_PORT"),
			User:        viper.GetString("DB_USER"),
			Password:    viper.GetString("DB_PASSWORD"),
			Name:        viper.GetString("DB_NAME"),
			SSLMode:     viper.GetString("DB_SSLMODE"),
			AutoMigrate: viper.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:        viper.GetString("REDIS_HOST"),
			Port:        viper.GetString("REDIS_PORT"),
			Password:    viper.GetString("REDIS_PASSWORD"),
			DB:          viper.GetInt("REDIS_DB"),
			PoolSize:    viper.GetInt("REDIS_POOL_SIZE"),
			DialTimeout: durationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			PingTimeout: durationOr("REDIS_PING_TIMEOUT", 5*time.Second),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  durationOr("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: durationOr("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
			CookieName:    viper.GetString("JWT_COOKIE_NAME"),
		},
		SMTP: SMTPConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			Username: viper.GetString("SMTP_USERNAME"),
			Password: viper.GetString("SMTP_PASSWORD"),
			From:     viper.GetString("EMAIL_FROM"),
			FromName: viper.GetString("EMAIL_FROM_NAME"),
		},
		RateLimit: RateLimitConfig{
			AuthLimit:     viper.GetInt("RATE_LIMIT_AUTH"),
			AuthWindow:    durationOr("RATE_LIMIT_AUTH_WINDOW", 15*time.Minute),
			BookingLimit:  viper.GetInt("RATE_LIMIT_BOOKING"),
			BookingWindow: durationOr("RATE_LIMIT_BOOKING_WINDOW", time.Hour),
			AdminLimit:    viper.GetInt("RATE_LIMIT_ADMIN"),
			AdminWindow:   durationOr("RATE_LIMIT_ADMIN_WINDOW", time.Hour),
		},
		Outbox: OutboxConfig{
			SweepInterval: durationOr("OUTBOX_SWEEP_INTERVAL", time.Minute),
			BatchSize:     viper.GetInt("OUTBOX_BATCH_SIZE"),
			QueueSize:     viper.GetInt("OUTBOX_QUEUE_SIZE"),
		},
		Metrics: MetricsConfig{
			Enabled: viper.GetBool("METRICS_ENABLED"),
			Path:    viper.GetString("METRICS_PATH"),
		},
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_BASE_URL", "http://localhost:3000")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_AUTO_MIGRATE", true)
	viper.SetDefault("JWT_COOKIE_NAME", "access_token")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("EMAIL_FROM", "noreply@labtest.com")
	viper.SetDefault("EMAIL_FROM_NAME", "Lab Test Booking")
	viper.SetDefault("RATE_LIMIT_AUTH", 5)
	viper.SetDefault("RATE_LIMIT_BOOKING", 10)
	viper.SetDefault("RATE_LIMIT_ADMIN", 100)
	viper.SetDefault("OUTBOX_BATCH_SIZE", 100)
	viper.SetDefault("OUTBOX_QUEUE_SIZE", 256)
	viper.SetDefault("METRICS_ENABLED", true)
	viper.SetDefault("METRICS_PATH", "/metrics")
}

func durationOr(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}
