package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Log         LogConfig
	JWT         JWTConfig
	HTTP        HTTPConfig
	Redis       RedisConfig
	Idempotency IdempotencyConfig
	Reminder    ReminderConfig
	Twilio      TwilioConfig
	RateLimit   RateLimitConfig
}

type AppConfig struct {
	Name string
	Env  string
	Port string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
	LogLevel        string // silent, error, warn, info
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	ShutdownTimeout  time.Duration
	CORSAllowOrigins []string
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// IdempotencyConfig controls replay of POST /api/invoices by Idempotency-Key.
type IdempotencyConfig struct {
	TTL time.Duration
}

type ReminderConfig struct {
	Enabled      bool
	CronSchedule string
	MinDaysOpen  int
	Channel      string // auto, sms, log
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// RateLimitConfig caps auth attempts per client IP within Window.
type RateLimitConfig struct {
	Enabled     bool
	Window      time.Duration
	LoginMax    int
	RegisterMax int
}

// Load reads configuration from config.toml and the environment.
// Priority (highest to lowest):
// 1. GARAGEFLOW_* environment variables (GARAGEFLOW_DATABASE_URL, ...)
// 2. legacy environment variables (DB_URL, JWT_SECRET, PORT, TWILIO_*)
// 3. config.toml
// 4. built-in defaults
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/garageflow")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("GARAGEFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	legacy := map[string][]string{
		"database.url":       {"GARAGEFLOW_DATABASE_URL", "DB_URL"},
		"jwt.secret":         {"GARAGEFLOW_JWT_SECRET", "JWT_SECRET"},
		"app.port":           {"GARAGEFLOW_APP_PORT", "PORT"},
		"twilio.account_sid": {"GARAGEFLOW_TWILIO_ACCOUNT_SID", "TWILIO_ACCOUNT_SID"},
		"twilio.auth_token":  {"GARAGEFLOW_TWILIO_AUTH_TOKEN", "TWILIO_AUTH_TOKEN"},
		"twilio.from_number": {"GARAGEFLOW_TWILIO_FROM_NUMBER", "TWILIO_PHONE_NUMBER"},
	}
	for key, envs := range legacy {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	return &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			URL:             v.GetString("database.url"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
			LogLevel:        v.GetString("database.log_level"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Expiration: v.GetDuration("jwt.expiration"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			ShutdownTimeout:  v.GetDuration("http.shutdown_timeout"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Idempotency: IdempotencyConfig{
			TTL: v.GetDuration("idempotency.ttl"),
		},
		Reminder: ReminderConfig{
			Enabled:      v.GetBool("reminder.enabled"),
			CronSchedule: v.GetString("reminder.cron_schedule"),
			MinDaysOpen:  v.GetInt("reminder.min_days_open"),
			Channel:      v.GetString("reminder.channel"),
		},
		Twilio: TwilioConfig{
			AccountSID: v.GetString("twilio.account_sid"),
			AuthToken:  v.GetString("twilio.auth_token"),
			FromNumber: v.GetString("twilio.from_number"),
		},
		RateLimit: RateLimitConfig{
			Enabled:     v.GetBool("ratelimit.enabled"),
			Window:      v.GetDuration("ratelimit.window"),
			LoginMax:    v.GetInt("ratelimit.login_max"),
			RegisterMax: v.GetInt("ratelimit.register_max"),
		},
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "garageflow")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "5000")

	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.auto_migrate", false)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("jwt.expiration", 24*time.Hour)

	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.shutdown_timeout", 30*time.Second)
	v.SetDefault("http.cors_allow_origins", []string{"http://localhost:5173", "http://localhost:3000"})

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("idempotency.ttl", 24*time.Hour)

	v.SetDefault("reminder.enabled", false)
	v.SetDefault("reminder.cron_schedule", "0 9 * * *")
	v.SetDefault("reminder.min_days_open", 7)
	v.SetDefault("reminder.channel", "auto")

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.window", 15*time.Minute)
	v.SetDefault("ratelimit.login_max", 10)
	v.SetDefault("ratelimit.register_max", 30)
}

// Validate checks the settings the API server cannot start without.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database url is required (GARAGEFLOW_DATABASE_URL or DB_URL)")
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt secret is required (GARAGEFLOW_JWT_SECRET or JWT_SECRET)")
	}
	if c.JWT.Expiration <= 0 {
		return errors.New("jwt expiration must be positive")
	}
	if len(c.HTTP.CORSAllowOrigins) == 0 {
		return errors.New("http cors_allow_origins must list at least one origin")
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Window <= 0 {
			return errors.New("ratelimit window must be positive")
		}
		if c.RateLimit.LoginMax <= 0 || c.RateLimit.RegisterMax <= 0 {
			return errors.New("ratelimit login_max and register_max must be positive")
		}
	}
	return nil
}

// TwilioConfigured reports whether SMS reminders can be sent.
func (c *Config) TwilioConfigured() bool {
	return c.Twilio.AccountSID != "" && c.Twilio.AuthToken != "" && c.Twilio.FromNumber != ""
}

// IsProduction reports whether the app runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
