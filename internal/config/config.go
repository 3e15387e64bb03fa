package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type DBConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether cross-instance notifications go through Redis.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type AdminConfig struct {
	JWTSecret    string
	PasswordHash string
	TokenTTLMin  int
}

// Enabled reports whether /admin routes require a bearer token.
func (a AdminConfig) Enabled() bool {
	return a.JWTSecret != ""
}

type BillingConfig struct {
	DepositCapRatio decimal.Decimal
}

type Config struct {
	Environment      string
	AppPort          string
	CORSAllowOrigins string
	DB               DBConfig
	Redis            RedisConfig
	Admin            AdminConfig
	Billing          BillingConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	lifetime, err := parseDuration(v.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, fmt.Errorf("DB_CONN_MAX_LIFETIME: %w", err)
	}

	cfg := &Config{
		Environment:      v.GetString("APP_ENV"),
		AppPort:          v.GetString("APP_PORT"),
		CORSAllowOrigins: v.GetString("CORS_ALLOW_ORIGINS"),
		DB: DBConfig{
			Driver:          strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: lifetime,
			AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Admin: AdminConfig{
			JWTSecret:    v.GetString("ADMIN_JWT_SECRET"),
			PasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
			TokenTTLMin:  v.GetInt("ADMIN_TOKEN_TTL_MIN"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.AppPort == "" {
		cfg.AppPort = "3001"
	}
	if cfg.CORSAllowOrigins == "" {
		cfg.CORSAllowOrigins = "http://localhost:3000"
	}
	if cfg.DB.Driver == "" {
		cfg.DB.Driver = "postgres"
	}
	if cfg.DB.MaxOpenConns == 0 {
		cfg.DB.MaxOpenConns = 20
	}
	if cfg.DB.MaxIdleConns == 0 {
		cfg.DB.MaxIdleConns = 5
	}
	if cfg.Admin.TokenTTLMin == 0 {
		cfg.Admin.TokenTTLMin = 60
	}

	ratio := strings.TrimSpace(v.GetString("DEPOSIT_CAP_RATIO"))
	if ratio == "" {
		ratio = "0.25"
	}
	cfg.Billing.DepositCapRatio, err = decimal.NewFromString(ratio)
	if err != nil {
		return nil, fmt.Errorf("DEPOSIT_CAP_RATIO: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	switch cfg.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", cfg.DB.Driver)
	}
	if cfg.Billing.DepositCapRatio.IsNegative() {
		return fmt.Errorf("DEPOSIT_CAP_RATIO must not be negative")
	}
	if cfg.Admin.PasswordHash != "" && cfg.Admin.JWTSecret == "" {
		return fmt.Errorf("ADMIN_JWT_SECRET is required when ADMIN_PASSWORD_HASH is set")
	}
	return nil
}

func parseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 30 * time.Minute, nil
	}
	return time.ParseDuration(raw)
}
