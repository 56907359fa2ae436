package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	CORS       CORSConfig
	Log        LogConfig
	Engagement EngagementConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// EngagementConfig tunes report windows, tenancy and the optional report cache.
type EngagementConfig struct {
	CacheEnabled     bool
	CacheTTL         time.Duration
	ActiveWindowDays int
	RiskWindowDays   int
	TermCount        int
	Timezone         string
	Location         *time.Location
	TenantHeader     string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Engagement = EngagementConfig{
		CacheEnabled:     v.GetBool("ENABLE_REPORT_CACHE"),
		CacheTTL:         parseDuration(v.GetString("REPORT_CACHE_TTL"), 5*time.Minute),
		ActiveWindowDays: v.GetInt("ENGAGEMENT_ACTIVE_WINDOW_DAYS"),
		RiskWindowDays:   v.GetInt("ENGAGEMENT_RISK_WINDOW_DAYS"),
		TermCount:        v.GetInt("ENGAGEMENT_TERM_COUNT"),
		Timezone:         v.GetString("ENGAGEMENT_TIMEZONE"),
		TenantHeader:     v.GetString("TENANT_HEADER"),
	}
	if cfg.Engagement.ActiveWindowDays < 1 || cfg.Engagement.ActiveWindowDays > 365 {
		return nil, fmt.Errorf("ENGAGEMENT_ACTIVE_WINDOW_DAYS must be between 1 and 365, got %d", cfg.Engagement.ActiveWindowDays)
	}
	if cfg.Engagement.RiskWindowDays < 1 || cfg.Engagement.RiskWindowDays > 365 {
		return nil, fmt.Errorf("ENGAGEMENT_RISK_WINDOW_DAYS must be between 1 and 365, got %d", cfg.Engagement.RiskWindowDays)
	}
	loc, err := time.LoadLocation(cfg.Engagement.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load ENGAGEMENT_TIMEZONE %q: %w", cfg.Engagement.Timezone, err)
	}
	cfg.Engagement.Location = loc

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "engagement")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_REPORT_CACHE", false)
	v.SetDefault("REPORT_CACHE_TTL", "5m")
	v.SetDefault("ENGAGEMENT_ACTIVE_WINDOW_DAYS", 30)
	v.SetDefault("ENGAGEMENT_RISK_WINDOW_DAYS", 14)
	v.SetDefault("ENGAGEMENT_TERM_COUNT", 4)
	v.SetDefault("ENGAGEMENT_TIMEZONE", "UTC")
	v.SetDefault("TENANT_HEADER", "X-Tenant-ID")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
