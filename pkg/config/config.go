package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env        string
	Port       int
	APIPrefix  string
	EnableDocs bool

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Analytics AnalyticsConfig
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

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AnalyticsConfig governs the engine parameters, the record snapshot and the response cache.
type AnalyticsConfig struct {
	CacheEnabled         bool
	CacheTTL             time.Duration
	SnapshotTTL          time.Duration
	LateThresholdMinutes float64
	HistogramEdges       []float64
	Timezone             string
}

// Location resolves the configured analytics timezone.
func (c AnalyticsConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.EnableDocs = v.GetBool("ENABLE_DOCS") && cfg.Env != EnvProduction

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

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	edges, err := parseEdges(v.GetString("HISTOGRAM_EDGES"))
	if err != nil {
		return nil, err
	}

	cfg.Analytics = AnalyticsConfig{
		CacheEnabled:         v.GetBool("ENABLE_ANALYTICS_CACHE"),
		CacheTTL:             parseDuration(v.GetString("ANALYTICS_CACHE_TTL"), time.Minute),
		SnapshotTTL:          parseDuration(v.GetString("SNAPSHOT_TTL"), time.Minute),
		LateThresholdMinutes: v.GetFloat64("LATE_THRESHOLD_MINUTES"),
		HistogramEdges:       edges,
		Timezone:             v.GetString("ANALYTICS_TIMEZONE"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("ENABLE_DOCS", true)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "uep_attendance")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "uep-attendance-analytics")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_ANALYTICS_CACHE", true)
	v.SetDefault("ANALYTICS_CACHE_TTL", "1m")
	v.SetDefault("SNAPSHOT_TTL", "60s")
	v.SetDefault("LATE_THRESHOLD_MINUTES", 15)
	v.SetDefault("HISTOGRAM_EDGES", "-10,0,5,10,15,20,30,60")
	v.SetDefault("ANALYTICS_TIMEZONE", "UTC")
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

func parseEdges(raw string) ([]float64, error) {
	parts := splitAndTrim(raw)
	if len(parts) == 0 {
		return nil, nil
	}
	edges := make([]float64, 0, len(parts))
	for _, part := range parts {
		edge, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid HISTOGRAM_EDGES value %q: %w", part, err)
		}
		edges = append(edges, edge)
	}
	return edges, nil
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
