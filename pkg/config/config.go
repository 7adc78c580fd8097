package config

import (
	"errors"
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
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Hours    BusinessHoursConfig
	Schedule ScheduleConfig
	Import   ImportConfig
	Purge    PurgeConfig
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

// BusinessHoursConfig defines the clock-hour window within which any shift
// or availability slot must fall, plus per-employee hour limits.
type BusinessHoursConfig struct {
	Start    int
	End      int
	MinHours int
	MaxHours int
}

// ScheduleConfig tunes the day-schedule read model.
type ScheduleConfig struct {
	CacheEnabled     bool
	CacheTTL         time.Duration
	DefaultStartTime string
	DefaultEndTime   string
	MinimumStaff     int
}

// ImportConfig bounds the CSV employee import endpoint.
type ImportConfig struct {
	MaxFileSizeBytes int64
	MaxRows          int
}

// PurgeConfig controls backup exports produced by purge operations.
type PurgeConfig struct {
	BackupDir         string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	WorkerConcurrency int
	WorkerRetries     int
	BackupRetention   time.Duration
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

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

	cfg.Hours = BusinessHoursConfig{
		Start:    v.GetInt("BUSINESS_HOURS_START"),
		End:      v.GetInt("BUSINESS_HOURS_END"),
		MinHours: v.GetInt("BUSINESS_MIN_HOURS"),
		MaxHours: v.GetInt("BUSINESS_MAX_HOURS"),
	}

	cfg.Schedule = ScheduleConfig{
		CacheEnabled:     v.GetBool("SCHEDULE_CACHE_ENABLED"),
		CacheTTL:         parseDuration(v.GetString("SCHEDULE_CACHE_TTL"), 5*time.Minute),
		DefaultStartTime: v.GetString("SCHEDULE_DEFAULT_START"),
		DefaultEndTime:   v.GetString("SCHEDULE_DEFAULT_END"),
		MinimumStaff:     v.GetInt("SCHEDULE_MINIMUM_STAFF"),
	}

	maxImportSize := v.GetInt64("IMPORT_MAX_FILE_SIZE")
	if maxImportSize <= 0 {
		maxImportSize = 2 * 1024 * 1024
	}
	cfg.Import = ImportConfig{
		MaxFileSizeBytes: maxImportSize,
		MaxRows:          v.GetInt("IMPORT_MAX_ROWS"),
	}

	cfg.Purge = PurgeConfig{
		BackupDir:         v.GetString("PURGE_BACKUP_DIR"),
		SignedURLSecret:   v.GetString("PURGE_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("PURGE_SIGNED_URL_TTL"), 24*time.Hour),
		WorkerConcurrency: v.GetInt("PURGE_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("PURGE_WORKER_RETRIES"),
		BackupRetention:   parseDuration(v.GetString("PURGE_BACKUP_RETENTION"), 30*24*time.Hour),
	}

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
	v.SetDefault("DB_NAME", "staffdesk")
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

	v.SetDefault("BUSINESS_HOURS_START", 6)
	v.SetDefault("BUSINESS_HOURS_END", 17)
	v.SetDefault("BUSINESS_MIN_HOURS", 6)
	v.SetDefault("BUSINESS_MAX_HOURS", 8)

	v.SetDefault("SCHEDULE_CACHE_ENABLED", true)
	v.SetDefault("SCHEDULE_CACHE_TTL", "5m")
	v.SetDefault("SCHEDULE_DEFAULT_START", "09:00")
	v.SetDefault("SCHEDULE_DEFAULT_END", "17:00")
	v.SetDefault("SCHEDULE_MINIMUM_STAFF", 3)

	v.SetDefault("IMPORT_MAX_FILE_SIZE", 2*1024*1024)
	v.SetDefault("IMPORT_MAX_ROWS", 500)

	v.SetDefault("PURGE_BACKUP_DIR", "./backups")
	v.SetDefault("PURGE_SIGNED_URL_SECRET", "dev_purge_secret")
	v.SetDefault("PURGE_SIGNED_URL_TTL", "24h")
	v.SetDefault("PURGE_WORKER_CONCURRENCY", 1)
	v.SetDefault("PURGE_WORKER_RETRIES", 3)
	v.SetDefault("PURGE_BACKUP_RETENTION", "720h")
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
