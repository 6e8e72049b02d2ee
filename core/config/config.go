package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App           AppConfig
	Paths         PathsConfig
	Database      DatabaseConfig
	Valkey        ValkeyConfig
	Scheduler     SchedulerConfig
	Security      SecurityConfig
	AI            AIConfig
	Facebook      FacebookConfig
	Notifications NotificationsConfig
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasicAuth          []string
	BasePath           string
	TrustedProxies     []string
	BaseUrl            string
	CorsAllowedOrigins []string
	ServerID           string
}

type PathsConfig struct {
	Statics  string
	Images   string
	Storages string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string // File path for SQLite, DB Name for Postgres
}

type ValkeyConfig struct {
	Enabled   bool
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

type SchedulerConfig struct {
	WindowStart     string
	WindowEnd       string
	PublishInterval time.Duration
	PublishTimeout  time.Duration
	ClaimTTL        time.Duration
	Workers         int
	QueueSize       int
	DigestCron      string
	DefaultTimezone string
}

type SecurityConfig struct {
	EncryptionKey string
}

type AIConfig struct {
	Provider     string // openai | gemini
	OpenAIKey    string
	OpenAIURL    string
	TextModel    string
	ImageModel   string
	GeminiKey    string
	GeminiModel  string
	ImagenModel  string
	GenerateImgs bool
	Concurrency  int
}

type FacebookConfig struct {
	GraphURL string
}

type NotificationsConfig struct {
	CloseAPIKey string
	CloseURL    string
}

// Global provides access to the loaded configuration globally
var Global *Config

// LoadConfig loads configuration from Environment Variables or defaults.
func LoadConfig() (*Config, error) {
	storages := getEnv("APP_BASE_DIR", "storages")
	statics := getEnv("PATH_STATICS", "statics")

	var basicAuth []string
	if v := getEnv("APP_BASIC_AUTH", ""); v != "" {
		basicAuth = strings.Split(v, ",")
	}

	corsOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if v := getEnv("APP_CORS_ALLOWED_ORIGINS", ""); v != "" {
		corsOrigins = strings.Split(v, ",")
	}

	appCfg := AppConfig{
		Version:            "v1.0.0",
		Port:               getEnv("APP_PORT", "3000"),
		Debug:              getEnvBool("APP_DEBUG", false),
		Environment:        getEnv("APP_ENV", "development"),
		BasicAuth:          basicAuth,
		BasePath:           getEnv("APP_BASE_PATH", ""),
		BaseUrl:            getEnv("APP_BASE_URL", "http://localhost:3000"),
		CorsAllowedOrigins: corsOrigins,
		ServerID:           getEnv("SERVER_ID", ""),
	}
	if v := getEnv("APP_TRUSTED_PROXIES", ""); v != "" {
		appCfg.TrustedProxies = strings.Split(v, ",")
	}

	dbDriver := getEnv("DB_DRIVER", "sqlite")
	dbName := getEnv("DB_NAME", filepath.Join(storages, "groomflo.db"))
	if dbDriver == "postgres" {
		dbName = getEnv("DB_NAME", "groomflo")
	}

	cfg := &Config{
		App: appCfg,
		Paths: PathsConfig{
			Statics:  statics,
			Images:   getEnv("PATH_IMAGES", filepath.Join(statics, "images")),
			Storages: storages,
		},
		Database: DatabaseConfig{
			Driver:   dbDriver,
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     dbName,
		},
		Valkey: ValkeyConfig{
			Enabled:   getEnvBool("VALKEY_ENABLED", false),
			Address:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
			Password:  getEnv("VALKEY_PASSWORD", ""),
			DB:        getEnvInt("VALKEY_DB", 0),
			KeyPrefix: getEnv("VALKEY_KEY_PREFIX", "groomflo:"),
		},
		Scheduler: SchedulerConfig{
			WindowStart:     getEnv("SCHEDULE_WINDOW_START", "07:00"),
			WindowEnd:       getEnv("SCHEDULE_WINDOW_END", "09:30"),
			PublishInterval: getEnvDuration("PUBLISH_INTERVAL", 5*time.Minute),
			PublishTimeout:  getEnvDuration("PUBLISH_TIMEOUT", 30*time.Second),
			ClaimTTL:        getEnvDuration("PUBLISH_CLAIM_TTL", 10*time.Minute),
			Workers:         getEnvInt("PUBLISH_WORKERS", 4),
			QueueSize:       getEnvInt("PUBLISH_QUEUE_SIZE", 100),
			DigestCron:      getEnv("DIGEST_CRON", "0 7 * * *"),
			DefaultTimezone: getEnv("DEFAULT_TIMEZONE", "UTC"),
		},
		Security: SecurityConfig{
			EncryptionKey: getEnv("APP_ENCRYPTION_KEY", getEnv("ENCRYPTION_KEY", "")),
		},
		AI: AIConfig{
			Provider:     getEnv("AI_PROVIDER", "openai"),
			OpenAIKey:    getEnv("OPENAI_API_KEY", ""),
			OpenAIURL:    getEnv("OPENAI_BASE_URL", ""),
			TextModel:    getEnv("OPENAI_TEXT_MODEL", "gpt-4o"),
			ImageModel:   getEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),
			GeminiKey:    getEnv("GEMINI_API_KEY", ""),
			GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			ImagenModel:  getEnv("GEMINI_IMAGE_MODEL", "imagen-3.0-generate-002"),
			GenerateImgs: getEnvBool("AI_GENERATE_IMAGES", true),
			Concurrency:  getEnvInt("AI_CONCURRENCY", 7),
		},
		Facebook: FacebookConfig{
			GraphURL: getEnv("FACEBOOK_GRAPH_URL", "https://graph.facebook.com/v18.0"),
		},
		Notifications: NotificationsConfig{
			CloseAPIKey: getEnv("CLOSE_API_KEY", getEnv("CLOSEGPT_SECRET_KEY", "")),
			CloseURL:    getEnv("CLOSE_API_URL", "https://api.close.com/api/v1"),
		},
	}

	if cfg.Scheduler.ClaimTTL <= cfg.Scheduler.PublishTimeout {
		return nil, fmt.Errorf("PUBLISH_CLAIM_TTL (%s) must be longer than PUBLISH_TIMEOUT (%s)", cfg.Scheduler.ClaimTTL, cfg.Scheduler.PublishTimeout)
	}

	Global = cfg
	return cfg, nil
}
