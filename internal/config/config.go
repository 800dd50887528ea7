package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ProjectName    string
	ProjectVersion string
	SecretKey      string
	GinMode        string
	Port           string
	LogLevel       string

	DBDriver   string
	SQLitePath string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	AuthTokenLifetime time.Duration
	AllowedOrigins    []string

	EmailEnabled  bool
	Notifier      string
	SMTPServer    string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  string
	EmailFrom     string
	EmailFromName string
	ServerURL     string
	NotifyTimeout time.Duration

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string
}

const defaultSecretKey = "default-secret-key-change-me"

var defaults = map[string]interface{}{
	"PROJECT_NAME":        "Project Management API",
	"PROJECT_VERSION":     "1.0.0",
	"SECRET_KEY":          defaultSecretKey,
	"GIN_MODE":            "debug",
	"PORT":                "8080",
	"LOG_LEVEL":           "info",
	"DB_DRIVER":           "sqlite",
	"SQLITE_PATH":         "./data/app.db",
	"DB_HOST":             "localhost",
	"DB_PORT":             "3306",
	"DB_USER":             "projectuser",
	"DB_PASSWORD":         "projectpassword",
	"DB_NAME":             "project_management",
	"AUTH_TOKEN_LIFETIME": 86400,
	"ALLOWED_ORIGINS":     "*",
	"EMAIL_ENABLED":       false,
	"NOTIFIER":            "",
	"SMTP_SERVER":         "localhost",
	"SMTP_PORT":           587,
	"SMTP_USER":           "",
	"SMTP_PASSWORD":       "",
	"EMAIL_FROM":          "noreply@example.com",
	"EMAIL_FROM_NAME":     "Project Management",
	"SERVER_URL":          "http://localhost:8080",
	"NOTIFY_TIMEOUT":      10,
	"REDIS_HOST":          "localhost",
	"REDIS_PORT":          "6379",
	"REDIS_PASSWORD":      "",
	"REDIS_DB":            0,
	"REDIS_CHANNEL":       "project-management:notifications",
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		ProjectName:    v.GetString("PROJECT_NAME"),
		ProjectVersion: v.GetString("PROJECT_VERSION"),
		SecretKey:      v.GetString("SECRET_KEY"),
		GinMode:        v.GetString("GIN_MODE"),
		Port:           v.GetString("PORT"),
		LogLevel:       strings.ToLower(v.GetString("LOG_LEVEL")),

		DBDriver:   strings.ToLower(v.GetString("DB_DRIVER")),
		SQLitePath: v.GetString("SQLITE_PATH"),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),

		AuthTokenLifetime: time.Duration(v.GetInt("AUTH_TOKEN_LIFETIME")) * time.Second,
		AllowedOrigins:    splitList(v.GetString("ALLOWED_ORIGINS")),

		EmailEnabled:  v.GetBool("EMAIL_ENABLED"),
		Notifier:      strings.ToLower(v.GetString("NOTIFIER")),
		SMTPServer:    v.GetString("SMTP_SERVER"),
		SMTPPort:      v.GetInt("SMTP_PORT"),
		SMTPUser:      v.GetString("SMTP_USER"),
		SMTPPassword:  v.GetString("SMTP_PASSWORD"),
		EmailFrom:     v.GetString("EMAIL_FROM"),
		EmailFromName: v.GetString("EMAIL_FROM_NAME"),
		ServerURL:     strings.TrimRight(v.GetString("SERVER_URL"), "/"),
		NotifyTimeout: time.Duration(v.GetInt("NOTIFY_TIMEOUT")) * time.Second,

		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetString("REDIS_PORT"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		RedisChannel:  v.GetString("REDIS_CHANNEL"),
	}

	if cfg.Notifier == "" {
		cfg.Notifier = "log"
		if cfg.EmailEnabled {
			cfg.Notifier = "smtp"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	if c.AuthTokenLifetime <= 0 {
		return errors.New("AUTH_TOKEN_LIFETIME must be positive")
	}
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY is required")
	}
	if c.GinMode == "release" && c.SecretKey == defaultSecretKey {
		return errors.New("SECRET_KEY must be changed in release mode")
	}
	switch c.DBDriver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.Notifier {
	case "log", "smtp", "redis":
	default:
		return fmt.Errorf("unsupported NOTIFIER %q", c.Notifier)
	}
	return nil
}

// RedisAddr returns host:port for the redis notifier.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
