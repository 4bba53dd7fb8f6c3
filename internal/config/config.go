package config

import (
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultAppEnv          = "dev"
	defaultDBPath          = "./dev.db"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultSessionTTL      = 30 * time.Minute
	defaultSMTPPort        = "587"
	defaultLeadRatePerMin  = 5
	defaultAPIRatePerMin   = 60
	defaultTemplateDir     = "web/templates"
	defaultStaticDir       = "web/static"
	defaultLeadNotifyEmail = "leads@nebulaone.local"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv        string
	AdminEmail    string
	AdminPassword string
	SessionSecret string
	DBPath        string
	Port          string
	LogLevel      string
	TemplateDir   string
	StaticDir     string

	RedisAddr  string
	SessionTTL time.Duration

	SMTPHost          string
	SMTPPort          string
	SMTPUsername      string
	SMTPPassword      string
	LeadNotifyFrom    string
	LeadNotifyTo      string
	LeadRatePerMinute int
	APIRatePerMinute  int
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: load local dev environment variables.
	// We don't fail if the file is missing; production should use real env injection.
	if err := loadDotEnv(".env"); err != nil {
		logrus.WithError(err).Warn("failed to read .env")
	}

	cfg := Config{
		AppEnv:            getEnv("APP_ENV", defaultAppEnv),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		DBPath:            getEnv("DB_PATH", defaultDBPath),
		Port:              getEnv("PORT", defaultPort),
		LogLevel:          getEnv("LOG_LEVEL", defaultLogLevel),
		TemplateDir:       getEnv("TEMPLATE_DIR", defaultTemplateDir),
		StaticDir:         getEnv("STATIC_DIR", defaultStaticDir),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		SessionTTL:        getDuration("SESSION_TTL", defaultSessionTTL),
		SMTPHost:          os.Getenv("SMTP_HOST"),
		SMTPPort:          getEnv("SMTP_PORT", defaultSMTPPort),
		SMTPUsername:      os.Getenv("SMTP_USERNAME"),
		SMTPPassword:      os.Getenv("SMTP_PASSWORD"),
		LeadNotifyFrom:    getEnv("LEAD_NOTIFY_FROM", defaultLeadNotifyEmail),
		LeadNotifyTo:      os.Getenv("LEAD_NOTIFY_TO"),
		LeadRatePerMinute: getInt("LEAD_RATE_PER_MINUTE", defaultLeadRatePerMin),
		APIRatePerMinute:  getInt("API_RATE_PER_MINUTE", defaultAPIRatePerMin),
	}

	if cfg.AdminEmail == "" {
		logrus.Warn("ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		logrus.Warn("ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		logrus.Warn("SESSION_SECRET is not set")
	}
	if cfg.LeadNotifyTo != "" && cfg.SMTPHost == "" {
		logrus.Warn("LEAD_NOTIFY_TO is set but SMTP_HOST is not; lead emails are disabled")
	}

	return cfg
}

// IsDev reports whether the app runs in local development mode.
func (c Config) IsDev() bool {
	return c.AppEnv == defaultAppEnv
}

// NotifyLeads reports whether captured leads should be emailed to sales.
func (c Config) NotifyLeads() bool {
	return c.SMTPHost != "" && c.LeadNotifyTo != ""
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		logrus.WithField("key", key).Warnf("invalid duration %q, using %s", raw, defaultVal)
		return defaultVal
	}
	return d
}

func getInt(key string, defaultVal int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		logrus.WithField("key", key).Warnf("invalid integer %q, using %d", raw, defaultVal)
		return defaultVal
	}
	return n
}
