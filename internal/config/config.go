package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Port    string
	Env     string
	WebDir  string
	SiteURL string

	Database DatabaseConfig
	Session  SessionConfig
	Gemini   GeminiConfig
	Supabase SupabaseConfig
	Storage  StorageConfig

	PromptCode            string
	GenerateRatePerMinute int
	GenerateRateBurst     int
}

type DatabaseConfig struct {
	URL      string
	Host     string
	User     string
	Password string
	Name     string
	Port     string
}

// DSN returns DATABASE_URL if set, else a key/value DSN from the parts.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port,
	)
}

type SessionConfig struct {
	Secret       string
	CookieName   string
	TTL          time.Duration
	PollInterval time.Duration
	Secure       bool
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration // 0 means no timeout
}

type SupabaseConfig struct {
	URL            string
	AnonKey        string
	ServiceRoleKey string
}

// Configured reports whether the managed auth/storage endpoints can be used.
func (s SupabaseConfig) Configured() bool {
	return s.URL != "" && s.AnonKey != ""
}

type StorageConfig struct {
	Driver string // "disk" or "supabase"
	Dir    string
	Bucket string
}

const defaultSecret = "change-me-in-production"

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:    GetEnv("PORT", "3000"),
		Env:     GetEnv("APP_ENV", "development"),
		WebDir:  os.Getenv("WEB_DIR"),
		SiteURL: GetEnv("SITE_URL", "http://localhost:3000"),
		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     GetEnv("DB_HOST", "localhost"),
			User:     GetEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     GetEnv("DB_NAME", "postgres"),
			Port:     GetEnv("DB_PORT", "5432"),
		},
		Session: SessionConfig{
			Secret:       GetEnv("JWT_SECRET", defaultSecret),
			CookieName:   GetEnv("SESSION_COOKIE", "sa_session"),
			TTL:          GetEnvAsDuration("SESSION_TTL", 24*time.Hour),
			PollInterval: GetEnvAsDuration("SESSION_POLL_INTERVAL", 30*time.Second),
			Secure:       GetEnvAsBool("COOKIE_SECURE", false),
		},
		Gemini: GeminiConfig{
			APIKey:  os.Getenv("GEMINI_API_KEY"),
			Model:   GetEnv("GEMINI_MODEL", "models/gemini-2.5-flash-preview-05-20"),
			Timeout: GetEnvAsDuration("GENERATION_TIMEOUT", 0),
		},
		Supabase: SupabaseConfig{
			URL:            strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
			AnonKey:        os.Getenv("SUPABASE_ANON_KEY"),
			ServiceRoleKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(GetEnv("STORAGE_DRIVER", "disk")),
			Dir:    GetEnv("STORAGE_DIR", "./uploads"),
			Bucket: GetEnv("STORAGE_BUCKET", "avatar"),
		},
		PromptCode:            GetEnv("PROMPT_CODE", "GENERATE_SCRIPT"),
		GenerateRatePerMinute: GetEnvAsInt("GENERATE_RATE_PER_MINUTE", 10),
		GenerateRateBurst:     GetEnvAsInt("GENERATE_RATE_BURST", 3),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	if c.IsProduction() && c.Session.Secret == defaultSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.Storage.Driver != "disk" && c.Storage.Driver != "supabase" {
		return fmt.Errorf("unsupported STORAGE_DRIVER %q (supported: disk, supabase)", c.Storage.Driver)
	}
	if c.Storage.Driver == "supabase" && c.Supabase.URL == "" {
		return fmt.Errorf("STORAGE_DRIVER=supabase requires SUPABASE_URL")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}

// GetEnv returns the value of key or fallback when unset or empty.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func GetEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func GetEnvAsBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// GetEnvAsDuration accepts Go durations ("30s") or plain seconds ("30").
func GetEnvAsDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
