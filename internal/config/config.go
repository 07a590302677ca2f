package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string `yaml:"port"`
	GinMode     string `yaml:"gin_mode"`
	LogLevel    string `yaml:"log_level"`
	DatabaseURL string `yaml:"database_url"`
	MongoURI    string `yaml:"mongo_uri"`
	MongoDB     string `yaml:"mongo_db"`

	JWTSecret string        `yaml:"-"`
	TokenTTL  time.Duration `yaml:"token_ttl"`

	ListingCacheTTL time.Duration `yaml:"listing_cache_ttl"`
	CartKey         string        `yaml:"cart_key"`
	CartIdle        time.Duration `yaml:"cart_idle"`
	StorageTimeout  time.Duration `yaml:"storage_timeout"`
	ContactPhone    string        `yaml:"contact_phone"`

	Google GoogleConfig `yaml:"google"`
}

type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"-"`
	RedirectURL  string `yaml:"redirect_url"`
}

// Enabled reports whether Google sign-in is configured.
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

func defaults() *Config {
	return &Config{
		Port:            "8083",
		LogLevel:        "info",
		MongoURI:        "mongodb://localhost:27017",
		MongoDB:         "kirayawale",
		TokenTTL:        24 * time.Hour,
		ListingCacheTTL: 30 * time.Second,
		CartKey:         "kirayawale_cart",
		CartIdle:        30 * time.Minute,
		StorageTimeout:  5 * time.Second,
		ContactPhone:    "916207797744",
	}
}

// Load reads .env (if present), then the YAML file named by CONFIG_FILE
// (if set), then environment variables, each layer overriding the last.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: .env: %w", err)
	}

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("config: DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET is required")
	}
	for name, d := range map[string]time.Duration{
		"TOKEN_TTL":         cfg.TokenTTL,
		"LISTING_CACHE_TTL": cfg.ListingCacheTTL,
		"CART_IDLE":         cfg.CartIdle,
		"STORAGE_TIMEOUT":   cfg.StorageTimeout,
	} {
		if d <= 0 {
			return nil, fmt.Errorf("config: %s must be positive, got %s", name, d)
		}
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	str := map[string]*string{
		"PORT":                 &cfg.Port,
		"GIN_MODE":             &cfg.GinMode,
		"LOG_LEVEL":            &cfg.LogLevel,
		"DATABASE_URL":         &cfg.DatabaseURL,
		"MONGO_URI":            &cfg.MongoURI,
		"MONGO_DB":             &cfg.MongoDB,
		"JWT_SECRET":           &cfg.JWTSecret,
		"CART_KEY":             &cfg.CartKey,
		"CONTACT_PHONE":        &cfg.ContactPhone,
		"GOOGLE_CLIENT_ID":     &cfg.Google.ClientID,
		"GOOGLE_CLIENT_SECRET": &cfg.Google.ClientSecret,
		"GOOGLE_REDIRECT_URL":  &cfg.Google.RedirectURL,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"TOKEN_TTL":         &cfg.TokenTTL,
		"LISTING_CACHE_TTL": &cfg.ListingCacheTTL,
		"CART_IDLE":         &cfg.CartIdle,
		"STORAGE_TIMEOUT":   &cfg.StorageTimeout,
	}
	for key, dst := range durations {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = d
	}
	return nil
}
