package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// ErrNotConfigured marks a backend whose credentials are missing or still
// hold the placeholder values from the example environment file.
var ErrNotConfigured = errors.New("not configured")

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local"`
	AppURL     string `yaml:"app_url" env:"APP_URL" env-default:"http://localhost:8082"`
	HTTPServer `yaml:"http_server"`
	Store      `yaml:"store"`
	Stripe     `yaml:"stripe"`
	Auth       `yaml:"auth"`
	Redis      `yaml:"redis"`
	Kafka      `yaml:"kafka"`
	Booking    `yaml:"booking"`
}

type HTTPServer struct {
	Address        string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8082"`
	Timeout        time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	CatalogTimeout time.Duration `yaml:"catalog_timeout" env:"HTTP_CATALOG_TIMEOUT" env-default:"5s"`
	RateLimit      float64       `yaml:"rate_limit" env:"HTTP_RATE_LIMIT" env-default:"2"`
	RateBurst      int           `yaml:"rate_burst" env:"HTTP_RATE_BURST" env-default:"10"`
}

// Store describes the managed Postgres database. URL is a postgres:// URL
// without a password; ServiceKey is the server-side credential.
type Store struct {
	URL          string `yaml:"url" env:"STORE_URL"`
	ServiceKey   string `yaml:"service_key" env:"STORE_SERVICE_KEY"`
	MaxOpenConns int    `yaml:"max_open_conns" env:"STORE_MAX_OPEN_CONNS" env-default:"10"`
	AutoMigrate  bool   `yaml:"auto_migrate" env:"STORE_AUTO_MIGRATE" env-default:"false"`
}

type Stripe struct {
	SecretKey     string `yaml:"secret_key" env:"STRIPE_SECRET_KEY"`
	WebhookSecret string `yaml:"webhook_secret" env:"STRIPE_WEBHOOK_SECRET"`
}

type Auth struct {
	JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
}

type Redis struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	DedupTTL time.Duration `yaml:"dedup_ttl" env:"REDIS_DEDUP_TTL" env-default:"72h"`
}

type Kafka struct {
	Brokers      []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Topic        string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"bookings.paid"`
	RetryMax     int      `yaml:"retry_max" env:"KAFKA_RETRY_MAX" env-default:"3"`
	RequiredAcks int      `yaml:"required_acks" env:"KAFKA_REQUIRED_ACKS" env-default:"-1"`
}

type Booking struct {
	PendingTTL    time.Duration `yaml:"pending_ttl" env:"BOOKING_PENDING_TTL" env-default:"0s"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"BOOKING_SWEEP_INTERVAL" env-default:"1m"`
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return cfg
}

// Load reads .env (if present), then CONFIG_PATH when set, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configPath)
		}

		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, err
		}

		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DSN builds the lib/pq connection string, injecting the service key as the password.
func (s Store) DSN() (string, error) {
	if isPlaceholder(s.URL) {
		return "", fmt.Errorf("STORE_URL is %w", ErrNotConfigured)
	}
	if isPlaceholder(s.ServiceKey) {
		return "", fmt.Errorf("STORE_SERVICE_KEY is %w", ErrNotConfigured)
	}

	u, err := url.Parse(s.URL)
	if err != nil {
		return "", fmt.Errorf("invalid STORE_URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("invalid STORE_URL scheme %q", u.Scheme)
	}

	user := "postgres"
	if u.User != nil && u.User.Username() != "" {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, s.ServiceKey)

	return u.String(), nil
}

func (s Stripe) CheckoutReady() error {
	if isPlaceholder(s.SecretKey) {
		return fmt.Errorf("STRIPE_SECRET_KEY is %w", ErrNotConfigured)
	}
	return nil
}

func (s Stripe) WebhookReady() error {
	if isPlaceholder(s.WebhookSecret) {
		return fmt.Errorf("STRIPE_WEBHOOK_SECRET is %w", ErrNotConfigured)
	}
	return nil
}

func isPlaceholder(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.HasPrefix(v, "your_") || strings.HasPrefix(v, "<")
}
