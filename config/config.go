package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
// Values are read once at startup; handlers never touch os.Getenv directly.
type Config struct {
	Port        string
	DatabaseURL string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret   string
	AdminAPIKey string

	StripeSecretKey     string
	StripeAPIBase       string
	StripeWebhookSecret string

	ResendAPIKey  string
	ResendAPIBase string
	EmailFrom     string
	SupportEmail  string

	ClerkWebhookSecret string

	// Optional broker for the notification outbox. Empty means the
	// in-process queue is used.
	RabbitMQURL       string
	NotificationQueue string

	UploadDir string
	PublicURL string

	TaxRateBps            int64
	FlatShippingCents     int64
	FreeShippingThreshold int64
}

// Load reads .env (if present) and builds the Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		AdminAPIKey: os.Getenv("ADMIN_API_KEY"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeAPIBase:       getEnv("STRIPE_API_BASE", "https://api.stripe.com/v1"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		ResendAPIKey:  os.Getenv("RESEND_API_KEY"),
		ResendAPIBase: getEnv("RESEND_API_BASE", "https://api.resend.com"),
		EmailFrom:     getEnv("EMAIL_FROM", "orders@jasonjewels.com"),
		SupportEmail:  getEnv("SUPPORT_EMAIL", "support@jasonjewels.com"),

		ClerkWebhookSecret: os.Getenv("CLERK_WEBHOOK_SECRET"),

		RabbitMQURL:       os.Getenv("RABBITMQ_URL"),
		NotificationQueue: getEnv("NOTIFICATION_QUEUE", "notifications"),

		UploadDir: getEnv("UPLOAD_DIR", "/var/www/jasonco/uploads"),
		PublicURL: getEnv("PUBLIC_URL", "http://localhost:8080"),

		TaxRateBps:            getEnvInt64("TAX_RATE_BPS", 800),
		FlatShippingCents:     getEnvInt64("FLAT_SHIPPING_CENTS", 1500),
		FreeShippingThreshold: getEnvInt64("FREE_SHIPPING_THRESHOLD_CENTS", 10000),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	return cfg, nil
}

// DSN builds the postgres connection string when DATABASE_URL is absent.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
