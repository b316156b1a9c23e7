package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	DBDSN        string
	LogFile      string
	PublicURL    string
	OrderPrefix  string
	Currency     string
	SessionTTL   time.Duration
	SecureCookie bool

	StripeSecretKey     string
	StripeWebhookSecret string

	NovaPoshtaKey string
	NovaPoshtaURL string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	AdminEmail    string
	AdminPassword string
	SeedDemo      bool
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func Load() Config {
	// .env is optional; real environment wins.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] .env not loaded: %v", err)
	}

	ttl, err := time.ParseDuration(env("SESSION_TTL", "720h"))
	if err != nil || ttl <= 0 {
		ttl = 720 * time.Hour
	}
	smtpPort, err := strconv.Atoi(env("SMTP_PORT", "587"))
	if err != nil {
		smtpPort = 587
	}
	secure, _ := strconv.ParseBool(env("COOKIE_SECURE", "false"))
	seed, _ := strconv.ParseBool(env("SEED_DEMO", "false"))

	cfg := Config{
		Port:         env("PORT", "8080"),
		DBDSN:        env("DB_DSN", "leder.db"),
		LogFile:      os.Getenv("LOG_FILE"),
		PublicURL:    env("PUBLIC_URL", "http://localhost:8080"),
		OrderPrefix:  env("ORDER_PREFIX", "LD"),
		Currency:     env("CURRENCY", "uah"),
		SessionTTL:   ttl,
		SecureCookie: secure,

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		NovaPoshtaKey: os.Getenv("NOVA_POSHTA_API_KEY"),
		NovaPoshtaURL: env("NOVA_POSHTA_URL", "https://api.novaposhta.ua/v2.0/json/"),

		SMTPHost: env("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort: smtpPort,
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		MailFrom: env("MAIL_FROM", "support@leder.ua"),

		AdminEmail:    env("ADMIN_EMAIL", "admin@leder.ua"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SeedDemo:      seed,
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s PUBLIC_URL=%s CURRENCY=%s SESSION_TTL=%s",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.PublicURL, cfg.Currency, cfg.SessionTTL)
	return cfg
}
