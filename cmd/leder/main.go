package main

import (
	"io"
	"log"
	"os"

	"leder/internal/config"
	"leder/internal/http/handlers"
	"leder/internal/mail"
	"leder/internal/payments"
	"leder/internal/repos"
	"leder/internal/services"
	"leder/internal/shipping"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.SeedDemo {
		seeded, err := repos.SeedCatalog(db)
		if err != nil {
			log.Fatal(err)
		}
		if seeded {
			log.Printf("[seed] demo catalog created")
		}
	}

	var gw services.Gateway
	if cfg.StripeSecretKey != "" {
		gw = payments.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.Currency)
	} else {
		log.Printf("[warn] STRIPE_SECRET_KEY not set, online payments disabled")
	}

	mailer, err := mail.New(mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.MailFrom,
	})
	if err != nil {
		log.Fatal(err)
	}

	dir := shipping.NewDirectory(shipping.NewClient(cfg.NovaPoshtaURL, cfg.NovaPoshtaKey))

	deps := handlers.NewDeps(db, cfg, gw, dir, mailer)
	app := handlers.NewApp(deps, handlers.DefaultLimits)

	log.Fatal(app.Listen(":" + cfg.Port))
}
