// Command leder-seed creates the schema, the demo catalog and the admin account.
package main

import (
	"log"

	"leder/internal/config"
	"leder/internal/repos"
	"leder/internal/services"
)

func main() {
	cfg := config.Load()

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	seeded, err := repos.SeedCatalog(db)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("[seed] catalog created=%v", seeded)

	if cfg.AdminPassword == "" {
		log.Printf("[seed] ADMIN_PASSWORD not set, admin account skipped")
		return
	}
	auth := services.NewAuthService(repos.NewUserRepo(db), cfg.SessionTTL)
	created, err := auth.ProvisionAdmin(cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("[seed] admin %s created=%v", cfg.AdminEmail, created)
}
