package main

import (
	"errors"
	"log"
	"os"

	"corebank/backend/internal/config"
	"corebank/backend/internal/db/migrate"
)

func main() {
	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := migrate.Run(cfg.DatabaseURL, direction); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("migrations: no change")
			return
		}
		log.Fatalf("migrations: %v", err)
	}
	log.Printf("migrations: %s complete", direction)
}
