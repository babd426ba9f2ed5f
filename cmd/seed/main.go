// Command seed provisions the development login so a fresh database accepts
// test@example.com / password123! immediately.
package main

import (
	"context"
	"errors"
	"log"
	"time"

	"corebank/backend/internal/config"
	"corebank/backend/internal/db"
	"corebank/backend/internal/security"
	userdomain "corebank/backend/internal/user/domain"
	userrepo "corebank/backend/internal/user/repository"
)

const (
	seedEmail    = "test@example.com"
	seedPassword = "password123!"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Env == "production" {
		log.Fatal("seed: refusing to run with APP_ENV=production")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("config: DATABASE_URL must be set")
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close()

	hasher := security.NewHasher(cfg.BcryptCost)
	hash, err := hasher.Hash([]byte(seedPassword))
	if err != nil {
		log.Fatalf("hash: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo := userrepo.NewPostgres(database)
	err = repo.Create(ctx, &userdomain.User{
		Email:        seedEmail,
		FullName:     "Test User",
		Role:         userdomain.RoleUser,
		PasswordHash: hash,
		Active:       true,
		Verified:     true,
	})
	if errors.Is(err, userrepo.ErrDuplicateEmail) {
		log.Printf("seed: %s already exists", seedEmail)
		return
	}
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Printf("seed: created %s", seedEmail)
}
