package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"evisa/internal/config"
	"evisa/internal/database"
	"evisa/internal/domain"
	"evisa/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type account struct {
	email    string
	password string
	name     string
	passport string
	role     domain.UserRole
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL, zap.NewNop())
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	users := repository.NewUserRepository(db)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	accounts := []account{
		{
			email:    envOr("SEED_ADMIN_EMAIL", "admin@thaievisa.local"),
			password: envOr("SEED_ADMIN_PASSWORD", "admin123"),
			name:     "Portal Administrator",
			passport: "ADMIN0001",
			role:     domain.RoleAdmin,
		},
		{
			email:    envOr("SEED_MANAGER_EMAIL", "manager@thaievisa.local"),
			password: envOr("SEED_MANAGER_PASSWORD", "manager123"),
			name:     "Visa Officer",
			passport: "MANAGER0001",
			role:     domain.RoleManager,
		},
	}

	for _, a := range accounts {
		if _, err := users.GetByEmail(ctx, a.email); err == nil {
			log.Printf("%s already exists, skipping", a.email)
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			log.Fatalf("lookup %s: %v", a.email, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal(err)
		}
		u := &domain.User{
			FullName:       a.name,
			Email:          a.email,
			PasswordHash:   string(hash),
			Phone:          "+66 2 000 0000",
			Nationality:    "Thai",
			PassportNumber: a.passport,
			Role:           a.role,
			IsVerified:     true,
		}
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("create %s: %v", a.email, err)
		}
		log.Printf("%s created: %s", a.role, a.email)
	}

	log.Println("Seed completed")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
