// Command create-admin creates the back-office admin user, or resets its
// password when the user already exists.
//
//	go run ./cmd/create-admin -email admin@example.com -password 'long secret'
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"roadlines/internal/app"
	"roadlines/internal/config"
	"roadlines/internal/repository/postgres"
	"roadlines/internal/service"
)

func main() {
	email := flag.String("email", os.Getenv("ADMIN_EMAIL"), "admin email address")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password (at least 8 characters)")
	flag.Parse()

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := app.NewDatabase(ctx, cfg.Database, nil)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	// Token settings are irrelevant here; only the user store is touched.
	authService := service.NewAuthService(postgres.NewUserRepository(db), cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	created, err := authService.EnsureAdmin(ctx, *email, *password)
	if err != nil {
		log.Fatalf("failed to create admin: %v", err)
	}

	if created {
		log.Printf("admin created: email=%s", *email)
	} else {
		log.Printf("admin password reset: email=%s", *email)
	}
}
