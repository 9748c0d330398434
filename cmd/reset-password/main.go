package main

import (
	"context"
	"flag"

	"hotel-portfolio-api/internal/config"
	"hotel-portfolio-api/internal/repository"
	"hotel-portfolio-api/pkg/database"
	"hotel-portfolio-api/pkg/logger"
	"hotel-portfolio-api/pkg/password"

	"github.com/google/uuid"
)

// reset-password sets a user's password and logs out their sessions.
func main() {
	email := flag.String("email", "", "email of the user to reset")
	newPassword := flag.String("password", "", "new password")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	if *email == "" {
		*email = cfg.SeedAdminEmail
	}
	if len(*newPassword) < 8 {
		log.Fatal("-password is required and must be at least 8 characters")
	}

	ctx := context.Background()
	db, err := database.ConnectDB(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	userRepo := repository.NewUserRepo(db)

	user, err := userRepo.FindByEmail(ctx, *email)
	if err != nil {
		log.WithError(err).WithField("email", *email).Fatal("User not found")
	}

	hashed, err := password.Hash(*newPassword)
	if err != nil {
		log.WithError(err).Fatal("Failed to hash password")
	}
	if err := userRepo.UpdatePassword(ctx, user.ID, hashed); err != nil {
		log.WithError(err).Fatal("Failed to update password")
	}
	if err := userRepo.UpdateSession(ctx, user.ID, uuid.New().String()); err != nil {
		log.WithError(err).Fatal("Failed to rotate session")
	}

	log.WithField("email", *email).Info("Password reset")
}
