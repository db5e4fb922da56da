package main

import (
	"context"
	"fmt"
	"os"

	"finboard/internal/config"
	"finboard/internal/database"
	"finboard/internal/events"
	"finboard/internal/logger"
	"finboard/internal/seed"
	"finboard/internal/services"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Seed error: %v", err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: seed <user-email>")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	dbConfig, err := database.NewConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	db := dbManager.DB()
	user, err := services.NewUserService(db).GetUserByEmail(os.Args[1])
	if err != nil {
		return fmt.Errorf("look up %s: %w", os.Args[1], err)
	}

	// Running servers pick the rows up through their TTL or the database
	// trigger; this process has no subscribers of its own.
	n, err := seed.Load(context.Background(), services.NewTransactionService(db, events.Discard), user.ID)
	if err != nil {
		return err
	}
	logger.Get().Infof("Inserted %d sample transactions for %s", n, user.Email)
	return nil
}
