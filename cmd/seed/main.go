package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/Windi-Fikriyansyah/billing_api/internal/config"
	"github.com/Windi-Fikriyansyah/billing_api/internal/db"
	"github.com/Windi-Fikriyansyah/billing_api/internal/logger"
	"github.com/Windi-Fikriyansyah/billing_api/internal/seed"
)

func main() {
	_ = godotenv.Load()

	if err := run(context.Background()); err != nil {
		boot := logger.New("development")
		boot.Error().Err(err).Msg("seed failed")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Environment)

	gdb, err := db.Connect(cfg.DB, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if err := seed.Run(ctx, gdb); err != nil {
		return err
	}
	log.Info().
		Int("profiles", len(seed.Profiles())).
		Int("contracts", len(seed.Contracts())).
		Int("jobs", len(seed.Jobs())).
		Msg("seeded reference dataset")
	return nil
}
