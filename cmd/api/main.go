package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/Windi-Fikriyansyah/billing_api/internal/config"
	"github.com/Windi-Fikriyansyah/billing_api/internal/db"
	"github.com/Windi-Fikriyansyah/billing_api/internal/logger"
	"github.com/Windi-Fikriyansyah/billing_api/internal/realtime"
	"github.com/Windi-Fikriyansyah/billing_api/internal/router"
	"github.com/Windi-Fikriyansyah/billing_api/internal/services/billing"
	"github.com/Windi-Fikriyansyah/billing_api/internal/services/contracts"
	"github.com/Windi-Fikriyansyah/billing_api/internal/services/ledger"
	"github.com/Windi-Fikriyansyah/billing_api/internal/services/reports"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		boot := logger.New("development")
		boot.Error().Err(err).Msg("billing api stopped")
		os.Exit(1)
	}
}

// run wires the process and blocks until ctx is cancelled or a component fails.
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
	if cfg.DB.AutoMigrate {
		if err := db.Migrate(gdb); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	rdb, err := realtime.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if rdb == nil {
		log.Warn().Msg("REDIS_ADDR not set, events are delivered to this instance only")
	} else {
		defer rdb.Close()
	}

	hub := realtime.NewHub(log)
	notifier := realtime.NewNotifier(hub, rdb, log)

	ledgerSvc := ledger.NewLedgerService(gdb, log)
	contractSvc := contracts.NewContractService(gdb)
	billingSvc := billing.NewBillingService(gdb, ledgerSvc, contractSvc, log,
		billing.WithNotifier(notifier),
		billing.WithDepositCapRatio(cfg.Billing.DepositCapRatio),
	)

	app := router.New(router.Deps{
		Config:    cfg,
		Log:       log,
		DB:        gdb,
		RDB:       rdb,
		Hub:       hub,
		Ledger:    ledgerSvc,
		Contracts: contractSvc,
		Billing:   billingSvc,
		Reports:   reports.NewReportService(gdb),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return notifier.Run(gctx) })
	g.Go(func() error {
		log.Info().Str("port", cfg.AppPort).Str("env", cfg.Environment).Msg("http server listening")
		return app.Listen(":" + cfg.AppPort)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info().Msg("bye")
	return nil
}
