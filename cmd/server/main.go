package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"machtrade/internal/config"
	"machtrade/internal/infra"
	"machtrade/internal/repository"
	"machtrade/internal/router"
	"machtrade/internal/scope"
	"machtrade/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// A malformed resource catalog is a programming error; refuse to boot.
	if err := scope.DefaultCatalog.Validate(); err != nil {
		log.Fatal().Err(err).Msg("resource catalog is invalid")
	}
	enf := scope.NewEnforcer(scope.DefaultCatalog)

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Async workers: receipt PDFs/emails and post-commit audit entries.
	// Handlers are wired here (composition root) so the pool has full access
	// to all infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	smtpCB := infra.NewCircuitBreaker(5, 2, time.Minute)
	branchRepo := repository.NewBranchRepository(db, enf)
	auditRepo := repository.NewAuditRepository(db, enf)

	pool := worker.NewPool(rdb)
	pool.Register(worker.QueueReceipt, worker.NewReceiptWorker(cfg, branchRepo, mailer, smtpCB).Handle)
	pool.Register(worker.QueueAudit, worker.NewAuditWorker(auditRepo).Handle)
	pool.Start(ctx, cfg.WorkerPoolSize)

	worker.StartRequeueCron(ctx, worker.RequeueCronConfig{RDB: rdb, CB: smtpCB})

	r := router.New(cfg, db, rdb, enf)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("machtrade backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
