package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/gym/internal/config"
	"example.com/gym/internal/outbox"
	httptransport "example.com/gym/internal/transport/http"
)

const batchSize = 50

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	opsSrv := httptransport.NewOperationalServer(cfg.MetricsAddress)
	go func() {
		if err := opsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()

	manager := outbox.NewDLQManager(pool, cfg.DLQMaxRetries, cfg.DLQBaseDelay)
	log.Printf("dlq manager polling every %s (max retries %d, base delay %s)", cfg.DLQPollInterval, cfg.DLQMaxRetries, cfg.DLQBaseDelay)

	if err := manager.Run(ctx, cfg.DLQPollInterval, batchSize); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("dlq manager stopped: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("metrics server shutdown error: %v", err)
	}
}
