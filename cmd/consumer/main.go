package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/segmentio/kafka-go"

	"example.com/gym/internal/config"
	"example.com/gym/internal/consumer"
	httptransport "example.com/gym/internal/transport/http"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("postgres unreachable: %v", err)
	}

	opsSrv := httptransport.NewOperationalServer(cfg.MetricsAddress)
	go func() {
		log.Printf("consumer metrics listening on %s", cfg.MetricsAddress)
		if err := opsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()

	handler := consumer.NewPersistenceHandler(pool)

	var wg sync.WaitGroup
	for _, topic := range cfg.ConsumerTopics {
		wg.Add(1)
		go func(topic string) {
			defer wg.Done()
			consumeTopic(ctx, cfg, topic, handler)
		}(topic)
	}

	<-ctx.Done()
	log.Println("consumer shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("metrics server shutdown error: %v", err)
	}

	wg.Wait()
}

// consumeTopic runs one processor for topic until ctx is cancelled.
func consumeTopic(ctx context.Context, cfg config.Config, topic string, handler consumer.Handler) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:         cfg.KafkaBrokers,
		GroupID:         cfg.ConsumerGroupID,
		Topic:           topic,
		MinBytes:        1e3,
		MaxBytes:        10e6,
		CommitInterval:  time.Second,
		ReadLagInterval: -1,
	})
	defer reader.Close()

	logger := log.New(log.Writer(), "[consumer "+topic+"] ", log.LstdFlags|log.Lshortfile)
	logger.Printf("started (group=%s)", cfg.ConsumerGroupID)

	err := consumer.NewProcessor(reader, handler, consumer.WithLogger(logger)).Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Printf("stopped with error: %v", err)
	}
}
