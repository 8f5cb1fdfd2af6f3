package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"example.com/gym/internal/api"
	"example.com/gym/internal/auth"
	"example.com/gym/internal/cache"
	"example.com/gym/internal/config"
	"example.com/gym/internal/domain"
	"example.com/gym/internal/outbox"
	"example.com/gym/internal/persistence/memory"
	"example.com/gym/internal/persistence/mongodb"
	"example.com/gym/internal/persistence/postgres"
	httptransport "example.com/gym/internal/transport/http"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		repo       domain.Repository
		dispatcher *outbox.Dispatcher
	)

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()

		var opts []postgres.Option
		if cfg.OutboxEnabled {
			opts = append(opts, postgres.WithOutbox())

			producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
			defer producer.Close()
			registry := outbox.NewSchemaRegistryClient(cfg.SchemaRegistryURL)
			dispatcher = outbox.NewDispatcher(pool, producer, registry, cfg.OutboxPollInterval, cfg.OutboxBatchSize)
			go dispatcher.Start(ctx)
		}
		repo = postgres.NewRepository(pool, opts...)
	case config.BackendMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatalf("failed to connect to mongo: %v", err)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		store := mongodb.NewRepository(client.Database(cfg.MongoDatabase))
		if err := store.EnsureIndexes(ctx); err != nil {
			log.Fatalf("failed to create mongo indexes: %v", err)
		}
		repo = store
	case config.BackendMemory:
		repo = memory.NewSeededRepository()
	default:
		log.Fatalf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	var reports cache.ReportCache = cache.NoopCache{}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer client.Close()

		redisCache := cache.NewRedisCache(client, cfg.CachePrefix, cfg.CacheTTL)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("report cache unavailable, continuing without it: %v", err)
		} else {
			reports = redisCache
		}
	}

	service := domain.NewService(repo, reports)

	handler := api.NewHandler(service)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	middlewares := []httptransport.Middleware{
		httptransport.RequestLogger(log.New(log.Writer(), "[http] ", log.LstdFlags)),
		httptransport.CORS(cfg.CORSOrigin),
	}
	if cfg.AuthEnabled {
		authMiddleware := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}, auth.SkipOperational)
		middlewares = append(middlewares, authMiddleware.Wrap)
	}

	server := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.HTTPAddress), httptransport.Chain(mux, middlewares...))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("gym-service listening on %s (store=%s)", cfg.HTTPAddress, cfg.StoreBackend)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	if dispatcher != nil {
		dispatcher.Wait()
	}
}
