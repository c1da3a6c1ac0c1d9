package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/dentika/clinic-api/internal/repository/postgres"
	"github.com/dentika/clinic-api/pkg/logger"
	"github.com/dentika/clinic-api/pkg/messaging/redis"
	"github.com/dentika/clinic-api/pkg/metrics"
	"github.com/dentika/clinic-api/pkg/worker"
)

// The relay is deployed as a standalone daemon; unlike the API it has
// no config file, everything comes from the environment.
type workerConfig struct {
	DatabaseURL   string        `envconfig:"DATABASE_URL" required:"true"`
	RedisURL      string        `envconfig:"REDIS_URL" required:"true"`
	HealthPort    int           `envconfig:"HEALTH_PORT" default:"8081"`
	BatchSize     int           `envconfig:"OUTBOX_BATCH_SIZE" default:"100"`
	PollInterval  time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"5s"`
	MaxAttempts   int           `envconfig:"OUTBOX_MAX_ATTEMPTS" default:"5"`
	RetryBackoff  time.Duration `envconfig:"OUTBOX_RETRY_BACKOFF" default:"30s"`
	RetentionDays int           `envconfig:"OUTBOX_RETENTION_DAYS" default:"7"`
	SweepInterval time.Duration `envconfig:"OUTBOX_SWEEP_INTERVAL" default:"1h"`
}

func main() {
	appLog := logger.NewLogger(nil)

	var cfg workerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		appLog.Fatal(err, "failed to load worker configuration")
	}

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		appLog.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.RedisURL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}, &log.Logger)
	if err != nil {
		appLog.Fatal(err, "failed to connect to redis")
	}
	defer broker.Close()

	outboxRepo := postgres.NewOutboxRepository(db)
	m := metrics.NewMetrics("clinic", "worker")

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		worker.OutboxProcessorConfig{
			BatchSize:    cfg.BatchSize,
			PollInterval: cfg.PollInterval,
			MaxAttempts:  cfg.MaxAttempts,
			RetryBackoff: cfg.RetryBackoff,
		},
		appLog,
		m,
	)

	retention := worker.NewRetentionWorker(
		outboxRepo,
		worker.RetentionConfig{
			RetentionDays: cfg.RetentionDays,
			SweepInterval: cfg.SweepInterval,
		},
		appLog,
	)

	startHealthServer(cfg.HealthPort, db, appLog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLog.Info("shutdown signal received")
		cancel()
	}()

	go retention.Start(ctx)
	processor.Start(ctx)
}

func startHealthServer(port int, db *sqlx.DB, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
			log.Error(err, "health server failed")
			os.Exit(1)
		}
	}()
}
