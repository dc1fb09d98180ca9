package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/devsu/transaction-service/internal/adapter/generator"
	httpAdapter "github.com/devsu/transaction-service/internal/adapter/http"
	"github.com/devsu/transaction-service/internal/adapter/http/handler"
	"github.com/devsu/transaction-service/internal/adapter/http/middleware"
	"github.com/devsu/transaction-service/internal/adapter/messaging/rabbitmq"
	postgresRepo "github.com/devsu/transaction-service/internal/adapter/repository/postgres"
	redisRepo "github.com/devsu/transaction-service/internal/adapter/repository/redis"
	"github.com/devsu/transaction-service/internal/adapter/userclient"
	"github.com/devsu/transaction-service/internal/infrastructure/auth"
	"github.com/devsu/transaction-service/internal/infrastructure/config"
	"github.com/devsu/transaction-service/internal/infrastructure/eventpublisher"
	"github.com/devsu/transaction-service/internal/infrastructure/logger"
	"github.com/devsu/transaction-service/internal/infrastructure/metrics"
	"github.com/devsu/transaction-service/internal/infrastructure/postgres"
	"github.com/devsu/transaction-service/internal/infrastructure/redis"
	"github.com/devsu/transaction-service/internal/usecase"
)

const serviceName = "transaction-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: serviceName})
	log.Logger = l

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, l); err != nil {
		l.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}

	l.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, l zerolog.Logger) error {
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	l.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	l.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	retrier := postgresRepo.NewRetrier().WithLogger(l)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	cache := redisRepo.NewCache(redisClient)

	// User service
	users := userclient.NewClient(userclient.Config{
		BaseURL:    cfg.UserServiceURL,
		Timeout:    cfg.UserServiceTimeout,
		MaxRetries: cfg.UserServiceMaxRetries,
		Metrics:    m,
		Logger:     l,
	})
	clients := userclient.NewCachedDirectory(users, cache, cfg.ClientCacheTTL, m, l)

	// Use cases
	idGen := generator.NewULIDGenerator()
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, outboxRepo, clients,
		generator.NewLuhnAccountNumberGenerator(), retrier, idGen, m, l)
	movementUC := usecase.NewMovementUseCase(txManager, accountRepo, outboxRepo, retrier, idGen, m, l)
	reportUC := usecase.NewReportUseCase(accountRepo, clients, m, l)

	// Outbox relay
	broker, closeBroker, err := newBrokerPublisher(cfg, l)
	if err != nil {
		return err
	}
	defer closeBroker()

	relay := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  broker,
		Metrics:    m,
		Logger:     l,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
		Retention:  cfg.OutboxRetention,
	})

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)

	var verifier middleware.TokenVerifier
	if cfg.AuthEnabled {
		verifier = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
		l.Info().Msg("bearer authentication enabled")
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:  handler.NewAccountHandler(accountUC),
		MovementHandler: handler.NewMovementHandler(movementUC),
		ReportHandler:   handler.NewReportHandler(reportUC),
		HealthHandler: handler.NewHealthHandler(map[string]handler.Pinger{
			"postgres": pool,
			"redis":    redis.NewPinger(redisClient),
		}),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		TokenVerifier:    verifier,
		Logger:           l,
		Metrics:          m,
		HTTPMetrics:      middleware.NewHTTPMetrics(prometheus.DefaultRegisterer),
		MetricsHandler:   promhttp.Handler(),
	})

	server := &http.Server{
		Addr:         serverAddr(cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	go func() {
		if err := relay.Start(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			l.Error().Err(err).Msg("event publisher stopped")
		}
	}()
	go rateLimiter.StartCleanup(workerCtx, 10*time.Minute, time.Hour)

	serverErr := make(chan error, 1)
	go func() {
		l.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	l.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	return nil
}

// newBrokerPublisher connects to RabbitMQ when configured and otherwise logs events.
func newBrokerPublisher(cfg *config.Config, l zerolog.Logger) (usecase.EventPublisher, func(), error) {
	if cfg.RabbitMQURL == "" {
		l.Warn().Msg("RABBITMQ_URL not set, outbox events will be logged only")
		return eventpublisher.NewLogPublisher(l), func() {}, nil
	}

	p, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, l)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	return p, p.Close, nil
}

func serverAddr(port string) string {
	return ":" + port
}
