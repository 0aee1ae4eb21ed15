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
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/lrcollege/tipledger/internal/adapter/http"
	"github.com/lrcollege/tipledger/internal/adapter/http/handler"
	"github.com/lrcollege/tipledger/internal/adapter/http/middleware"
	"github.com/lrcollege/tipledger/internal/adapter/repository/memory"
	postgresRepo "github.com/lrcollege/tipledger/internal/adapter/repository/postgres"
	redisRepo "github.com/lrcollege/tipledger/internal/adapter/repository/redis"
	"github.com/lrcollege/tipledger/internal/infrastructure/auth"
	"github.com/lrcollege/tipledger/internal/infrastructure/config"
	"github.com/lrcollege/tipledger/internal/infrastructure/logger"
	"github.com/lrcollege/tipledger/internal/infrastructure/metrics"
	"github.com/lrcollege/tipledger/internal/infrastructure/postgres"
	"github.com/lrcollege/tipledger/internal/infrastructure/redis"
	"github.com/lrcollege/tipledger/internal/usecase"
)

const limiterIdleTime = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	app, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      app.Handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go app.sweepLimiters(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// app is the wired service.
type app struct {
	Handler     http.Handler
	rateLimiter *middleware.RateLimiter
	closers     []func()
}

// Close releases connections in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *app) sweepLimiters(ctx context.Context) {
	ticker := time.NewTicker(limiterIdleTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.rateLimiter.CleanupLimiters(limiterIdleTime)
		}
	}
}

// storage is the set of repositories backing the use cases.
type storage struct {
	txManager   usecase.TransactionManager
	accountRepo usecase.AccountRepository
	tipRepo     usecase.TipRepository
	ledgerRepo  usecase.LedgerRepository
	retrier     usecase.Retrier
	check       handler.HealthCheck
	close       func()
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	a := &app{}

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if store.close != nil {
		a.closers = append(a.closers, store.close)
	}

	checks := map[string]handler.HealthCheck{}
	if store.check != nil {
		checks[cfg.StorageDriver] = store.check
	}

	var (
		cache            usecase.Cache
		idempotencyStore usecase.IdempotencyStore
	)
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
		log.Info().Msg("connected to redis")

		cache = redisRepo.NewCache(redisClient)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		checks["redis"] = func(ctx context.Context) error { return pingRedis(ctx, redisClient) }
	} else {
		log.Warn().Msg("REDIS_URL not set, identity cache and idempotency keys disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	tipUC := usecase.NewTipUseCase(
		store.txManager,
		store.accountRepo,
		store.tipRepo,
		postgresRepo.NewULIDGenerator(),
		usecase.WithRetrier(store.retrier),
		usecase.WithMetrics(m),
		usecase.WithTransactionTimeout(cfg.TipTimeout),
	)
	accountUC := usecase.NewAccountUseCase(store.accountRepo, cache)
	ledgerUC := usecase.NewLedgerUseCase(store.ledgerRepo)

	a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithMetrics(m)

	a.Handler = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		TipHandler:       handler.NewTipHandler(tipUC, accountUC),
		AccountHandler:   handler.NewAccountHandler(accountUC),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC),
		HealthHandler:    handler.NewHealthHandler(checks),
		TokenVerifier:    auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		Metrics:          m,
		Gatherer:         reg,
		RateLimiter:      a.rateLimiter,
		Logger:           log,
	})

	return a, nil
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &storage{
			txManager:   memory.NewTxManager(store),
			accountRepo: memory.NewAccountRepository(store),
			tipRepo:     memory.NewTipRepository(store),
			ledgerRepo:  memory.NewLedgerRepository(store),
			retrier:     postgresRepo.NewRetrier(cfg.TipMaxRetries),
		}, nil
	}

	if cfg.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	log.Info().Msg("connected to postgres")

	return &storage{
		txManager:   postgresRepo.NewTxManager(pool, cfg.DatabaseLockTimeout),
		accountRepo: postgresRepo.NewAccountRepository(pool),
		tipRepo:     postgresRepo.NewTipRepository(pool),
		ledgerRepo:  postgresRepo.NewLedgerRepository(pool),
		retrier:     postgresRepo.NewRetrier(cfg.TipMaxRetries),
		check:       pool.Ping,
		close:       pool.Close,
	}, nil
}

func pingRedis(ctx context.Context, client *goredis.Client) error {
	return client.Ping(ctx).Err()
}
