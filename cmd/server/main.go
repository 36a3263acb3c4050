package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/ziflex/lecho/v3"
	"golang.org/x/time/rate"

	"github.com/openmkt/marketplace/internal/adapter/handler"
	"github.com/openmkt/marketplace/internal/adapter/storage"
	"github.com/openmkt/marketplace/internal/config"
	"github.com/openmkt/marketplace/internal/core/domain"
	"github.com/openmkt/marketplace/internal/core/service"
	"github.com/openmkt/marketplace/internal/port"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		store   port.MarketStore
		cache   port.CacheRepository
		metrics port.MetricsRepository
		closers []func()
	)

	switch cfg.StorageBackend {
	case "memory":
		store = storage.NewMemoryAdapter()
		cache = storage.NewMemoryCache()
		metrics = storage.NewMemoryMetrics()
		logger.Info().Msg("using in-memory storage")
	default:
		db, err := sql.Open("mysql", cfg.DatabaseURI)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open mysql")
		}
		db.SetMaxOpenConns(cfg.DatabaseMaxConns)
		db.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.DatabaseConnMaxLifetime) * time.Second)

		if err := db.PingContext(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to ping mysql")
		}
		logger.Info().Msg("connected to mysql")

		mysqlAdapter := storage.NewMySQLAdapter(db)
		if err := mysqlAdapter.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to create schema")
		}

		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: cfg.RedisPoolSize,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		logger.Info().Msg("connected to redis")

		redisAdapter := storage.NewRedisAdapter(rdb)
		store = mysqlAdapter
		cache = redisAdapter
		metrics = redisAdapter
		closers = append(closers, func() { rdb.Close() }, func() { db.Close() })
	}

	svc := service.NewMarketService(store, cache, metrics, logger, service.Options{
		AdminAccount: cfg.AdminAccount,
		IDRules:      cfg.IDRules(),
		QueueSize:    cfg.QueueSize,
	})

	// Trade-history workers drain the settlement queue.
	var wg sync.WaitGroup
	for i := 0; i < cfg.WorkerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			workerLoop(id, svc.TradeEvents(), store, logger)
		}(i)
	}
	logger.Info().Int("count", cfg.WorkerCount).Msg("started trade history workers")

	e := echo.New()
	e.HideBanner = true
	e.Logger = lecho.From(logger)
	e.Validator = &handler.CustomValidator{Validator: validator.New()}
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit("250K"))
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimit))))
	e.Use(lecho.Middleware(lecho.Config{Logger: lecho.From(logger)}))

	handler.NewMarketHandler(svc).Register(e)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP shutdown error")
	}
	logger.Info().Msg("HTTP server stopped")

	// Close trade queue and wait for workers
	svc.Close()
	wg.Wait()
	logger.Info().Msg("workers stopped")

	for _, closeFn := range closers {
		closeFn()
	}
	logger.Info().Msg("connections closed")
}

func workerLoop(id int, queue <-chan domain.Trade, store port.MarketStore, logger zerolog.Logger) {
	for trade := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		err := store.WithinTx(ctx, func(tx port.MarketTx) error {
			return tx.AppendTrade(ctx, &trade)
		})
		if err != nil {
			logger.Error().Err(err).Int("worker", id).Str("trade_id", trade.ID).Msg("failed to record trade")
		}

		cancel()
	}
}
