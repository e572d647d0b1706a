package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"storefront/internal/cart"
	cartrepo "storefront/internal/cart/repository"
	"storefront/internal/commons"
	"storefront/internal/config"
	"storefront/internal/infrastructure/logger"
	"storefront/internal/infrastructure/mysql"
	"storefront/internal/infrastructure/redis"
	"storefront/internal/server"
	"storefront/internal/storefront"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), cfg.Server.StartupTimeout)
	repo, closeRepo, err := newSnapshotRepository(startupCtx, cfg, zapLogger)
	cancelStartup()
	if err != nil {
		zapLogger.Fatal("creating cart store", zap.String("store", cfg.Cart.Store), zap.Error(err))
	}
	defer closeRepo()

	ctrl, sessions := storefront.NewModule(cfg, repo, zapLogger)
	go sessions.Start()
	router := server.NewRouter(ctrl, zapLogger)

	srv := server.New(cfg.Server, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}
	sessions.CloseAll()

	zapLogger.Info("server stopped gracefully")
}

// loadConfig reads STOREFRONT_CONFIG when set, otherwise the environment.
func loadConfig() (*config.Config, error) {
	if path := os.Getenv("STOREFRONT_CONFIG"); path != "" {
		return commons.LoadConfig(path)
	}
	return config.Load()
}

func newSnapshotRepository(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) (cart.SnapshotRepository, func(), error) {
	switch cfg.Cart.Store {
	case config.CartStoreMySQL:
		db, err := mysql.NewConnection(ctx, cfg.Database, zapLogger)
		if err != nil {
			return nil, nil, err
		}
		zapLogger.Info("database connected")
		return cartrepo.NewMySQLSnapshotRepository(db), closer(db), nil

	case config.CartStoreRedis:
		rdb, err := redis.NewClient(ctx, cfg.Redis, zapLogger)
		if err != nil {
			return nil, nil, err
		}
		zapLogger.Info("redis connected")
		return cartrepo.NewRedisSnapshotRepository(rdb, cfg.Redis.CartTTL), func() { rdb.Close() }, nil

	case config.CartStoreMemory, "":
		zapLogger.Warn("using in-memory cart store, carts are lost on restart")
		return cartrepo.NewMemorySnapshotRepository(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown cart store %q", cfg.Cart.Store)
	}
}

func closer(db *sql.DB) func() {
	return func() { db.Close() }
}
