package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ikkim/cart-backend/config"
	"github.com/ikkim/cart-backend/internal/app/controller"
	"github.com/ikkim/cart-backend/internal/app/repository"
	"github.com/ikkim/cart-backend/internal/app/service"
	"github.com/ikkim/cart-backend/internal/db"
	"github.com/ikkim/cart-backend/internal/router"
	"github.com/ikkim/cart-backend/internal/scheduler"
	"github.com/ikkim/cart-backend/pkg/logger"
	redisclient "github.com/ikkim/cart-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logger.Initialize(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Log.Format == "console",
	})

	logger.Info("Starting Cart Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"storage":     cfg.Storage.Driver,
		"log_level":   cfg.Log.Level,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cartRepo, closeStore, err := openCartRepository(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize cart storage", err)
	}
	defer closeStore()

	if cfg.Redis.Enabled {
		client, err := redisclient.Connect(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to initialize Redis", err)
		}
		defer func() {
			if err := redisclient.Close(client); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
		cartRepo = repository.NewCachedCartRepository(cartRepo, repository.NewRedisCartCache(client, cfg.Redis.CartTTL))
	}

	cartService := service.NewCartService(cartRepo)
	cartController := controller.NewCartController(cartService, cfg.HTTP.StrictStatus)
	engine := router.NewRouter(cartController, cfg).Setup()

	if cfg.Stats.Schedule != "" {
		statsScheduler := scheduler.NewCartStatsScheduler(cartService, cfg.Stats.Schedule)
		if err := statsScheduler.Start(); err != nil {
			logger.Fatal("Failed to start cart stats scheduler", err)
		}
		defer statsScheduler.Stop()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		logger.Error("Server stopped unexpectedly", err)
	}

	logger.Info("Shutting down server gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	logger.Info("Server stopped successfully")
}

// openCartRepository connects the configured store and returns its
// repository together with a close function.
func openCartRepository(ctx context.Context, cfg *config.Config) (repository.CartRepository, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		client, err := db.ConnectMongo(ctx, &cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		coll := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Error("Failed to disconnect from MongoDB", err)
			}
		}
		return repository.NewCartMongoRepository(coll), closeFn, nil

	default:
		gdb, err := db.Open(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(gdb); err != nil {
			_ = db.Close(gdb)
			return nil, nil, err
		}
		closeFn := func() {
			if err := db.Close(gdb); err != nil {
				logger.Error("Failed to close database connection", err)
			}
		}
		return repository.NewCartRepository(gdb), closeFn, nil
	}
}
