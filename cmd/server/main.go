package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"nammauto/internal/app"
	"nammauto/internal/config"
	"nammauto/internal/handler"
	internalRedis "nammauto/internal/redis"
	"nammauto/internal/service"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// New Relic first, so the database driver can be instrumented.
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s", cfg.NewRelic.AppName)
		}
	}

	storage, err := app.NewStorage(ctx, cfg, nrApp)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer storage.Close()
	log.Printf("Storage ready (driver=%s)", cfg.Storage.Driver)

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = app.NewRedisClient(ctx, cfg.Redis, nrApp)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Connected to Redis")
	}

	server := wireServer(storage, redisClient, nrApp, cfg)

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(storage *app.Storage, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	var presenceStore internalRedis.PresenceStoreInterface
	var lockStore internalRedis.LockStoreInterface
	if redisClient != nil {
		presenceStore = internalRedis.NewPresenceStore(redisClient)
		lockStore = internalRedis.NewLockStore(redisClient)
	}

	authService := service.NewAuthService(storage.Users, presenceStore)
	rideService := service.NewRideService(storage.Rides, lockStore)

	authHandler := handler.NewAuthHandler(authService)
	rideHandler := handler.NewRideHandler(rideService)

	router := app.NewRouter(app.RouterDeps{
		AuthHandler: authHandler,
		RideHandler: rideHandler,
		RedisClient: redisClient,
		NewRelicApp: nrApp,
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
