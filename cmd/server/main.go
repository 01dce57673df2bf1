package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/mifmarket/directory-api/internal/api"
	"github.com/mifmarket/directory-api/internal/campaign"
	"github.com/mifmarket/directory-api/internal/config"
	"github.com/mifmarket/directory-api/internal/directory"
	"github.com/mifmarket/directory-api/internal/identity"
	"github.com/mifmarket/directory-api/internal/settings"
	"github.com/mifmarket/directory-api/internal/storage"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	log.Println("MIF Market directory API starting")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	host := cfg.Server.GetHost()
	if err := checkPortAvailable(host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		pingCancel()
		log.Fatalf("Database ping failed: %v", err)
	}
	pingCancel()
	log.Println("Database connected")

	// Redis backs the site-settings cache. A failed ping is a warning, not
	// fatal: the settings store falls back to the database on cache errors.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, pingCancel = context.WithTimeout(ctx, 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Printf("Warning: Redis connection failed (%s): %v", cfg.Redis.Addr, err)
	} else {
		log.Printf("Redis connected: %s", cfg.Redis.Addr)
	}
	pingCancel()

	// Object storage for producer logos
	logoStore, err := storage.NewLogoStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize logo storage: %v", err)
	}

	// Identity provider client
	idp := identity.NewClient(cfg.Identity)

	// Stores and services
	producers := directory.NewStore(db)
	roles := identity.NewRolesStore(db)
	registration := directory.NewRegistrationService(producers, roles, idp)
	importer := directory.NewImporter(producers)
	campaigns := campaign.NewStore(db)
	materializer := campaign.NewMaterializer(campaigns, producers)
	settingsStore := settings.NewStore(db, redisClient)

	handlers := api.NewHandlers(cfg, producers, registration, importer,
		campaigns, materializer, settingsStore, roles, idp, logoStore)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, cfg.Server.Port),
		Handler:      api.SetupRoutes(handlers),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	redisClient.Close()
	db.Close()

	log.Println("Server stopped")
}
