package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/usmanz-dev/nova-pos-terminal/internal/backend"
	"github.com/usmanz-dev/nova-pos-terminal/internal/catalog"
	"github.com/usmanz-dev/nova-pos-terminal/internal/httpapi"
	"github.com/usmanz-dev/nova-pos-terminal/internal/receipt"
	"github.com/usmanz-dev/nova-pos-terminal/internal/session"
)

type Config struct {
	HTTPPort        string
	BackendURL      string
	RedisAddr       string
	RedisPassword   string
	SessionFile     string
	StoreName       string
	StoreTagline    string
	BackendTimeout  time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		BackendURL:      getEnv("BACKEND_URL", "http://localhost:5000/api"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		SessionFile:     getEnv("SESSION_FILE", filepath.Join(home, ".nova-pos", "session.json")),
		StoreName:       getEnv("STORE_NAME", ""),
		StoreTagline:    getEnv("STORE_TAGLINE", ""),
		BackendTimeout:  15 * time.Second,
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	// Stored cashier credential. A missing file just means nobody is logged
	// in yet; the backend will reject protected calls with 401.
	creds, err := session.Load(cfg.SessionFile)
	if err != nil {
		log.Fatalf("Failed to load session file: %v", err)
	}
	if creds.LoggedIn() {
		log.Printf("Logged in as %s", creds.Credential().Name)
	} else {
		log.Printf("No stored session, starting logged out")
	}

	api := backend.New(cfg.BackendURL, creds, cfg.BackendTimeout)
	log.Printf("Backend API at %s", cfg.BackendURL)

	// Redis catalog cache is optional: a lone terminal runs fine without
	// one, several tills sharing a store benefit from it.
	var cache catalog.Cache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("Redis connection failed:", err)
		}
		log.Printf("Redis ping succeeded")
		cache = catalog.NewRedisCache(redisClient)
	}

	catalogService := catalog.NewService(api, cache)
	if err := catalogService.Load(ctx); err != nil {
		log.Printf("Initial catalog load failed: %v", err)
	}

	registry := httpapi.NewRegistry(catalogService, api)
	renderer := &receipt.Renderer{StoreName: cfg.StoreName, Tagline: cfg.StoreTagline}
	sessions := httpapi.NewSessionHandler(registry, renderer, catalogService)
	products := httpapi.NewCatalogHandler(catalogService)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      httpapi.NewRouter(sessions, products, cfg.RequestTimeout),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("POS terminal listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down terminal...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("terminal stopped")
}
