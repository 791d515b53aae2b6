package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/reelgrid/reelgrid/internal/auth"
	"github.com/reelgrid/reelgrid/internal/database"
	"github.com/reelgrid/reelgrid/internal/geoip"
	"github.com/reelgrid/reelgrid/internal/playback"
	"github.com/reelgrid/reelgrid/internal/server"
	"github.com/reelgrid/reelgrid/internal/storage"
)

func main() {
	port := getEnv("PORT", "8080")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, databaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(databaseURL); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}
	log.Println("database migrations applied")

	if err := auth.EnsureAdmin(ctx, db.Pool, os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD")); err != nil {
		log.Fatalf("admin bootstrap failed: %v", err)
	}

	store, err := storage.New(ctx, storage.Config{
		Endpoint:       getEnv("S3_ENDPOINT", "http://localhost:3900"),
		PublicEndpoint: os.Getenv("S3_PUBLIC_ENDPOINT"),
		Bucket:         getEnv("S3_BUCKET", "reelgrid"),
		AccessKey:      os.Getenv("S3_ACCESS_KEY"),
		SecretKey:      os.Getenv("S3_SECRET_KEY"),
		Region:         getEnv("S3_REGION", "eu-central-1"),
		MaxUploadBytes: getEnvInt64("MAX_POSTER_BYTES", 10*1024*1024),
	})
	if err != nil {
		log.Fatalf("storage initialization failed: %v", err)
	}

	if err := store.EnsureBucket(ctx); err != nil {
		log.Fatalf("storage bucket check failed: %v", err)
	}

	baseURL := getEnv("BASE_URL", "http://localhost:8080")

	// Posters are uploaded straight from the admin browser via presigned PUT.
	if err := store.SetCORS(ctx, []string{baseURL}); err != nil {
		log.Printf("storage CORS setup failed (continuing): %v", err)
	}
	log.Println("storage bucket ready")

	var geo *geoip.Resolver
	if path := os.Getenv("GEOIP_DB_PATH"); path != "" {
		geo, err = geoip.New(path)
		if err != nil {
			log.Printf("geoip disabled: %v", err)
			geo = nil
		} else {
			defer geo.Close()
			log.Println("geoip database loaded")
		}
	}

	sessions := playback.NewManager(slog.Default())
	sessionCtx, sessionCancel := context.WithCancel(context.Background())
	defer sessionCancel()
	go sessions.Run(sessionCtx)

	cfg := server.Config{
		DB:               db.Pool,
		Pinger:           db.Pool,
		Storage:          store,
		Sessions:         sessions,
		JWTSecret:        jwtSecret,
		BaseURL:          baseURL,
		S3PublicEndpoint: os.Getenv("S3_PUBLIC_ENDPOINT"),
	}
	if geo != nil {
		cfg.Geo = geo
	}
	srv := server.New(cfg)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("reelgrid listening on :%s", port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-shutdownCh
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown failed: %v", err)
	}
	sessionCancel()
	log.Println("shutdown complete")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
