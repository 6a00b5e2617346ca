package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"membership-backend/internal/audit"
	"membership-backend/internal/cache"
	"membership-backend/internal/config"
	"membership-backend/internal/handlers"
	"membership-backend/internal/middleware"
	"membership-backend/internal/natsbus"
	"membership-backend/internal/storage"
)

// @title Membership Backend API
// @version 1.0
// @description Role-gated administration API for members, accounts and funds.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}

	// Database connection (with retries)
	var db *sqlx.DB
	for i := 0; i < 10; i++ {
		db, err = sqlx.Connect("postgres", cfg.DatabaseURL)
		if err == nil {
			break
		}
		logrus.WithError(err).Warnf("DB connection attempt %d failed", i+1)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		logrus.WithError(err).Fatal("connect to database")
	}
	defer db.Close()
	logrus.Info("Connected to database")

	// Redis is optional; without it logout cannot revoke tokens server-side.
	var cacheClient cache.Client = cache.Noop{}
	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logrus.WithError(err).Fatal("connect to Redis")
		}
		cacheClient = redisClient
	} else {
		logrus.Warn("REDIS_URL not set; token revocation disabled")
	}
	defer cacheClient.Close()

	// NATS is optional; without it audit events are dropped.
	var publisher *audit.Publisher
	if cfg.NATSURL != "" {
		natsClient, err := natsbus.Connect(cfg.NATSURL)
		if err != nil {
			logrus.WithError(err).Fatal("connect to NATS")
		}
		defer natsClient.Close()
		publisher = audit.NewPublisher(natsClient.NC())
	} else {
		logrus.Warn("NATS_URL not set; audit events disabled")
	}

	store := storage.NewStorage(db)

	h := handlers.New(store, cacheClient, publisher)

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	h.RegisterRoutes(r)

	server := &http.Server{
		Addr:    cfg.HTTPAddress(),
		Handler: r,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logrus.Info("Shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		_ = server.Shutdown(shutdownCtx)
	}()

	logrus.Infof("Server starting on %s", cfg.HTTPAddress())
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logrus.WithError(err).Fatal("server error")
	}
	logrus.Info("Server stopped")
}
