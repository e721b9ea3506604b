package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/auth"
	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/config"
	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/database"
	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/feed"
	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/github"
	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/handlers"
	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/middleware"
	redisc "github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/redis"
	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	slog.Info("starting devconnector api")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	db, err := database.InitDB(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to PostgreSQL")

	if err := database.RunMigrations(ctx, db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations complete")

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		slog.Error("failed to create token service", "error", err)
		os.Exit(1)
	}

	hub := feed.NewHub()
	go hub.Run(ctx)

	var events feed.Publisher = hub
	var cache handlers.ResponseCache
	if cfg.RedisURL != "" {
		redisClient, err := redisc.InitRedis(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("failed to init Redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		slog.Info("connected to Redis")

		broker := redisc.NewFeedBroker(redisClient)
		go broker.Subscribe(ctx, hub.Deliver)
		events = feed.NewBrokerPublisher(broker)
		cache = redisc.NewCache(redisClient, "github:")
	} else {
		slog.Warn("REDIS_URL not set, feed is local to this instance and GitHub responses are not cached")
	}

	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		slog.Error("invalid trusted proxies", "error", err)
		os.Exit(1)
	}

	router := server.NewRouter(server.Deps{
		DB:             db,
		TrustedProxies: proxies,
		Tokens:         tokens,
		Hub:            hub,
		Events:         events,
		Limiter:        middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Repos:          github.NewClient(cfg.GitHubAPIURL, cfg.GitHubToken),
		Cache:          cache,
		CORSOrigin:     cfg.CORSOrigin,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutting down", "signal", sig.String(), "feed_clients", hub.ClientCount())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stops the hub and the Redis relay.
	stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
