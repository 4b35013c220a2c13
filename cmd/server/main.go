package main

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/decepticons/linkshortener/config"
	"github.com/decepticons/linkshortener/internal/cache"
	db "github.com/decepticons/linkshortener/internal/database"
	"github.com/decepticons/linkshortener/internal/handler"
	"github.com/decepticons/linkshortener/internal/logger"
	"github.com/decepticons/linkshortener/internal/middleware"
	"github.com/decepticons/linkshortener/internal/observability"
	"github.com/decepticons/linkshortener/internal/repository"
	route "github.com/decepticons/linkshortener/internal/routes"
	"github.com/decepticons/linkshortener/internal/service"
	"github.com/decepticons/linkshortener/internal/token"
)

func main() {
	log := logger.New(
		envOrDefault("SERVICE_NAME", "linkshortener-api"),
		envOrDefault("ENV", "development"),
	)
	defer log.Sync()

	zap.ReplaceGlobals(log)

	secrets, err := config.LoadConfig()
	if err != nil {
		log.Fatal("error loading configuration", zap.Error(err))
	}

	ctx := context.Background()

	shutdownTracing, err := observability.Setup(ctx)
	if err != nil {
		log.Fatal("tracing failed to initialize", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	if err := db.RunMigrations(secrets.PostgresURL); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}
	log.Info("database migrations applied")

	redisClient, err := db.NewRedisClient(secrets)
	if err != nil {
		log.Fatal("redis failed to initialize", zap.Error(err))
	}
	log.Info("redis connection established")

	pgClient, err := db.NewPostgresClient(secrets)
	if err != nil {
		log.Fatal("postgres failed to initialize", zap.Error(err))
	}
	log.Info("postgres connection established")

	linkRepo := repository.NewPostgresLinkRepository(pgClient)
	userRepo := repository.NewUserRepository(pgClient)
	revokedRepo := repository.NewRevokedTokenRepository(pgClient)

	linkCache := cache.NewRedisLinkCache(redisClient)

	issuer := token.NewIssuer(secrets.JWTSecret, secrets.AccessTokenTTL, secrets.RefreshTokenTTL)
	validator := token.NewValidator(secrets.JWTSecret, revokedRepo)

	linkSvc := service.NewLinkService(linkRepo, linkCache, service.NewRandomCodeGenerator())
	authSvc := service.NewAuthService(userRepo, revokedRepo, issuer, validator)

	reaper := service.NewReaper(revokedRepo, secrets.ReaperInterval)
	reaper.Start(ctx)
	log.Info("revoked token reaper started", zap.Duration("interval", secrets.ReaperInterval))

	limiter := middleware.NewRateLimiter(100, time.Minute)

	linkHandler := handler.NewLinkHandler(linkSvc, secrets.LinkTTL)
	authHandler := handler.NewAuthHandler(authSvc)

	r := route.SetupRouter(linkHandler, authHandler, validator, authSvc, limiter)
	log.Info("starting server", zap.String("addr", secrets.ListenAddr))
	if err := r.Run(secrets.ListenAddr); err != nil {
		log.Fatal("server failed to start", zap.Error(err))
	}
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
