package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-directory/internal/auth"
	"github.com/iliyamo/restaurant-directory/internal/config"
	"github.com/iliyamo/restaurant-directory/internal/database"
	"github.com/iliyamo/restaurant-directory/internal/handler"
	"github.com/iliyamo/restaurant-directory/internal/middleware"
	"github.com/iliyamo/restaurant-directory/internal/queue"
	"github.com/iliyamo/restaurant-directory/internal/repository"
	"github.com/iliyamo/restaurant-directory/internal/router"
	"github.com/iliyamo/restaurant-directory/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs rate limiting and the public response cache; nil degrades
	// both to pass-through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and caching disabled")
	}

	users := repository.NewUserRepo(db)
	restaurants := repository.NewRestaurantRepo(db)
	verifications := repository.NewVerificationRepo(db)

	tokens := auth.NewTokenService(
		cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience,
		time.Duration(cfg.AccessTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTTLDays)*24*time.Hour,
	)
	creds := auth.NewCredentialAuthenticator(users, tokens)
	google := auth.NewFederatedIdentityBridge(auth.NewGoogleVerifier(cfg.GoogleClientID), users, tokens)
	refresh := auth.NewRefreshCoordinator(users, tokens)

	notifier := queue.NewNotifier(64)
	defer notifier.Close()
	go queue.StartReviewConsumer()

	verification := service.NewVerificationService(restaurants, verifications, notifier)

	e := echo.New()
	e.HideBanner = true

	ratelimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, creds, google, refresh), tokens, ratelimit)
	router.RegisterRestaurants(e, handler.NewRestaurantHandler(restaurants), tokens, cache)
	router.RegisterVerification(e, handler.NewVerificationHandler(verification), tokens, restaurants)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
