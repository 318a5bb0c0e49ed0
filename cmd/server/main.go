package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/facebookgo/clock"
	"github.com/labstack/echo/v4"
	"github.com/tareq-s/feedcraft/backend/internal/handlers"
	"github.com/tareq-s/feedcraft/backend/internal/repositories"
	"github.com/tareq-s/feedcraft/backend/internal/router"
	"github.com/tareq-s/feedcraft/backend/internal/scheduler"
	"github.com/tareq-s/feedcraft/backend/internal/services"
	"github.com/tareq-s/feedcraft/backend/pkg/config"
	"github.com/tareq-s/feedcraft/backend/pkg/firebase"
	"github.com/tareq-s/feedcraft/backend/pkg/logger"
	"github.com/tareq-s/feedcraft/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	appLog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLog.Sync() }()

	// An invalid recommendation config must stop the process here, before any
	// scheduling starts.
	recoCfg := cfg.Recommendation
	if err := recoCfg.Validate(); err != nil {
		appLog.Fatalw("invalid recommendation configuration", "error", err)
	}

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		appLog.Fatalw("failed to initialize databases", "error", err)
	}
	defer db.CloseDB()

	// Initialize Firebase
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		appLog.Fatalw("failed to initialize Firebase", "error", err)
	}

	// Repositories
	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	postRepo := repositories.NewMongoPostRepository(db.Mongo.Database(cfg.MongoDatabase))
	friendshipRepo := repositories.NewPostgresFriendshipRepository(db.Postgres)
	savedPostRepo := repositories.NewPostgresSavedPostRepository(db.Postgres)
	ratingRepo := repositories.NewPostgresPostRatingRepository(db.Postgres)
	interestRepo := repositories.NewPostgresUserInterestRepository(db.Postgres)
	feedRepo := repositories.NewPostgresPersonalizedFeedRepository(db.Postgres, recoCfg.FeedTTL)

	// Services
	clk := clock.New()
	tracker := services.NewInterestTracker(interestRepo, appLog)
	precomputer := services.NewFeedPrecomputer(
		postRepo, userRepo, friendshipRepo, savedPostRepo, ratingRepo,
		tracker, feedRepo, &recoCfg, clk, appLog)
	feedService := services.NewFeedService(feedRepo, postRepo, precomputer, &recoCfg, clk, appLog)

	// Background scheduler
	sched := scheduler.New(feedRepo, precomputer, tracker, &recoCfg, clk, appLog)
	go sched.Run(ctx)

	// HTTP surface
	e := echo.New()
	e.Validator = validators.NewValidator()
	router.SetupMiddleware(e)
	router.SetupRoutes(e,
		firebaseApp.AuthClient,
		handlers.NewRecommendationHandler(feedService, postRepo, userRepo, feedRepo, appLog),
		handlers.NewInteractionHandler(tracker, postRepo, userRepo, savedPostRepo, ratingRepo, appLog),
	)

	go func() {
		<-ctx.Done()
		if err := e.Shutdown(context.Background()); err != nil {
			appLog.Warnw("server shutdown", "error", err)
		}
	}()

	if err := e.Start(":" + cfg.Port); err != nil {
		appLog.Infow("server stopped", "reason", err)
	}
}
