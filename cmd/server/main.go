package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitcoach/coach-app/internal/ai"
	"fitcoach/coach-app/internal/api"
	"fitcoach/coach-app/internal/cache"
	"fitcoach/coach-app/internal/config"
	"fitcoach/coach-app/internal/repository/mongo"
	"fitcoach/coach-app/internal/service"
	"fitcoach/coach-app/internal/storage"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	log.Info("Starting Coach App Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Info("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Info("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Errorf("Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info("Database connection established.")

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsurePlanIndexes(ctx, appDB.Collection("fitness_plans"))
		mongo.EnsureExerciseLogIndexes(ctx, appDB.Collection("exercise_logs"))
		mongo.EnsureNutritionIndexes(ctx, appDB.Collection("nutrition_logs"))
		mongo.EnsureDayProgressIndexes(ctx, appDB.Collection("day_progress"))
		mongo.EnsureSubscriptionIndexes(ctx, appDB.Collection("subscriptions"))
		mongo.EnsureVideoIndexes(ctx, appDB.Collection("exercise_videos"))
		log.Info("Index creation process completed.")
	}()

	// --- Redis (verification codes) ---
	redisClient, err := cache.NewRedisClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to Redis: %v", err)
	}
	defer redisClient.Close()
	codeStore := cache.NewCodeStore(redisClient, cfg.Redis.CodeTTL)
	log.Info("Redis connection established.")

	// --- File Storage ---
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Plan Generator ---
	generator, err := ai.NewGeminiGenerator(context.Background(), cfg.AI)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize plan generator: %v", err)
	}

	// --- Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	profileRepo := mongo.NewMongoProfileRepository(appDB)
	adaptiveRepo := mongo.NewMongoAdaptiveProfileRepository(appDB)
	goalRepo := mongo.NewMongoGoalProgramRepository(appDB)
	planRepo := mongo.NewMongoFitnessPlanRepository(appDB)
	logRepo := mongo.NewMongoExerciseLogRepository(appDB)
	nutritionRepo := mongo.NewMongoNutritionRepository(appDB)
	progressRepo := mongo.NewMongoDayProgressRepository(appDB)
	packageRepo := mongo.NewMongoPackageRepository(appDB)
	subscriptionRepo := mongo.NewMongoSubscriptionRepository(appDB)
	videoRepo := mongo.NewMongoVideoRepository(appDB)

	// --- Services ---
	authService := service.NewAuthService(
		userRepo,
		codeStore,
		service.NewLogCodeSender(),
		service.NewGoogleVerifier(cfg.Google.ClientID),
		cfg.JWT.Secret,
		cfg.JWT.Expiration,
	)
	profileService := service.NewProfileService(userRepo, profileRepo, adaptiveRepo, goalRepo)
	planService := service.NewPlanService(userRepo, profileRepo, adaptiveRepo, goalRepo, planRepo, generator)
	progressService := service.NewProgressService(planRepo, logRepo, nutritionRepo, progressRepo)
	logService := service.NewExerciseLogService(logRepo, planRepo, progressService)
	nutritionService := service.NewNutritionService(nutritionRepo, planRepo, progressService)
	statsService := service.NewStatsService(logRepo, nutritionRepo)
	packageService := service.NewPackageService(packageRepo)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, packageRepo, userRepo, service.NewManualGateway())
	videoService := service.NewVideoService(videoRepo, fileStorage)

	// --- Subscription expiry sweep ---
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if _, err := subscriptionService.ExpireOverdue(ctx); err != nil {
				log.Errorf("Subscription expiry sweep failed: %v", err)
			}
			cancel()
		}
	}()

	// --- Gin Engine & Routes ---
	router := gin.Default()
	api.SetupRoutes(router, cfg.JWT.Secret, api.Services{
		Auth:         authService,
		Profile:      profileService,
		Plan:         planService,
		ExerciseLog:  logService,
		Nutrition:    nutritionService,
		Progress:     progressService,
		Stats:        statsService,
		Package:      packageService,
		Subscription: subscriptionService,
		Video:        videoService,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Infof("Server starting on %s", cfg.Server.Address)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Info("Server exiting.")
}
