package api

import (
	"net/http"

	"fitcoach/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// Services bundles everything SetupRoutes wires into handlers.
type Services struct {
	Auth         service.AuthService
	Profile      service.ProfileService
	Plan         service.PlanService
	ExerciseLog  service.ExerciseLogService
	Nutrition    service.NutritionService
	Progress     service.ProgressService
	Stats        service.StatsService
	Package      service.PackageService
	Subscription service.SubscriptionService
	Video        service.VideoService
}

func SetupRoutes(router *gin.Engine, jwtSecret string, services Services) {
	authHandler := NewAuthHandler(services.Auth)
	profileHandler := NewProfileHandler(services.Profile)
	planHandler := NewPlanHandler(services.Plan)
	trackingHandler := NewTrackingHandler(services.ExerciseLog, services.Nutrition)
	progressHandler := NewProgressHandler(services.Progress)
	statsHandler := NewStatsHandler(services.Stats)
	billingHandler := NewBillingHandler(services.Auth, services.Package, services.Subscription)
	videoHandler := NewVideoHandler(services.Video)

	authMiddleware := AuthMiddleware(jwtSecret)
	userMiddleware := UserMiddleware(services.Auth)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/signup/initiate", authHandler.SignupInitiate)
			authGroup.POST("/signup/complete", authHandler.SignupComplete)
			authGroup.POST("/login/initiate", authHandler.LoginInitiate)
			authGroup.POST("/login/complete", authHandler.LoginComplete)
			authGroup.POST("/google", authHandler.GoogleSignIn)
		}

		// Public catalogue endpoints.
		apiV1.GET("/packages", billingHandler.ListPackages)
		apiV1.GET("/packages/:packageId", billingHandler.GetPackage)

		// Gateway-facing settlement notifications carry no user session.
		apiV1.POST("/webhooks/payments", billingHandler.PaymentWebhook)
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware, userMiddleware)
	{
		protected.GET("/me", authHandler.Me)
		protected.PUT("/me/remarks", authHandler.UpdateRemarks)

		profileGroup := protected.Group("/profile")
		{
			profileGroup.GET("", profileHandler.GetProfile)
			profileGroup.PUT("", profileHandler.UpdateProfile)
			profileGroup.POST("/link", profileHandler.LinkProfile)
			profileGroup.GET("/adaptive", profileHandler.GetAdaptiveProfile)
			profileGroup.PUT("/adaptive", profileHandler.UpsertAdaptiveProfile)
			profileGroup.GET("/goal", profileHandler.GetGoalProgram)
			profileGroup.PUT("/goal", profileHandler.UpsertGoalProgram)
		}

		planGroup := protected.Group("/plans")
		{
			planGroup.POST("/generate", planHandler.GeneratePlan)
			planGroup.GET("/current", planHandler.GetCurrentPlan)
			planGroup.GET("/exercises", planHandler.GetExerciseCatalogue)
			planGroup.GET("/:planId", planHandler.GetPlanByID)
			planGroup.POST("/:planId/assign", planHandler.AssignPlan)
			planGroup.DELETE("/:planId", planHandler.DeletePlan)
		}

		logGroup := protected.Group("/logs/exercises")
		{
			logGroup.POST("", trackingHandler.LogExercise)
			logGroup.GET("", trackingHandler.GetLogs)
			logGroup.PUT("/:logId", trackingHandler.UpdateLog)
			logGroup.DELETE("/:logId", trackingHandler.DeleteLog)
		}

		nutritionGroup := protected.Group("/nutrition")
		{
			nutritionGroup.PUT("/meals", trackingHandler.UpdateMeal)
			nutritionGroup.GET("/days/:day", trackingHandler.GetNutritionByDay)
			nutritionGroup.GET("", trackingHandler.GetNutritionRange)
		}

		progressGroup := protected.Group("/progress")
		{
			progressGroup.GET("/days/:day", progressHandler.GetDay)
			progressGroup.POST("/days/:day/refresh", progressHandler.RefreshDay)
			progressGroup.DELETE("/days/:day", progressHandler.DeleteDay)
			progressGroup.GET("/current", progressHandler.GetCurrent)
			progressGroup.GET("/range", progressHandler.GetRange)
			progressGroup.GET("/weeks/:week", progressHandler.GetWeek)
			progressGroup.GET("/overall", progressHandler.GetOverall)
		}

		statsGroup := protected.Group("/stats")
		{
			statsGroup.GET("/exercises/summary", statsHandler.GetExerciseSummary)
			statsGroup.GET("/exercises/timeline", statsHandler.GetTimeline)
			statsGroup.GET("/nutrition/summary", statsHandler.GetNutritionSummary)
			statsGroup.GET("/nutrition/monthly", statsHandler.GetNutritionMonthly)
			statsGroup.GET("/nutrition/calendar", statsHandler.GetNutritionCalendar)
		}

		subscriptionGroup := protected.Group("/subscriptions")
		{
			subscriptionGroup.POST("/purchase", billingHandler.Purchase)
			subscriptionGroup.GET("/active", billingHandler.GetActiveSubscription)
			subscriptionGroup.GET("", billingHandler.GetSubscriptionHistory)
			subscriptionGroup.POST("/:subscriptionId/cancel", billingHandler.CancelSubscription)
		}

		videoGroup := protected.Group("/videos")
		{
			videoGroup.GET("", videoHandler.ListVideos)
			videoGroup.POST("/uploads", videoHandler.RequestUpload)
			videoGroup.POST("/uploads/:videoId/confirm", videoHandler.ConfirmUpload)
			videoGroup.POST("/uploads/:videoId/thumbnail", videoHandler.RequestThumbnailUpload)
			videoGroup.GET("/stream/:exerciseName", videoHandler.GetStream)
			videoGroup.DELETE("/:videoId", videoHandler.DeleteVideo)
		}

		// Account administration. Same auth surface as the mobile client;
		// callers are expected to be gated at the network layer.
		adminGroup := protected.Group("/admin")
		{
			adminGroup.GET("/users", authHandler.SearchUsers)
			adminGroup.DELETE("/users/:email", authHandler.DeleteUser)
			adminGroup.GET("/plans", planHandler.GetAllPlans)
			adminGroup.POST("/packages", billingHandler.CreatePackage)
			adminGroup.PUT("/packages/:packageId", billingHandler.UpdatePackage)
			adminGroup.DELETE("/packages/:packageId", billingHandler.DeletePackage)
		}
	}
}
