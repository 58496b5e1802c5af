package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"calorietracker-backend-go/internal/core"
	"calorietracker-backend-go/internal/db"
	"calorietracker-backend-go/internal/middleware"
)

// SetupRoutes configures all the application routes with their handlers and
// middleware. Global middleware (logging, recovery, CORS) are applied to the
// router before this function is called, in main.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	sessions *core.SessionRegistry,
	pipeline *core.MealPipeline,
	summaries core.SummaryService,
	profiles db.ProfileRepository,
) {
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firebaseAuthClient == nil {
		logger.Fatal("Firebase Auth client is not initialized; routes cannot be secured")
	}
	authMW := middleware.NewAuthMiddleware(firebaseAuthClient)

	mealHandler := NewMealHandler(sessions, pipeline, logger)
	summaryHandler := NewSummaryHandler(sessions, summaries, profiles, logger)
	profileHandler := NewProfileHandler(profiles, logger)
	sessionHandler := NewSessionHandler(sessions, pipeline, logger)

	apiV1 := router.Group("/api/v1", authMW.VerifyToken())
	{
		mealsGroup := apiV1.Group("/meals")
		{
			mealsGroup.GET("", mealHandler.ListMeals)
			mealsGroup.GET("/stream", mealHandler.StreamMeals)
			mealsGroup.POST("", mealHandler.CreateMeal)
			mealsGroup.POST("/attempts/:attemptId/confirm", mealHandler.ConfirmMeal)
			mealsGroup.DELETE("/:mealId", mealHandler.DeleteMeal)
		}

		summariesGroup := apiV1.Group("/summaries")
		{
			summariesGroup.GET("/daily", summaryHandler.DailySummary)
			summariesGroup.GET("/weekly", summaryHandler.WeeklySummary)
		}

		profileGroup := apiV1.Group("/profile")
		{
			profileGroup.GET("", profileHandler.GetProfile)
			profileGroup.PUT("", profileHandler.SaveProfile)
			profileGroup.GET("/target", profileHandler.GetTargetCalories)
		}

		apiV1.DELETE("/session", sessionHandler.SignOut)
	}

	// Public health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	logger.Info("API routes configured under /api/v1 and /health")
}
