package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"calorietracker-backend-go/internal/api"
	"calorietracker-backend-go/internal/config"
	"calorietracker-backend-go/internal/core"
	"calorietracker-backend-go/internal/db"
	"calorietracker-backend-go/internal/middleware"
)

func main() {
	// Load a local .env if present; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env file")
	}

	// --- 1. Initialize Logger (Zap) ---
	zapLogger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// --- 2. Load Application Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("Failed to load application configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded",
		zap.String("estimationProvider", appConfig.EstimationProvider),
		zap.Bool("requireCalorieConfirmation", appConfig.RequireCalorieConfirmation))

	// --- 3. Initialize Firebase Admin SDK (Firestore, Auth, Storage) ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	if err := db.InitFirebase(initCtx, appConfig); err != nil {
		zapLogger.Fatal("Failed to initialize Firebase Admin SDK", zap.Error(err))
	}
	firestoreClient := db.GetFirestoreClient()
	defer firestoreClient.Close()
	zapLogger.Info("Firebase Admin SDK initialized (Firestore, Auth, Storage)")

	// --- 4. Initialize Repositories and Collaborators ---
	mealRepo := db.NewFirestoreMealRepository(firestoreClient)
	profileRepo := db.NewFirestoreProfileRepository(firestoreClient)
	imageStore := db.NewFirebaseImageStore(db.GetStorageBucket(), appConfig.FirebaseStorageBucket)

	var estimator core.EstimationService
	switch appConfig.EstimationProvider {
	case config.EstimationProviderOpenAI:
		estimator = core.NewOpenAIEstimationService(appConfig.OpenAIAPIKey, zapLogger)
	default:
		estimator = core.NewGeminiEstimationService(appConfig.GeminiAPIKey, zapLogger)
	}

	// --- 5. Initialize Core Services ---
	summaryService := core.NewSummaryService()
	pipeline := core.NewMealPipeline(imageStore, estimator, mealRepo, appConfig.RequireCalorieConfirmation, zapLogger)
	sessions := core.NewSessionRegistry(func() *core.MealStore {
		return core.NewMealStore(mealRepo, imageStore, zapLogger)
	}, zapLogger)
	defer sessions.ReleaseAll()
	zapLogger.Info("Core services initialized")

	// --- 6. Setup Gin HTTP Engine ---
	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()

	// --- 7. Apply Global Middleware (order matters) ---
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	if appConfig.ClientURL != "" {
		router.Use(middleware.CORSMiddleware(appConfig))
		zapLogger.Info("CORS middleware enabled", zap.String("clientURL", appConfig.ClientURL))
	} else {
		zapLogger.Warn("CORS middleware skipped: CLIENT_URL is not configured")
	}

	// --- 8. Setup API Routes ---
	api.SetupRoutes(router, zapLogger, sessions, pipeline, summaryService, profileRepo)

	// --- 9. Configure and Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	zapLogger.Info("Starting HTTP server", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 10. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting gracefully")
}
