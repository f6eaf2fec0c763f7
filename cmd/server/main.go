package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jisort/user-task-api/internal/config"
	"github.com/jisort/user-task-api/internal/database"
	"github.com/jisort/user-task-api/internal/handlers"
	"github.com/jisort/user-task-api/internal/middleware"
	"github.com/jisort/user-task-api/internal/ratelimit"
	"github.com/jisort/user-task-api/internal/repository"
	"github.com/jisort/user-task-api/internal/services"
	"github.com/jisort/user-task-api/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed default roles, permissions, and bootstrap accounts
	if os.Getenv("DB_SEED") == "1" {
		if err := database.Seed(database.GetDB()); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
	}

	// Avatar file store under the public path
	files, err := storage.NewLocalStorage(cfg.AvatarDir)
	if err != nil {
		log.Fatalf("Failed to initialize file storage: %v", err)
	}

	// Repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	tokenRepo := repository.NewTokenRepository(db)

	// Rate-limit counter store, shared by the API throttle and the login throttle
	limiter := ratelimit.NewMemoryStore()

	// Services
	authService := services.NewAuthService(userRepo, tokenRepo, limiter, cfg)
	userService := services.NewUserService(userRepo, files, cfg)
	taskService := services.NewTaskService(taskRepo, userRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, cfg)
	taskHandler := handlers.NewTaskHandler(taskService)

	// Initialize Gin router
	r := gin.Default()

	apiThrottle := middleware.RateLimit(
		limiter,
		cfg.APIRateAttempts,
		time.Duration(cfg.APIRateDecayMinutes)*time.Minute,
	)
	requireAuth := middleware.RequireAuth(authService)
	trackActivity := middleware.TrackActivity(authService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   cfg.AppVersion,
		})
	})

	// Auth routes. The throttle runs after RequireAuth on the protected
	// routes so it keys on the user id rather than the client IP.
	auth := r.Group("/auth")
	{
		auth.POST("/register", apiThrottle, authHandler.Register)
		auth.POST("/login", apiThrottle, authHandler.Login)
		auth.GET("/me", requireAuth, apiThrottle, trackActivity, authHandler.Me)
		auth.POST("/logout", requireAuth, apiThrottle, trackActivity, authHandler.Logout)
		auth.POST("/logout-all", requireAuth, apiThrottle, trackActivity, authHandler.LogoutAll)
	}

	// User routes (protected)
	users := r.Group("/users")
	users.Use(requireAuth, apiThrottle, trackActivity)
	{
		users.GET("", userHandler.List)
		users.PUT("/profile", userHandler.UpdateProfile)
		users.GET("/:id", userHandler.Show)
		users.PUT("/:id/status", userHandler.UpdateStatus)
		users.DELETE("/:id", userHandler.Destroy)
	}

	// Task routes (protected)
	tasks := r.Group("/tasks")
	tasks.Use(requireAuth, apiThrottle, trackActivity)
	{
		tasks.GET("", taskHandler.List)
		tasks.POST("/create", taskHandler.Create)
		tasks.PUT("/:id", taskHandler.Update)
		tasks.DELETE("/:id", taskHandler.Delete)
		tasks.POST("/:id/assign", taskHandler.Assign)
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
