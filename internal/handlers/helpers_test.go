package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/jisort/user-task-api/internal/config"
	"github.com/jisort/user-task-api/internal/middleware"
	"github.com/jisort/user-task-api/internal/models"
	"github.com/jisort/user-task-api/internal/ratelimit"
	"github.com/jisort/user-task-api/internal/repository"
	"github.com/jisort/user-task-api/internal/services"
	"github.com/jisort/user-task-api/internal/storage"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires an in-memory database, the service stack, and a router
// mirroring the production route table.
type testEnv struct {
	db          *gorm.DB
	cfg         *config.Config
	limiter     *ratelimit.MemoryStore
	authService *services.AuthService
	userService *services.UserService
	taskService *services.TaskService
	router      *gin.Engine
}

func testConfig(avatarDir string) *config.Config {
	return &config.Config{
		AppVersion:          "1.0.0-test",
		DefaultPerPage:      15,
		MaxPerPage:          100,
		AvatarMaxSizeKB:     2048,
		AvatarExtensions:    []string{"jpg", "jpeg", "png", "gif"},
		AvatarDir:           avatarDir,
		APIRateAttempts:     100,
		APIRateDecayMinutes: 1,
		LoginMaxAttempts:    5,
		LoginDecayMinutes:   15,
		TokenTTLDays:        30,
	}
}

func newTestEnv(s *suite.Suite, avatarDir string) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.AccessToken{},
		&models.Task{},
		&models.Activity{},
		&models.AuditLog{},
	)
	s.Require().NoError(err)

	cfg := testConfig(avatarDir)

	files, err := storage.NewLocalStorage(avatarDir)
	s.Require().NoError(err)

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	limiter := ratelimit.NewMemoryStore()

	authService := services.NewAuthService(userRepo, tokenRepo, limiter, cfg)
	userService := services.NewUserService(userRepo, files, cfg)
	taskService := services.NewTaskService(taskRepo, userRepo)

	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService, cfg)
	taskHandler := NewTaskHandler(taskService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	requireAuth := middleware.RequireAuth(authService)
	trackActivity := middleware.TrackActivity(authService)

	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", requireAuth, trackActivity, authHandler.Me)
		auth.POST("/logout", requireAuth, trackActivity, authHandler.Logout)
		auth.POST("/logout-all", requireAuth, trackActivity, authHandler.LogoutAll)
	}
	users := router.Group("/users")
	users.Use(requireAuth, trackActivity)
	{
		users.GET("", userHandler.List)
		users.PUT("/profile", userHandler.UpdateProfile)
		users.GET("/:id", userHandler.Show)
		users.PUT("/:id/status", userHandler.UpdateStatus)
		users.DELETE("/:id", userHandler.Destroy)
	}
	tasks := router.Group("/tasks")
	tasks.Use(requireAuth, trackActivity)
	{
		tasks.GET("", taskHandler.List)
		tasks.POST("/create", taskHandler.Create)
		tasks.PUT("/:id", taskHandler.Update)
		tasks.DELETE("/:id", taskHandler.Delete)
		tasks.POST("/:id/assign", taskHandler.Assign)
	}

	return &testEnv{
		db:          db,
		cfg:         cfg,
		limiter:     limiter,
		authService: authService,
		userService: userService,
		taskService: taskService,
		router:      router,
	}
}

func (e *testEnv) close() {
	sqlDB, err := e.db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

// createUser inserts a user with a known password ("password123") and
// returns it.
func (e *testEnv) createUser(s *suite.Suite, username, email string) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	s.Require().NoError(err)

	user := &models.User{
		FirstName:    "Test",
		LastName:     "User",
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Status:       models.UserStatusActive,
	}
	s.Require().NoError(e.db.Create(user).Error)
	return user
}

// tokenFor issues a bearer token for the user.
func (e *testEnv) tokenFor(s *suite.Suite, userID uint64) string {
	token, err := e.authService.IssueToken(userID)
	s.Require().NoError(err)
	return token
}

// request performs an HTTP request against the test router. A non-empty
// token is sent as a bearer credential.
func (e *testEnv) request(method, url, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body
}
