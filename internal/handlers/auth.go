package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jisort/user-task-api/internal/dto"
	apierrors "github.com/jisort/user-task-api/internal/errors"
	"github.com/jisort/user-task-api/internal/middleware"
	"github.com/jisort/user-task-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates a new account and issues a bearer token.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		FirstName            string  `json:"first_name" binding:"required,max=255"`
		LastName             string  `json:"last_name" binding:"required,max=255"`
		Username             string  `json:"username" binding:"required,max=255"`
		Email                string  `json:"email" binding:"required,email,max=255"`
		Phone                *string `json:"phone" binding:"omitempty,max=20"`
		Password             string  `json:"password" binding:"required,min=8"`
		PasswordConfirmation string  `json:"password_confirmation" binding:"required,eqfield=Password"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, apierrors.BindingErrors(err))
		return
	}

	user, token, err := h.authService.Register(services.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    dto.ToUserDTO(*user),
		"token":   token,
	})
}

// Login authenticates by email or username and issues a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Login    string `json:"login" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, apierrors.BindingErrors(err))
		return
	}

	user, token, err := h.authService.Login(services.LoginInput{
		Login:    req.Login,
		Password: req.Password,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    dto.ToUserDTO(*user),
		"token":   token,
	})
}

// Logout revokes the token used for the current request.
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenID, exists := middleware.GetTokenID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.authService.Logout(tokenID); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// LogoutAll revokes every token belonging to the authenticated user.
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.authService.LogoutAll(userID); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out from all devices successfully",
	})
}

// Me returns the authenticated user with roles and permissions expanded,
// touching the last-activity timestamp.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.authService.TouchActivity(userID); err != nil {
		apierrors.InternalError(c, "")
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": dto.ToUserDTO(*user),
	})
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.FieldError(c, "username", "The username has already been taken")
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.FieldError(c, "email", "The email has already been taken")
	case errors.Is(err, services.ErrPhoneTaken):
		apierrors.FieldError(c, "phone", "The phone has already been taken")
	case errors.Is(err, services.ErrTooManyLoginAttempts):
		apierrors.TooManyRequests(c, "Too many login attempts. Please try again later.")
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, "Invalid credentials")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	default:
		apierrors.InternalError(c, "")
	}
}
