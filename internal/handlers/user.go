package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/jisort/user-task-api/internal/config"
	"github.com/jisort/user-task-api/internal/dto"
	apierrors "github.com/jisort/user-task-api/internal/errors"
	"github.com/jisort/user-task-api/internal/middleware"
	"github.com/jisort/user-task-api/internal/models"
	"github.com/jisort/user-task-api/internal/services"
	"github.com/jisort/user-task-api/internal/utils"
)

// Columns the user list may be sorted by.
var userSortColumns = []string{
	"id", "first_name", "last_name", "username", "email", "status",
	"created_at", "updated_at", "last_login_at", "last_activity_at",
}

// UserHandler coordinates user management HTTP handlers.
type UserHandler struct {
	userService *services.UserService
	cfg         *config.Config
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService, cfg *config.Config) *UserHandler {
	return &UserHandler{
		userService: userService,
		cfg:         cfg,
	}
}

// List returns a filterable, sortable, paginated user listing.
func (h *UserHandler) List(c *gin.Context) {
	sortBy, sortOrder, ok := utils.GetSortParams(c, userSortColumns, "created_at")
	if !ok {
		apierrors.FieldError(c, "sort_by", "The selected sort_by is invalid")
		return
	}

	params := utils.GetPaginationParams(c, h.cfg.DefaultPerPage, h.cfg.MaxPerPage)

	input := services.ListUsersInput{
		Search:     c.Query("search"),
		Role:       c.Query("role"),
		SortBy:     sortBy,
		SortOrder:  sortOrder,
		Pagination: params,
	}
	if status := c.Query("status"); status != "" {
		s := models.UserStatus(status)
		input.Status = &s
	}

	users, total, err := h.userService.ListUsers(input)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch users")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserListResponse(users, params, total))
}

// Show returns a single user with roles and permissions expanded.
func (h *UserHandler) Show(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	user, err := h.userService.GetUser(id)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": dto.ToUserDTO(*user),
	})
}

// UpdateProfile applies a partial update to the caller's own profile,
// optionally replacing the avatar via multipart upload.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user, exists := middleware.GetUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type UpdateProfileRequest struct {
		FirstName            *string `json:"first_name" form:"first_name" binding:"omitempty,max=255"`
		LastName             *string `json:"last_name" form:"last_name" binding:"omitempty,max=255"`
		Username             *string `json:"username" form:"username" binding:"omitempty,max=255"`
		Email                *string `json:"email" form:"email" binding:"omitempty,email,max=255"`
		Phone                *string `json:"phone" form:"phone" binding:"omitempty,max=20"`
		Bio                  *string `json:"bio" form:"bio" binding:"omitempty,max=1000"`
		DateOfBirth          *string `json:"date_of_birth" form:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
		Gender               *string `json:"gender" form:"gender" binding:"omitempty,oneof=male female other"`
		Address              *string `json:"address" form:"address" binding:"omitempty,max=500"`
		City                 *string `json:"city" form:"city" binding:"omitempty,max=100"`
		State                *string `json:"state" form:"state" binding:"omitempty,max=100"`
		Country              *string `json:"country" form:"country" binding:"omitempty,max=100"`
		PostalCode           *string `json:"postal_code" form:"postal_code" binding:"omitempty,max=20"`
		Timezone             *string `json:"timezone" form:"timezone" binding:"omitempty,max=50"`
		Language             *string `json:"language" form:"language" binding:"omitempty,max=10"`
		Password             *string `json:"password" form:"password" binding:"omitempty,min=8"`
		PasswordConfirmation *string `json:"password_confirmation" form:"password_confirmation"`
	}

	var req UpdateProfileRequest
	isMultipart := strings.HasPrefix(c.ContentType(), "multipart/form-data")
	var err error
	if isMultipart {
		err = c.ShouldBindWith(&req, binding.FormMultipart)
	} else {
		err = c.ShouldBindJSON(&req)
	}
	if err != nil {
		apierrors.ValidationFailed(c, apierrors.BindingErrors(err))
		return
	}

	input := services.UpdateProfileInput{
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		Username:             req.Username,
		Email:                req.Email,
		Phone:                req.Phone,
		Bio:                  req.Bio,
		Gender:               req.Gender,
		Address:              req.Address,
		City:                 req.City,
		State:                req.State,
		Country:              req.Country,
		PostalCode:           req.PostalCode,
		Timezone:             req.Timezone,
		Language:             req.Language,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	}
	if req.DateOfBirth != nil {
		// the datetime binding tag already vets the format
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			apierrors.FieldError(c, "date_of_birth", "The date_of_birth is not a valid date")
			return
		}
		input.DateOfBirth = &dob
	}
	if isMultipart {
		if file, err := c.FormFile("avatar"); err == nil {
			input.Avatar = file
		}
	}

	updated, err := h.userService.UpdateProfile(user, input)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    dto.ToUserDTO(*updated),
	})
}

// UpdateStatus sets a user's status.
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	type UpdateStatusRequest struct {
		Status string `json:"status" binding:"required,oneof=active inactive suspended"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, apierrors.BindingErrors(err))
		return
	}

	causerID, _ := middleware.GetUserID(c)
	user, err := h.userService.UpdateStatus(id, models.UserStatus(req.Status), causerID)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User status updated successfully",
		"user":    dto.ToUserDTO(*user),
	})
}

// Destroy soft deletes a user.
func (h *UserHandler) Destroy(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.userService.DeleteUser(id); err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
	})
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.FieldError(c, "username", "The username has already been taken")
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.FieldError(c, "email", "The email has already been taken")
	case errors.Is(err, services.ErrPhoneTaken):
		apierrors.FieldError(c, "phone", "The phone has already been taken")
	case errors.Is(err, services.ErrPasswordConfirmation):
		apierrors.FieldError(c, "password", "The password confirmation does not match")
	case errors.Is(err, services.ErrAvatarTooLarge):
		apierrors.FieldError(c, "avatar", "The avatar may not be greater than 2048 kilobytes")
	case errors.Is(err, services.ErrAvatarExtension):
		apierrors.FieldError(c, "avatar", "The avatar must be a file of type: jpg, jpeg, png, gif")
	case errors.Is(err, services.ErrAvatarInvalid):
		apierrors.FieldError(c, "avatar", "The avatar must be an image")
	default:
		apierrors.InternalError(c, "")
	}
}
