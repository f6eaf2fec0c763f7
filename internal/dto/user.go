package dto

import (
	"time"

	"github.com/jisort/user-task-api/internal/models"
	"github.com/jisort/user-task-api/internal/utils"
)

// RoleDTO represents a role in API responses
type RoleDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// UserDTO represents a user in API responses. Credentials and two-factor
// secrets are never included.
type UserDTO struct {
	ID              uint64         `json:"id"`
	FirstName       string         `json:"first_name"`
	LastName        string         `json:"last_name"`
	Username        string         `json:"username"`
	Email           string         `json:"email"`
	Phone           *string        `json:"phone"`
	Avatar          string         `json:"avatar"`
	Bio             string         `json:"bio"`
	DateOfBirth     *time.Time     `json:"date_of_birth"`
	Gender          *string        `json:"gender"`
	Address         string         `json:"address"`
	City            string         `json:"city"`
	State           string         `json:"state"`
	Country         string         `json:"country"`
	PostalCode      string         `json:"postal_code"`
	Timezone        string         `json:"timezone"`
	Language        string         `json:"language"`
	Status          string         `json:"status"`
	EmailVerifiedAt *time.Time     `json:"email_verified_at"`
	PhoneVerifiedAt *time.Time     `json:"phone_verified_at"`
	TwoFactorEnabled bool          `json:"two_factor_enabled"`
	LastLoginAt     *time.Time     `json:"last_login_at"`
	LastActivityAt  *time.Time     `json:"last_activity_at"`
	Metadata        models.JSONMap `json:"metadata"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`

	// Derived fields
	FullName  string `json:"full_name"`
	Initials  string `json:"initials"`
	AvatarURL string `json:"avatar_url"`
	IsOnline  bool   `json:"is_online"`

	Roles       []RoleDTO `json:"roles,omitempty"`
	Permissions []string  `json:"permissions,omitempty"`
}

// UserListResponse represents a paginated list of users
type UserListResponse struct {
	Users      []UserDTO                `json:"users"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	dto := UserDTO{
		ID:               user.ID,
		FirstName:        user.FirstName,
		LastName:         user.LastName,
		Username:         user.Username,
		Email:            user.Email,
		Phone:            user.Phone,
		Avatar:           user.Avatar,
		Bio:              user.Bio,
		DateOfBirth:      user.DateOfBirth,
		Gender:           user.Gender,
		Address:          user.Address,
		City:             user.City,
		State:            user.State,
		Country:          user.Country,
		PostalCode:       user.PostalCode,
		Timezone:         user.Timezone,
		Language:         user.Language,
		Status:           string(user.Status),
		EmailVerifiedAt:  user.EmailVerifiedAt,
		PhoneVerifiedAt:  user.PhoneVerifiedAt,
		TwoFactorEnabled: user.TwoFactorEnabled,
		LastLoginAt:      user.LastLoginAt,
		LastActivityAt:   user.LastActivityAt,
		Metadata:         user.Metadata,
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
		FullName:         user.FullName(),
		Initials:         user.Initials(),
		AvatarURL:        user.AvatarURL(),
		IsOnline:         user.IsOnline(),
	}

	if len(user.Roles) > 0 {
		dto.Roles = make([]RoleDTO, len(user.Roles))
		for i, role := range user.Roles {
			dto.Roles[i] = RoleDTO{ID: role.ID, Name: role.Name}
		}
		dto.Permissions = user.PermissionNames()
	}

	return dto
}

// ToUserListResponse converts a slice of users to UserListResponse
func ToUserListResponse(users []models.User, params utils.PaginationParams, total int64) UserListResponse {
	items := make([]UserDTO, len(users))
	for i, user := range users {
		items[i] = ToUserDTO(user)
	}
	return UserListResponse{
		Users:      items,
		Pagination: utils.NewPaginationResponse(params, total),
	}
}
