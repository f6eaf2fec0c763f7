package services

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/jisort/user-task-api/internal/config"
	"github.com/jisort/user-task-api/internal/constants"
	"github.com/jisort/user-task-api/internal/models"
	"github.com/jisort/user-task-api/internal/repository"
	"github.com/jisort/user-task-api/internal/storage"
	"github.com/jisort/user-task-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrPasswordConfirmation = errors.New("password confirmation does not match")
	ErrAvatarTooLarge       = errors.New("avatar exceeds the maximum upload size")
	ErrAvatarExtension      = errors.New("avatar must be a jpg, jpeg, png, or gif file")
	ErrAvatarInvalid        = errors.New("avatar is not a valid image")
)

// UserService handles user management business logic.
type UserService struct {
	userRepo repository.UserRepository
	files    storage.Storage
	cfg      *config.Config
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, files storage.Storage, cfg *config.Config) *UserService {
	return &UserService{
		userRepo: userRepo,
		files:    files,
		cfg:      cfg,
	}
}

// ListUsersInput represents filters for listing users.
type ListUsersInput struct {
	Search     string
	Status     *models.UserStatus
	Role       string
	SortBy     string
	SortOrder  string
	Pagination utils.PaginationParams
}

// ListUsers returns a filtered, sorted, paginated slice of users.
func (s *UserService) ListUsers(input ListUsersInput) ([]models.User, int64, error) {
	filter := repository.UserFilter{
		Search:     input.Search,
		Status:     input.Status,
		Role:       input.Role,
		SortBy:     input.SortBy,
		SortOrder:  input.SortOrder,
		Pagination: input.Pagination,
	}

	users, total, err := s.userRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// GetUser retrieves a user with roles and permissions expanded.
func (s *UserService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id, "Roles", "Roles.Permissions")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UpdateProfileInput carries a partial profile update; nil fields are left
// unchanged.
type UpdateProfileInput struct {
	FirstName            *string
	LastName             *string
	Username             *string
	Email                *string
	Phone                *string
	Bio                  *string
	DateOfBirth          *time.Time
	Gender               *string
	Address              *string
	City                 *string
	State                *string
	Country              *string
	PostalCode           *string
	Timezone             *string
	Language             *string
	Password             *string
	PasswordConfirmation *string
	Avatar               *multipart.FileHeader
}

// UpdateProfile applies a partial update to the user's own profile. Dirty
// audited fields produce one audit log entry; the avatar pipeline resizes
// and stores the upload, removing the previous file first.
func (s *UserService) UpdateProfile(user *models.User, input UpdateProfileInput) (*models.User, error) {
	if input.Username != nil {
		if taken, err := s.userRepo.UsernameTaken(*input.Username, user.ID); err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		} else if taken {
			return nil, ErrUsernameTaken
		}
	}
	if input.Email != nil {
		if taken, err := s.userRepo.EmailTaken(*input.Email, user.ID); err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		} else if taken {
			return nil, ErrEmailTaken
		}
	}
	if input.Phone != nil {
		if taken, err := s.userRepo.PhoneTaken(*input.Phone, user.ID); err != nil {
			return nil, fmt.Errorf("failed to check phone: %w", err)
		} else if taken {
			return nil, ErrPhoneTaken
		}
	}

	if input.Password != nil {
		if input.PasswordConfirmation == nil || *input.Password != *input.PasswordConfirmation {
			return nil, ErrPasswordConfirmation
		}
	}

	changes := s.collectAuditChanges(user, input)

	applyString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	applyString(&user.FirstName, input.FirstName)
	applyString(&user.LastName, input.LastName)
	applyString(&user.Username, input.Username)
	applyString(&user.Email, input.Email)
	applyString(&user.Bio, input.Bio)
	applyString(&user.Address, input.Address)
	applyString(&user.City, input.City)
	applyString(&user.State, input.State)
	applyString(&user.Country, input.Country)
	applyString(&user.PostalCode, input.PostalCode)
	applyString(&user.Timezone, input.Timezone)
	applyString(&user.Language, input.Language)
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.DateOfBirth != nil {
		user.DateOfBirth = input.DateOfBirth
	}
	if input.Gender != nil {
		user.Gender = input.Gender
	}

	if input.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, ErrFailedToHashPassword
		}
		user.PasswordHash = string(hashed)
	}

	var newAvatar string
	if input.Avatar != nil {
		filename, err := s.storeAvatar(user, input.Avatar)
		if err != nil {
			return nil, err
		}
		newAvatar = filename
		user.Avatar = filename
	}

	var audit *models.AuditLog
	if len(changes) > 0 {
		audit = &models.AuditLog{
			SubjectType: "user",
			SubjectID:   user.ID,
			CauserID:    &user.ID,
			Changes:     changes,
		}
	}

	if err := s.userRepo.UpdateWithAudit(user, audit); err != nil {
		// Do not leave an orphaned avatar file behind a failed row update.
		if newAvatar != "" {
			_ = s.files.Delete(newAvatar)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

// UpdateStatus sets the user's status, recording the transition in the
// audit log.
func (s *UserService) UpdateStatus(id uint64, status models.UserStatus, causerID uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.Status == status {
		return user, nil
	}

	audit := &models.AuditLog{
		SubjectType: "user",
		SubjectID:   user.ID,
		CauserID:    &causerID,
		Changes: models.JSONMap{
			"status": map[string]interface{}{"old": string(user.Status), "new": string(status)},
		},
	}
	user.Status = status

	if err := s.userRepo.UpdateWithAudit(user, audit); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	return user, nil
}

// DeleteUser soft deletes a user.
func (s *UserService) DeleteUser(id uint64) error {
	if _, err := s.userRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	if err := s.userRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// storeAvatar validates, resizes, and stores an uploaded avatar, deleting
// the previous file. Returns the stored filename.
func (s *UserService) storeAvatar(user *models.User, header *multipart.FileHeader) (string, error) {
	if header.Size > int64(s.cfg.AvatarMaxSizeKB)*1024 {
		return "", ErrAvatarTooLarge
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	allowed := false
	for _, e := range s.cfg.AvatarExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", ErrAvatarExtension
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	img, err := imaging.Decode(file)
	if err != nil {
		return "", ErrAvatarInvalid
	}
	resized := imaging.Resize(img, constants.AvatarWidth, constants.AvatarHeight, imaging.Lanczos)

	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return "", ErrAvatarExtension
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format); err != nil {
		return "", fmt.Errorf("failed to encode avatar: %w", err)
	}

	if user.Avatar != "" {
		if err := s.files.Delete(user.Avatar); err != nil {
			return "", fmt.Errorf("failed to delete previous avatar: %w", err)
		}
	}

	filename := fmt.Sprintf("%d_%d.%s", user.ID, time.Now().Unix(), ext)
	if err := s.files.Save(filename, &buf); err != nil {
		return "", fmt.Errorf("failed to store avatar: %w", err)
	}

	return filename, nil
}

// collectAuditChanges diffs the audited columns against the incoming input.
func (s *UserService) collectAuditChanges(user *models.User, input UpdateProfileInput) models.JSONMap {
	changes := models.JSONMap{}

	diff := func(field, old string, incoming *string) {
		if incoming != nil && *incoming != old {
			changes[field] = map[string]interface{}{"old": old, "new": *incoming}
		}
	}
	diff("first_name", user.FirstName, input.FirstName)
	diff("last_name", user.LastName, input.LastName)
	diff("email", user.Email, input.Email)

	oldPhone := ""
	if user.Phone != nil {
		oldPhone = *user.Phone
	}
	diff("phone", oldPhone, input.Phone)

	if len(changes) == 0 {
		return nil
	}
	return changes
}
