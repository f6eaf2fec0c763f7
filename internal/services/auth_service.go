package services

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/jisort/user-task-api/internal/config"
	"github.com/jisort/user-task-api/internal/constants"
	"github.com/jisort/user-task-api/internal/models"
	"github.com/jisort/user-task-api/internal/ratelimit"
	"github.com/jisort/user-task-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken        = errors.New("username already exists")
	ErrEmailTaken           = errors.New("email already exists")
	ErrPhoneTaken           = errors.New("phone already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrTooManyLoginAttempts = errors.New("too many login attempts")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

const loginKeyPrefix = "login_attempts:"

// AuthService handles registration, credentials, and the bearer token lifecycle.
type AuthService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	limiter   ratelimit.Store

	loginMaxAttempts int
	loginDecay       time.Duration
	tokenTTL         time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository, limiter ratelimit.Store, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		tokenRepo:        tokenRepo,
		limiter:          limiter,
		loginMaxAttempts: cfg.LoginMaxAttempts,
		loginDecay:       time.Duration(cfg.LoginDecayMinutes) * time.Minute,
		tokenTTL:         time.Duration(cfg.TokenTTLDays) * 24 * time.Hour,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Phone     *string
	Password  string
}

// Register creates an active user and issues a bearer token.
func (s *AuthService) Register(input RegisterInput) (*models.User, string, error) {
	if taken, err := s.userRepo.UsernameTaken(input.Username, 0); err != nil {
		return nil, "", fmt.Errorf("failed to check username: %w", err)
	} else if taken {
		return nil, "", ErrUsernameTaken
	}
	if taken, err := s.userRepo.EmailTaken(input.Email, 0); err != nil {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	} else if taken {
		return nil, "", ErrEmailTaken
	}
	if input.Phone != nil {
		if taken, err := s.userRepo.PhoneTaken(*input.Phone, 0); err != nil {
			return nil, "", fmt.Errorf("failed to check phone: %w", err)
		} else if taken {
			return nil, "", ErrPhoneTaken
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", ErrFailedToHashPassword
	}

	user := &models.User{
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Username:     strings.TrimSpace(input.Username),
		Email:        strings.TrimSpace(input.Email),
		Phone:        input.Phone,
		PasswordHash: string(hashedPassword),
		Status:       models.UserStatusActive,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Login    string
	Password string
	ClientIP string
}

// Login verifies credentials under a per-IP attempt limit. The login
// identifier is matched against the email column when it parses as an
// email address, against username otherwise.
func (s *AuthService) Login(input LoginInput) (*models.User, string, error) {
	key := loginKeyPrefix + input.ClientIP

	if s.limiter.TooManyAttempts(key, s.loginMaxAttempts) {
		return nil, "", ErrTooManyLoginAttempts
	}

	var user *models.User
	var err error
	if isEmail(input.Login) {
		user, err = s.userRepo.FindByEmail(input.Login)
	} else {
		user, err = s.userRepo.FindByUsername(input.Login)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.limiter.Hit(key, s.loginDecay)
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.limiter.Hit(key, s.loginDecay)
		return nil, "", ErrInvalidCredentials
	}

	s.limiter.Clear(key)

	if err := s.userRepo.RecordLogin(user.ID); err != nil {
		return nil, "", fmt.Errorf("failed to record login: %w", err)
	}
	now := time.Now()
	user.LastLoginAt = &now
	user.LastActivityAt = &now

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// IssueToken creates a bearer token for the user and returns its plaintext
// form "<id>|<secret>". Only the secret's digest is stored.
func (s *AuthService) IssueToken(userID uint64) (string, error) {
	raw := make([]byte, constants.TokenSecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate token secret: %w", err)
	}
	secret := hex.EncodeToString(raw)

	expiresAt := time.Now().Add(s.tokenTTL)
	token := &models.AccessToken{
		UserID:    userID,
		Name:      constants.TokenName,
		TokenHash: hashSecret(secret),
		ExpiresAt: &expiresAt,
	}
	if err := s.tokenRepo.Create(token); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	return fmt.Sprintf("%d|%s", token.ID, secret), nil
}

// AuthenticateToken resolves a plaintext bearer token to its user, stamping
// the token's last_used_at.
func (s *AuthService) AuthenticateToken(plaintext string) (*models.User, *models.AccessToken, error) {
	id, secret, ok := splitToken(plaintext)
	if !ok {
		return nil, nil, ErrInvalidToken
	}

	token, err := s.tokenRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, fmt.Errorf("failed to find token: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(token.TokenHash), []byte(hashSecret(secret))) != 1 {
		return nil, nil, ErrInvalidToken
	}
	if token.Expired() {
		return nil, nil, ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(token.UserID, "Roles", "Roles.Permissions")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.tokenRepo.TouchLastUsed(token.ID); err != nil {
		return nil, nil, fmt.Errorf("failed to touch token: %w", err)
	}

	return user, token, nil
}

// Logout revokes the single token used for the current request.
func (s *AuthService) Logout(tokenID uint64) error {
	if err := s.tokenRepo.Delete(tokenID); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// LogoutAll revokes every token belonging to the user.
func (s *AuthService) LogoutAll(userID uint64) error {
	if err := s.tokenRepo.DeleteForUser(userID); err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	return nil
}

// GetUser retrieves a user with roles and permissions expanded.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id, "Roles", "Roles.Permissions")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// TouchActivity updates the user's last_activity_at to now.
func (s *AuthService) TouchActivity(userID uint64) error {
	return s.userRepo.TouchActivity(userID)
}

func isEmail(login string) bool {
	addr, err := mail.ParseAddress(login)
	return err == nil && addr.Address == login
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

func splitToken(plaintext string) (uint64, string, bool) {
	parts := strings.SplitN(plaintext, "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return 0, "", false
	}
	id, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, "", false
	}
	return id, parts[1], true
}
