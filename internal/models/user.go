package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jisort/user-task-api/internal/constants"
	"gorm.io/gorm"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

// JSONMap stores a free-form key/value document as a JSON column.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported type for JSONMap: %T", value)
	}
}

type User struct {
	ID           uint64  `gorm:"primarykey" json:"id"`
	FirstName    string  `gorm:"type:varchar(255);not null" json:"first_name"`
	LastName     string  `gorm:"type:varchar(255);not null" json:"last_name"`
	Username     string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email        string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone        *string `gorm:"type:varchar(20);uniqueIndex" json:"phone"`
	PasswordHash string  `gorm:"type:varchar(255);not null" json:"-"`

	Avatar      string     `gorm:"type:varchar(255)" json:"avatar"`
	Bio         string     `gorm:"type:text" json:"bio"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Gender      *string    `gorm:"type:varchar(10)" json:"gender"`
	Address     string     `gorm:"type:text" json:"address"`
	City        string     `gorm:"type:varchar(100)" json:"city"`
	State       string     `gorm:"type:varchar(100)" json:"state"`
	Country     string     `gorm:"type:varchar(100)" json:"country"`
	PostalCode  string     `gorm:"type:varchar(20)" json:"postal_code"`
	Timezone    string     `gorm:"type:varchar(50);default:'UTC'" json:"timezone"`
	Language    string     `gorm:"type:varchar(10);default:'en'" json:"language"`

	Status UserStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`

	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	PhoneVerifiedAt *time.Time `json:"phone_verified_at"`

	TwoFactorEnabled       bool   `gorm:"default:false" json:"two_factor_enabled"`
	TwoFactorSecret        string `gorm:"type:text" json:"-"`
	TwoFactorRecoveryCodes string `gorm:"type:text" json:"-"`

	LastLoginAt    *time.Time `json:"last_login_at"`
	LastActivityAt *time.Time `gorm:"index" json:"last_activity_at"`

	Metadata JSONMap `gorm:"type:json" json:"metadata"`

	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Roles         []Role `gorm:"many2many:user_roles" json:"roles,omitempty"`
	CreatedTasks  []Task `gorm:"foreignKey:CreatedBy" json:"-"`
	AssignedTasks []Task `gorm:"many2many:task_user" json:"-"`
}

// FullName concatenates the first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Initials returns the uppercased first letters of the name parts.
func (u *User) Initials() string {
	initials := ""
	if u.FirstName != "" {
		initials += string([]rune(u.FirstName)[0])
	}
	if u.LastName != "" {
		initials += string([]rune(u.LastName)[0])
	}
	return strings.ToUpper(initials)
}

// AvatarURL returns the stored avatar URL, or a generated placeholder keyed by name.
func (u *User) AvatarURL() string {
	if u.Avatar != "" {
		return "/storage/avatars/" + u.Avatar
	}
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(u.FullName()) + "&background=random"
}

// IsOnline reports whether the user was active within the online window.
func (u *User) IsOnline() bool {
	return u.LastActivityAt != nil && time.Since(*u.LastActivityAt) < constants.OnlineWindow
}

// HasRole checks role membership against the preloaded Roles relation.
func (u *User) HasRole(name string) bool {
	for _, role := range u.Roles {
		if role.Name == name {
			return true
		}
	}
	return false
}

// HasPermission checks permission membership through the preloaded roles.
func (u *User) HasPermission(name string) bool {
	for _, role := range u.Roles {
		for _, perm := range role.Permissions {
			if perm.Name == name {
				return true
			}
		}
	}
	return false
}

// PermissionNames collects the distinct permission names granted via roles.
func (u *User) PermissionNames() []string {
	seen := make(map[string]bool)
	names := make([]string, 0)
	for _, role := range u.Roles {
		for _, perm := range role.Permissions {
			if !seen[perm.Name] {
				seen[perm.Name] = true
				names = append(names, perm.Name)
			}
		}
	}
	return names
}
