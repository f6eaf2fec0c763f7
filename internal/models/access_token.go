package models

import "time"

// AccessToken is a bearer credential. Only the SHA-256 digest of the secret is
// stored; the plaintext form "<id>|<secret>" is shown to the client once.
type AccessToken struct {
	ID         uint64     `gorm:"primarykey" json:"id"`
	UserID     uint64     `gorm:"not null;index" json:"user_id"`
	Name       string     `gorm:"type:varchar(100);not null" json:"name"`
	TokenHash  string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	ExpiresAt  *time.Time `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// Expired reports whether the token is past its expiry.
func (t *AccessToken) Expired() bool {
	return t.ExpiresAt != nil && time.Now().After(*t.ExpiresAt)
}
