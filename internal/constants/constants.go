package constants

import "time"

// Context keys
const (
	ContextKeyUserID  = "user_id"
	ContextKeyUser    = "user"
	ContextKeyTokenID = "token_id"
)

// Pagination
const (
	MinPage         = 1
	DefaultPageSize = 15
	MaxPageSize     = 100
)

// Auth
const (
	MinPasswordLength = 8
	TokenSecretBytes  = 20
	TokenName         = "auth_token"
)

// OnlineWindow is how recently a user must have been active to count as online.
const OnlineWindow = 5 * time.Minute

// Avatar dimensions after resize
const (
	AvatarWidth  = 300
	AvatarHeight = 300
)
