package service

import (
	"time"

	"multisite_portal_backend/internal/sites"

	"github.com/google/uuid"
)

// Profile is the user view returned to authenticated callers.
type Profile struct {
	ID              uuid.UUID
	Email           string
	RegisteredSites []sites.ID
	CreatedAt       time.Time
}

// TokenPair carries a signed access token and the raw refresh token.
// Only the SHA-256 hash of the refresh token is persisted.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // access token lifetime in seconds
}
