// Package auth provides the authentication bounded context: account
// creation, credential verification, and token issuance. Login decisions
// are delegated to the membership context.
package auth

import "multisite_portal_backend/internal/auth/service"

// Re-export the service result types so other modules can consume auth
// results without importing the service subpackage directly.
type (
	Profile   = service.Profile
	TokenPair = service.TokenPair
)
