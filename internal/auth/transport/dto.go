// Package transport defines the wire types for the auth HTTP API.
package transport

import "time"

type SignUpRequest struct {
	Email    string `json:"email" binding:"required" validate:"required,email"`
	Password string `json:"password" binding:"required" validate:"required,min=12,max=128"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required" validate:"required,email"`
	Password string `json:"password" binding:"required" validate:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}

type ProfileResponse struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	RegisteredSites []int64   `json:"registeredSiteIds"`
	CreatedAt       time.Time `json:"createdAt"`
}
