// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"multisite_portal_backend/internal/sites"
	"multisite_portal_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Auth Domain Events
// =============================================================================

// UserRegistered is published when a new user account is created on a site.
type UserRegistered struct {
	BaseEvent
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
	SiteID sites.ID  `json:"siteId"`
}

func (e UserRegistered) EventName() string { return "auth.user.registered" }

// LoginDenied is published when the membership decider blocks a login.
// Informational; consumers must not retry the attempt.
type LoginDenied struct {
	BaseEvent
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
	SiteID sites.ID  `json:"siteId"`
}

func (e LoginDenied) EventName() string { return "auth.login.denied" }
