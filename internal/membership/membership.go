// Package membership provides the site membership bounded context: which
// sites of the network each user has registered on, and whether a login
// attempt on a given site may proceed.
// This file defines the public API of the bounded context; only types and
// interfaces defined here should be imported by other domains.
package membership

import (
	"context"
	"encoding/json"
	"errors"

	"multisite_portal_backend/internal/membership/store"
	"multisite_portal_backend/internal/sites"
	"multisite_portal_backend/platform/apperr"

	"github.com/google/uuid"
)

// RegisteredSiteIDsAttr is the fixed attribute name under which a user's
// membership set is persisted: a JSON array of site IDs.
const RegisteredSiteIDsAttr = "registered_site_ids"

// CodeSiteRestriction is the stable machine-readable code carried by login
// denials. Clients switch on this code; it never changes.
const CodeSiteRestriction = "site_restriction_error"

const siteRestrictionMessage = "You cannot log in to this site because you are not registered for it."

// SiteRestrictionError builds the denial returned when a user's membership
// set is non-empty and does not contain the current site.
func SiteRestrictionError() *apperr.Error {
	return apperr.Forbidden(siteRestrictionMessage).WithCode(CodeSiteRestriction)
}

// LoginAttempt is the tagged outcome of a login pipeline stage: either an
// authenticated user identity or a failure carrying its cause. Stages pass
// failed attempts through unchanged.
type LoginAttempt struct {
	userID uuid.UUID
	err    error
}

// Authenticated builds an attempt carrying a verified user identity.
func Authenticated(userID uuid.UUID) LoginAttempt {
	return LoginAttempt{userID: userID}
}

// Failed builds an attempt carrying an upstream failure.
func Failed(cause error) LoginAttempt {
	return LoginAttempt{err: cause}
}

// IsAuthenticated reports whether the attempt carries a verified identity.
func (a LoginAttempt) IsAuthenticated() bool {
	return a.err == nil && a.userID != uuid.Nil
}

// UserID returns the verified user identity. Only meaningful when
// IsAuthenticated is true.
func (a LoginAttempt) UserID() uuid.UUID {
	return a.userID
}

// Err returns the failure carried by the attempt, or nil.
func (a LoginAttempt) Err() error {
	return a.err
}

// Recorder records site registrations. The hosting application calls it once
// per account creation, from its registration flow.
type Recorder interface {
	// RecordRegistration adds siteID to the user's membership set.
	// Idempotent: re-recording an existing membership is a no-op.
	// A storage failure is returned to the caller; no retries are made.
	RecordRegistration(ctx context.Context, userID uuid.UUID, siteID sites.ID) error
}

// Decider is the login pipeline stage that enforces site membership.
type Decider interface {
	// DecideLogin passes non-authenticated attempts through unchanged.
	// For authenticated attempts it consults the user's membership set: an
	// empty or unreadable set imposes no restriction (default-open, so
	// accounts predating membership tracking keep working); a non-empty
	// set without siteID denies the attempt with CodeSiteRestriction.
	DecideLogin(ctx context.Context, attempt LoginAttempt, siteID sites.ID) LoginAttempt
}

// Service exposes membership reads to other domains.
type Service interface {
	// RegisteredSites returns the user's membership set; empty when the
	// user has no recorded registrations.
	RegisteredSites(ctx context.Context, userID uuid.UUID) ([]sites.ID, error)
}

// registeredSites loads and decodes a user's membership set. An absent
// attribute decodes to an empty set; a malformed one is treated as empty
// rather than failing. Only storage-level failures are returned.
func registeredSites(ctx context.Context, attrs store.AttributeStore, userID uuid.UUID) ([]sites.ID, error) {
	raw, err := attrs.GetAttribute(ctx, userID, RegisteredSiteIDsAttr)
	if errors.Is(err, store.ErrAttributeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ids []sites.ID
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, nil
	}
	return ids, nil
}

func containsSite(ids []sites.ID, siteID sites.ID) bool {
	for _, id := range ids {
		if id == siteID {
			return true
		}
	}
	return false
}

func siteIDValues(ids []sites.ID) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
