package membership

import (
	"context"

	"multisite_portal_backend/internal/membership/store"
	"multisite_portal_backend/internal/sites"
	"multisite_portal_backend/platform/logger"
)

type decider struct {
	attrs store.AttributeStore
	log   *logger.Logger
}

// NewDecider creates a Decider over the given attribute store.
func NewDecider(attrs store.AttributeStore, log *logger.Logger) Decider {
	return &decider{attrs: attrs, log: log}
}

func (d *decider) DecideLogin(ctx context.Context, attempt LoginAttempt, siteID sites.ID) LoginAttempt {
	if !attempt.IsAuthenticated() {
		return attempt
	}

	registered, err := registeredSites(ctx, d.attrs, attempt.UserID())
	if err != nil {
		// A storage hiccup must not lock users out; fall back to the
		// default-open policy instead of failing the attempt.
		if d.log != nil {
			d.log.DatabaseError("load membership set", err)
		}
		registered = nil
	}

	allowed := len(registered) == 0 || containsSite(registered, siteID)
	if d.log != nil {
		d.log.AccessDecision(attempt.UserID().String(), int64(siteID), siteIDValues(registered), allowed)
	}

	if !allowed {
		return Failed(SiteRestrictionError())
	}
	return attempt
}
