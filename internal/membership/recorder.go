package membership

import (
	"context"
	"encoding/json"

	"multisite_portal_backend/internal/membership/store"
	"multisite_portal_backend/internal/sites"
	"multisite_portal_backend/platform/apperr"
	"multisite_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type recorder struct {
	attrs store.AttributeStore
	log   *logger.Logger
}

// NewRecorder creates a Recorder over the given attribute store.
func NewRecorder(attrs store.AttributeStore, log *logger.Logger) Recorder {
	return &recorder{attrs: attrs, log: log}
}

// RecordRegistration loads the user's membership set, appends siteID if it
// is not already a member, and persists the result. The read-modify-write
// is not compare-and-swapped: two simultaneous registrations for the same
// user can lose one entry. Accepted; simultaneous registrations per user
// are rare and a lost entry is repaired by the next registration.
func (r *recorder) RecordRegistration(ctx context.Context, userID uuid.UUID, siteID sites.ID) error {
	current, err := registeredSites(ctx, r.attrs, userID)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "membership store unavailable", err).
			WithOp("membership.RecordRegistration")
	}

	if containsSite(current, siteID) {
		r.trace(userID, siteID, current)
		return nil
	}

	updated := append(current, siteID)
	payload, err := json.Marshal(updated)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "encode membership set", err).
			WithOp("membership.RecordRegistration")
	}

	if err := r.attrs.SetAttribute(ctx, userID, RegisteredSiteIDsAttr, payload); err != nil {
		return apperr.Wrap(apperr.KindInternal, "membership store unavailable", err).
			WithOp("membership.RecordRegistration")
	}

	r.trace(userID, siteID, updated)
	return nil
}

func (r *recorder) trace(userID uuid.UUID, siteID sites.ID, registered []sites.ID) {
	if r.log != nil {
		r.log.MembershipRecorded(userID.String(), int64(siteID), siteIDValues(registered))
	}
}
