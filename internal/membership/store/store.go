// Package store implements the per-user attribute store backing membership
// tracking. The hosting platform owns user records; this store only reads and
// writes named attributes attached to them.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrAttributeNotFound is returned when the user has no stored value for the
// requested attribute name.
var ErrAttributeNotFound = errors.New("attribute not found")

// AttributeStore reads and writes named per-user attributes. Values are
// opaque JSON documents; callers own their schema.
type AttributeStore interface {
	// GetAttribute returns the stored value for (userID, name), or
	// ErrAttributeNotFound when no value exists.
	GetAttribute(ctx context.Context, userID uuid.UUID, name string) ([]byte, error)
	// SetAttribute stores value under (userID, name), replacing any
	// previous value. Single-key writes only; no cross-key atomicity.
	SetAttribute(ctx context.Context, userID uuid.UUID, name string, value []byte) error
}
