// Package sites provides the site registry bounded context.
// A site is one independently addressable member of the multi-site network.
// This file defines the public API of the bounded context; only types and
// interfaces defined here should be imported by other domains.
package sites

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// ID identifies a site within the network. Site IDs are numeric, following
// the hosting platform's convention.
type ID int64

// ParseID parses a decimal site ID.
func ParseID(raw string) (ID, error) {
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return ID(value), nil
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Site is a member of the multi-site network.
type Site struct {
	ID        ID
	Hostname  string
	Name      string
	CreatedAt time.Time
}

// ErrNotFound is returned when no site matches the lookup.
var ErrNotFound = errors.New("site not found")

// Service defines the read-only site registry used by other domains.
// Site provisioning happens outside this application.
type Service interface {
	// ByID returns the site with the given ID.
	ByID(ctx context.Context, id ID) (Site, error)
	// ByHostname returns the site serving the given hostname.
	ByHostname(ctx context.Context, hostname string) (Site, error)
	// List returns all sites in the network.
	List(ctx context.Context) ([]Site, error)
}
