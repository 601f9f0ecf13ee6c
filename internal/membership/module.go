// Package membership provides the site membership bounded context module.
package membership

import (
	"context"
	"time"

	"multisite_portal_backend/internal/membership/store"
	"multisite_portal_backend/internal/sites"
	"multisite_portal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Module wires the membership recorder and decider over the attribute store.
// It is not HTTP-facing; the auth module consumes it through the Recorder,
// Decider and Service interfaces wired in main.go.
type Module struct {
	attrs    store.AttributeStore
	recorder Recorder
	decider  Decider
}

// NewModule creates and initializes the membership module. When redisClient
// is non-nil the attribute store is fronted by a read-through cache.
func NewModule(pool *pgxpool.Pool, redisClient *redis.Client, cacheTTL time.Duration, log *logger.Logger) *Module {
	var attrs store.AttributeStore = store.NewRepository(pool)
	if redisClient != nil {
		attrs = store.NewCache(attrs, redisClient, cacheTTL)
	}

	return &Module{
		attrs:    attrs,
		recorder: NewRecorder(attrs, log),
		decider:  NewDecider(attrs, log),
	}
}

// Recorder returns the registration recorder.
func (m *Module) Recorder() Recorder {
	return m.recorder
}

// Decider returns the login decider.
func (m *Module) Decider() Decider {
	return m.decider
}

// RegisteredSites returns the membership set for a user.
func (m *Module) RegisteredSites(ctx context.Context, userID uuid.UUID) ([]sites.ID, error) {
	return registeredSites(ctx, m.attrs, userID)
}

// Compile-time check that Module implements Service
var _ Service = (*Module)(nil)
