package events

import (
	platformevents "multisite_portal_backend/platform/events"
	"multisite_portal_backend/platform/logger"
)

// InMemoryBus aliases the platform bus so modules only import this package
// for everything event-related.
type InMemoryBus = platformevents.InMemoryBus

func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}
