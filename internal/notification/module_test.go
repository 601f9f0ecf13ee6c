package notification

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"multisite_portal_backend/internal/email"
	"multisite_portal_backend/internal/events"
	"multisite_portal_backend/internal/sites"
	"multisite_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type capturingSender struct {
	sent []email.Message
	err  error
}

func (c *capturingSender) Send(_ context.Context, msg email.Message) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

type registryStub struct {
	sites map[sites.ID]sites.Site
}

func (r registryStub) ByID(_ context.Context, id sites.ID) (sites.Site, error) {
	site, ok := r.sites[id]
	if !ok {
		return sites.Site{}, sites.ErrNotFound
	}
	return site, nil
}

func (r registryStub) ByHostname(_ context.Context, _ string) (sites.Site, error) {
	return sites.Site{}, sites.ErrNotFound
}

func (r registryStub) List(_ context.Context) ([]sites.Site, error) { return nil, nil }

func TestUserRegisteredSendsWelcomeEmail(t *testing.T) {
	sender := &capturingSender{}
	registry := registryStub{sites: map[sites.ID]sites.Site{
		5: {ID: 5, Hostname: "blog.example.com", Name: "Example Blog"},
	}}
	module := NewModule(sender, registry, logger.New("test"))

	bus := events.NewInMemoryBus(logger.New("test"))
	module.RegisterHandlers(bus)

	err := bus.PublishSync(context.Background(), events.UserRegistered{
		BaseEvent: events.NewBaseEvent(),
		UserID:    uuid.New(),
		Email:     "alice@example.com",
		SiteID:    5,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To != "alice@example.com" {
		t.Fatalf("unexpected recipient %q", msg.To)
	}
	if !strings.Contains(msg.Subject, "Example Blog") {
		t.Fatalf("subject should name the site, got %q", msg.Subject)
	}
}

func TestUnknownSiteFallsBackToSiteID(t *testing.T) {
	sender := &capturingSender{}
	module := NewModule(sender, registryStub{}, logger.New("test"))

	bus := events.NewInMemoryBus(logger.New("test"))
	module.RegisterHandlers(bus)

	err := bus.PublishSync(context.Background(), events.UserRegistered{
		BaseEvent: events.NewBaseEvent(),
		UserID:    uuid.New(),
		Email:     "alice@example.com",
		SiteID:    42,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0].Subject, "site 42") {
		t.Fatalf("subject should fall back to the site ID, got %q", sender.sent[0].Subject)
	}
}

func TestLoginDeniedWritesAuditEntry(t *testing.T) {
	var buf bytes.Buffer
	log := &logger.Logger{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	module := NewModule(&capturingSender{}, registryStub{}, log)

	bus := events.NewInMemoryBus(log)
	module.RegisterHandlers(bus)

	err := bus.PublishSync(context.Background(), events.LoginDenied{
		BaseEvent: events.NewBaseEvent(),
		UserID:    uuid.New(),
		Email:     "alice@example.com",
		SiteID:    7,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "login_denied") {
		t.Fatalf("expected an audit entry, got %q", out)
	}
	if !strings.Contains(out, "alice@example.com") || !strings.Contains(out, "site_id=7") {
		t.Fatalf("audit entry should carry email and site, got %q", out)
	}
}

func TestSenderFailureSurfacesFromSyncPublish(t *testing.T) {
	boom := errors.New("smtp down")
	module := NewModule(&capturingSender{err: boom}, registryStub{}, logger.New("test"))

	bus := events.NewInMemoryBus(logger.New("test"))
	module.RegisterHandlers(bus)

	err := bus.PublishSync(context.Background(), events.UserRegistered{
		BaseEvent: events.NewBaseEvent(),
		UserID:    uuid.New(),
		Email:     "alice@example.com",
		SiteID:    5,
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected sender failure to surface, got %v", err)
	}
}
