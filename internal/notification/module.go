// Package notification reacts to domain events by sending user-facing
// emails. It owns no HTTP routes and no storage.
package notification

import (
	"context"
	"fmt"

	"multisite_portal_backend/internal/email"
	"multisite_portal_backend/internal/events"
	"multisite_portal_backend/internal/sites"
	"multisite_portal_backend/platform/logger"
)

// Module subscribes to auth events and sends the corresponding emails.
type Module struct {
	sender email.Sender
	sites  sites.Service
	log    *logger.Logger
}

func NewModule(sender email.Sender, siteRegistry sites.Service, log *logger.Logger) *Module {
	return &Module{sender: sender, sites: siteRegistry, log: log}
}

// RegisterHandlers subscribes the module to the events it reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.UserRegistered{}.EventName(), events.HandlerFunc(m.handleUserRegistered))
	bus.Subscribe(events.LoginDenied{}.EventName(), events.HandlerFunc(m.handleLoginDenied))
}

// handleLoginDenied writes an audit entry for blocked logins. No email is
// sent; the denial message already reaches the user through the sign-in
// response.
func (m *Module) handleLoginDenied(_ context.Context, event events.Event) error {
	denied, ok := event.(events.LoginDenied)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	if m.log != nil {
		m.log.Warn("login_denied",
			"email", denied.Email,
			"site_id", int64(denied.SiteID),
		)
	}
	return nil
}

func (m *Module) handleUserRegistered(ctx context.Context, event events.Event) error {
	registered, ok := event.(events.UserRegistered)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	siteName := fmt.Sprintf("site %d", registered.SiteID)
	if site, err := m.sites.ByID(ctx, registered.SiteID); err == nil {
		siteName = site.Name
	}

	msg := email.Message{
		To:      registered.Email,
		Subject: fmt.Sprintf("Welcome to %s", siteName),
		Body: fmt.Sprintf(
			"Your account on %s is ready.\n\nYou can sign in right away. If you did not create this account, please contact support.\n",
			siteName,
		),
	}

	if err := m.sender.Send(ctx, msg); err != nil {
		if m.log != nil {
			m.log.Error("welcome_email_failed",
				"email", registered.Email,
				"error", err.Error(),
			)
		}
		return err
	}
	return nil
}
