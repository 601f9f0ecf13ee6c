package auth

import (
	"multisite_portal_backend/internal/auth/handler"
	"multisite_portal_backend/internal/auth/repository"
	"multisite_portal_backend/internal/auth/service"
	"multisite_portal_backend/internal/events"
	apphttp "multisite_portal_backend/internal/http"
	"multisite_portal_backend/internal/membership"
	"multisite_portal_backend/platform/config"
	"multisite_portal_backend/platform/logger"
	"multisite_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the auth bounded context: repository, service, handler.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the auth module with its dependencies.
// The membership collaborators are injected rather than discovered so the
// login pipeline is explicit in the composition root.
func NewModule(
	pool *pgxpool.Pool,
	cfg *config.Config,
	recorder membership.Recorder,
	access membership.Decider,
	members membership.Service,
	bus events.Bus,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, recorder, access, members, bus, log)
	h := handler.New(svc, validator.New(), cfg, log)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "auth" }

// Service exposes the auth service to other modules.
func (m *Module) Service() *service.Service { return m.service }

// RegisterRoutes mounts the auth endpoints. All auth routes are site-scoped
// and rate limited; profile reads additionally require an access token.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.SiteResolver)
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	{
		authGroup.POST("/signup", m.handler.SignUp)
		authGroup.POST("/signin", m.handler.SignIn)
		authGroup.POST("/refresh", m.handler.Refresh)
		authGroup.POST("/signout", m.handler.SignOut)
	}

	users := ctx.Protected.Group("/users")
	{
		users.GET("/me", m.handler.GetMe)
	}
}

var _ apphttp.Module = (*Module)(nil)
