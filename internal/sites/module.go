package sites

import (
	apphttp "multisite_portal_backend/internal/http"
	"multisite_portal_backend/platform/httpkit"
	"multisite_portal_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the site registry bounded context module.
type Module struct {
	repo *Repository
	log  *logger.Logger
}

// NewModule creates and initializes the sites module.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	return &Module{repo: NewRepository(pool), log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "sites"
}

// Service returns the site registry for use by other modules.
func (m *Module) Service() Service {
	return m.repo
}

// Resolver returns the middleware that resolves the current site.
func (m *Module) Resolver() gin.HandlerFunc {
	return ResolveSite(m.repo, m.log)
}

// RegisterRoutes mounts site routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/sites", m.listSites)
}

type siteResponse struct {
	ID       int64  `json:"id"`
	Hostname string `json:"hostname"`
	Name     string `json:"name"`
}

func (m *Module) listSites(c *gin.Context) {
	all, err := m.repo.List(c.Request.Context())
	if err != nil {
		m.log.DatabaseError("list sites", err)
		httpkit.Error(c, 500, "failed to list sites", nil)
		return
	}

	out := make([]siteResponse, 0, len(all))
	for _, site := range all {
		out = append(out, siteResponse{
			ID:       int64(site.ID),
			Hostname: site.Hostname,
			Name:     site.Name,
		})
	}
	httpkit.OK(c, out)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
