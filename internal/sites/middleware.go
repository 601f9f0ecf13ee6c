package sites

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"multisite_portal_backend/platform/httpkit"
	"multisite_portal_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// SiteIDHeader lets API clients name the site explicitly instead of relying
// on the request host (e.g. when calls are proxied through a shared gateway).
const SiteIDHeader = "X-Site-ID"

// ResolveSite returns middleware that determines which site of the network is
// handling the request and stores its ID in the request context. The header
// takes precedence; otherwise the request host is looked up in the registry.
func ResolveSite(svc Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		site, err := resolve(c, svc)
		if err != nil {
			if !errors.Is(err, ErrNotFound) && log != nil {
				log.DatabaseError("resolve site", err)
			}
			c.AbortWithStatusJSON(http.StatusNotFound, httpkit.ErrorResponse{
				Error: "unknown site",
				Code:  "unknown_site",
			})
			return
		}

		c.Set(httpkit.ContextSiteIDKey, site.ID)
		c.Next()
	}
}

// CurrentSiteID extracts the resolved site ID from a Gin context.
func CurrentSiteID(c *gin.Context) (ID, bool) {
	value, ok := c.Get(httpkit.ContextSiteIDKey)
	if !ok {
		return 0, false
	}
	id, ok := value.(ID)
	return id, ok
}

func resolve(c *gin.Context, svc Service) (Site, error) {
	ctx := c.Request.Context()

	if raw := strings.TrimSpace(c.GetHeader(SiteIDHeader)); raw != "" {
		id, err := ParseID(raw)
		if err != nil {
			return Site{}, ErrNotFound
		}
		return svc.ByID(ctx, id)
	}

	return svc.ByHostname(ctx, stripPort(c.Request.Host))
}

func stripPort(host string) string {
	if hostname, _, err := net.SplitHostPort(host); err == nil {
		return hostname
	}
	return host
}
