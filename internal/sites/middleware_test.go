package sites

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type registryStub struct {
	byID       map[ID]Site
	byHostname map[string]Site
}

func (s *registryStub) ByID(_ context.Context, id ID) (Site, error) {
	if site, ok := s.byID[id]; ok {
		return site, nil
	}
	return Site{}, ErrNotFound
}

func (s *registryStub) ByHostname(_ context.Context, hostname string) (Site, error) {
	if site, ok := s.byHostname[hostname]; ok {
		return site, nil
	}
	return Site{}, ErrNotFound
}

func (s *registryStub) List(context.Context) ([]Site, error) { return nil, nil }

func newResolverEngine(svc Service) (*gin.Engine, *ID) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	var resolved ID
	engine.GET("/probe", ResolveSite(svc, nil), func(c *gin.Context) {
		id, _ := CurrentSiteID(c)
		resolved = id
		c.Status(http.StatusNoContent)
	})
	return engine, &resolved
}

func TestResolveSiteFromHeader(t *testing.T) {
	svc := &registryStub{byID: map[ID]Site{5: {ID: 5, Hostname: "five.example.test"}}}
	engine, resolved := newResolverEngine(svc)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(SiteIDHeader, "5")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d (%s)", rec.Code, rec.Body.String())
	}
	if *resolved != 5 {
		t.Fatalf("expected site 5 to be resolved, got %d", *resolved)
	}
}

func TestResolveSiteFromHostStripsPort(t *testing.T) {
	svc := &registryStub{byHostname: map[string]Site{"blog.example.test": {ID: 7, Hostname: "blog.example.test"}}}
	engine, resolved := newResolverEngine(svc)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Host = "blog.example.test:8080"
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d (%s)", rec.Code, rec.Body.String())
	}
	if *resolved != 7 {
		t.Fatalf("expected site 7 to be resolved, got %d", *resolved)
	}
}

func TestResolveSiteUnknownHostRejected(t *testing.T) {
	engine, _ := newResolverEngine(&registryStub{})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Host = "stranger.example.test"
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown host, got %d", rec.Code)
	}
}

func TestResolveSiteMalformedHeaderRejected(t *testing.T) {
	engine, _ := newResolverEngine(&registryStub{})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(SiteIDHeader, "not-a-number")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for malformed site header, got %d", rec.Code)
	}
}
