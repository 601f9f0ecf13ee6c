// Package handler exposes the auth use cases over HTTP.
package handler

import (
	"errors"
	"net/http"
	"time"

	"multisite_portal_backend/internal/auth/service"
	"multisite_portal_backend/internal/auth/transport"
	"multisite_portal_backend/internal/sites"
	"multisite_portal_backend/platform/config"
	"multisite_portal_backend/platform/httpkit"
	"multisite_portal_backend/platform/logger"
	"multisite_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc      *service.Service
	validate *validator.Validator
	cookies  config.CookieConfig
	log      *logger.Logger
}

func New(svc *service.Service, validate *validator.Validator, cookies config.CookieConfig, log *logger.Logger) *Handler {
	return &Handler{svc: svc, validate: validate, cookies: cookies, log: log}
}

// SignUp handles POST /auth/signup.
func (h *Handler) SignUp(c *gin.Context) {
	var req transport.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	siteID, ok := sites.CurrentSiteID(c)
	if !ok {
		httpkit.Error(c, http.StatusInternalServerError, "site not resolved", nil)
		return
	}

	profile, pair, err := h.svc.SignUp(c.Request.Context(), req.Email, req.Password, siteID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken, h.cookies.GetRefreshTokenTTL())
	httpkit.JSON(c, http.StatusCreated, gin.H{
		"user":  profileResponse(profile),
		"token": tokenResponse(pair),
	})
}

// SignIn handles POST /auth/signin.
func (h *Handler) SignIn(c *gin.Context) {
	var req transport.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	siteID, ok := sites.CurrentSiteID(c)
	if !ok {
		httpkit.Error(c, http.StatusInternalServerError, "site not resolved", nil)
		return
	}

	pair, err := h.svc.SignIn(c.Request.Context(), req.Email, req.Password, siteID)
	if errors.Is(err, service.ErrInvalidCredentials) {
		httpkit.Error(c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken, h.cookies.GetRefreshTokenTTL())
	httpkit.OK(c, tokenResponse(pair))
}

// Refresh handles POST /auth/refresh. The refresh token travels in an
// HttpOnly cookie, never in the body.
func (h *Handler) Refresh(c *gin.Context) {
	raw, err := c.Cookie(h.cookies.GetRefreshCookieName())
	if err != nil || raw == "" {
		httpkit.Error(c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}

	siteID, ok := sites.CurrentSiteID(c)
	if !ok {
		httpkit.Error(c, http.StatusInternalServerError, "site not resolved", nil)
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), raw, siteID)
	if errors.Is(err, service.ErrInvalidRefreshToken) {
		h.clearRefreshCookie(c)
		httpkit.Error(c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken, h.cookies.GetRefreshTokenTTL())
	httpkit.OK(c, tokenResponse(pair))
}

// SignOut handles POST /auth/signout.
func (h *Handler) SignOut(c *gin.Context) {
	if raw, err := c.Cookie(h.cookies.GetRefreshCookieName()); err == nil && raw != "" {
		if err := h.svc.SignOut(c.Request.Context(), raw); err != nil {
			httpkit.HandleError(c, err)
			return
		}
	}
	h.clearRefreshCookie(c)
	c.Status(http.StatusNoContent)
}

// GetMe handles GET /users/me.
func (h *Handler) GetMe(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	profile, err := h.svc.GetProfile(c.Request.Context(), id.UserID())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, profileResponse(profile))
}

func (h *Handler) setRefreshCookie(c *gin.Context, value string, ttl time.Duration) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookies.GetRefreshCookieName(),
		Value:    value,
		Domain:   h.cookies.GetRefreshCookieDomain(),
		Path:     h.cookies.GetRefreshCookiePath(),
		MaxAge:   int(ttl.Seconds()),
		Secure:   h.cookies.GetRefreshCookieSecure(),
		HttpOnly: true,
		SameSite: h.cookies.GetRefreshCookieSameSite(),
	})
}

func (h *Handler) clearRefreshCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookies.GetRefreshCookieName(),
		Value:    "",
		Domain:   h.cookies.GetRefreshCookieDomain(),
		Path:     h.cookies.GetRefreshCookiePath(),
		MaxAge:   -1,
		Secure:   h.cookies.GetRefreshCookieSecure(),
		HttpOnly: true,
		SameSite: h.cookies.GetRefreshCookieSameSite(),
	})
}

func tokenResponse(pair service.TokenPair) transport.TokenResponse {
	return transport.TokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   pair.ExpiresIn,
	}
}

func profileResponse(p service.Profile) transport.ProfileResponse {
	registered := make([]int64, len(p.RegisteredSites))
	for i, id := range p.RegisteredSites {
		registered[i] = int64(id)
	}
	return transport.ProfileResponse{
		ID:              p.ID.String(),
		Email:           p.Email,
		RegisteredSites: registered,
		CreatedAt:       p.CreatedAt,
	}
}
