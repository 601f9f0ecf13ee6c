package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"multisite_portal_backend/internal/auth/repository"
	"multisite_portal_backend/internal/auth/service"
	"multisite_portal_backend/internal/membership"
	"multisite_portal_backend/internal/membership/store"
	"multisite_portal_backend/internal/sites"
	"multisite_portal_backend/platform/config"
	"multisite_portal_backend/platform/httpkit"
	"multisite_portal_backend/platform/logger"
	"multisite_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type storedToken struct {
	userID    uuid.UUID
	expiresAt time.Time
}

type memoryRepo struct {
	byEmail map[string]repository.User
	byID    map[uuid.UUID]repository.User
	tokens  map[string]storedToken
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		byEmail: map[string]repository.User{},
		byID:    map[uuid.UUID]repository.User{},
		tokens:  map[string]storedToken{},
	}
}

func (m *memoryRepo) CreateUser(_ context.Context, email, passwordHash string) (repository.User, error) {
	if _, exists := m.byEmail[email]; exists {
		return repository.User{}, repository.ErrEmailTaken
	}
	user := repository.User{ID: uuid.New(), Email: email, PasswordHash: passwordHash, CreatedAt: time.Now()}
	m.byEmail[email] = user
	m.byID[user.ID] = user
	return user, nil
}

func (m *memoryRepo) GetUserByEmail(_ context.Context, email string) (repository.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (m *memoryRepo) GetUserByID(_ context.Context, userID uuid.UUID) (repository.User, error) {
	user, ok := m.byID[userID]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (m *memoryRepo) CreateRefreshToken(_ context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	m.tokens[tokenHash] = storedToken{userID: userID, expiresAt: expiresAt}
	return nil
}

func (m *memoryRepo) GetRefreshToken(_ context.Context, tokenHash string) (uuid.UUID, time.Time, error) {
	stored, ok := m.tokens[tokenHash]
	if !ok {
		return uuid.Nil, time.Time{}, repository.ErrNotFound
	}
	return stored.userID, stored.expiresAt, nil
}

func (m *memoryRepo) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	delete(m.tokens, tokenHash)
	return nil
}

func (m *memoryRepo) RevokeAllRefreshTokens(_ context.Context, userID uuid.UUID) error {
	for hash, stored := range m.tokens {
		if stored.userID == userID {
			delete(m.tokens, hash)
		}
	}
	return nil
}

type memoryAttrs struct {
	values map[string][]byte
}

func (m *memoryAttrs) GetAttribute(_ context.Context, userID uuid.UUID, name string) ([]byte, error) {
	raw, ok := m.values[userID.String()+":"+name]
	if !ok {
		return nil, store.ErrAttributeNotFound
	}
	return raw, nil
}

func (m *memoryAttrs) SetAttribute(_ context.Context, userID uuid.UUID, name string, value []byte) error {
	m.values[userID.String()+":"+name] = value
	return nil
}

type registryStub struct{}

func (registryStub) ByID(_ context.Context, id sites.ID) (sites.Site, error) {
	return sites.Site{ID: id, Hostname: fmt.Sprintf("site%d.example.com", id), Name: fmt.Sprintf("Site %d", id)}, nil
}

func (registryStub) ByHostname(_ context.Context, _ string) (sites.Site, error) {
	return sites.Site{}, sites.ErrNotFound
}

func (registryStub) List(_ context.Context) ([]sites.Site, error) { return nil, nil }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New("test")
	cfg := &config.Config{
		JWTAccessSecret:       "test-secret",
		AccessTokenTTL:        time.Minute,
		RefreshTokenTTL:       time.Hour,
		RefreshCookieName:     "refresh_token",
		RefreshCookiePath:     "/api/v1/auth",
		RefreshCookieSameSite: http.SameSiteLaxMode,
	}

	attrs := &memoryAttrs{values: map[string][]byte{}}
	recorder := membership.NewRecorder(attrs, log)
	decider := membership.NewDecider(attrs, log)

	svc := service.New(newMemoryRepo(), cfg, recorder, decider, nopMembers{}, nil, log)
	h := New(svc, validator.New(), cfg, log)

	engine := gin.New()
	v1 := engine.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.Use(sites.ResolveSite(registryStub{}, log))
	authGroup.POST("/signup", h.SignUp)
	authGroup.POST("/signin", h.SignIn)

	protected := v1.Group("")
	protected.Use(httpkit.AuthRequired(cfg))
	protected.GET("/users/me", h.GetMe)

	return engine
}

type nopMembers struct{}

func (nopMembers) RegisteredSites(_ context.Context, _ uuid.UUID) ([]sites.ID, error) {
	return []sites.ID{5}, nil
}

func postJSON(t *testing.T, engine *gin.Engine, path string, siteID int64, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(sites.SiteIDHeader, fmt.Sprintf("%d", siteID))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestSignUpThenSignInOnRegisteredSite(t *testing.T) {
	engine := newTestRouter(t)
	creds := map[string]string{"email": "alice@example.com", "password": "hunter2hunter2"}

	if rec := postJSON(t, engine, "/api/v1/auth/signup", 5, creds); rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body %s", rec.Code, rec.Body.String())
	}
	rec := postJSON(t, engine, "/api/v1/auth/signin", 5, creds)
	if rec.Code != http.StatusOK {
		t.Fatalf("signin status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		AccessToken string `json:"accessToken"`
		TokenType   string `json:"tokenType"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AccessToken == "" || resp.TokenType != "Bearer" {
		t.Fatalf("unexpected token response: %+v", resp)
	}
}

func TestSignInOnUnregisteredSiteReturnsRestriction(t *testing.T) {
	engine := newTestRouter(t)
	creds := map[string]string{"email": "alice@example.com", "password": "hunter2hunter2"}

	if rec := postJSON(t, engine, "/api/v1/auth/signup", 5, creds); rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec := postJSON(t, engine, "/api/v1/auth/signin", 7, creds)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("signin status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp httpkit.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != membership.CodeSiteRestriction {
		t.Fatalf("code = %q, want %q", resp.Code, membership.CodeSiteRestriction)
	}
	if resp.Error != "You cannot log in to this site because you are not registered for it." {
		t.Fatalf("unexpected message %q", resp.Error)
	}
}

func TestSignInWithWrongPasswordIsUnauthorized(t *testing.T) {
	engine := newTestRouter(t)
	creds := map[string]string{"email": "alice@example.com", "password": "hunter2hunter2"}

	if rec := postJSON(t, engine, "/api/v1/auth/signup", 5, creds); rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec := postJSON(t, engine, "/api/v1/auth/signin", 5, map[string]string{
		"email":    "alice@example.com",
		"password": "not-the-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("signin status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestGetMeReturnsRegisteredSites(t *testing.T) {
	engine := newTestRouter(t)
	creds := map[string]string{"email": "alice@example.com", "password": "hunter2hunter2"}

	rec := postJSON(t, engine, "/api/v1/auth/signup", 5, creds)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Token struct {
			AccessToken string `json:"accessToken"`
		} `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode signup response: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+created.Token.AccessToken)
	meRec := httptest.NewRecorder()
	engine.ServeHTTP(meRec, req)

	if meRec.Code != http.StatusOK {
		t.Fatalf("me status = %d, body %s", meRec.Code, meRec.Body.String())
	}
	var profile struct {
		Email           string  `json:"email"`
		RegisteredSites []int64 `json:"registeredSiteIds"`
	}
	if err := json.Unmarshal(meRec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.Email != "alice@example.com" {
		t.Fatalf("unexpected email %q", profile.Email)
	}
	if len(profile.RegisteredSites) != 1 || profile.RegisteredSites[0] != 5 {
		t.Fatalf("unexpected registered sites %v", profile.RegisteredSites)
	}
}
