package service

import (
	"context"
	"errors"
	"time"

	"multisite_portal_backend/internal/auth/password"
	"multisite_portal_backend/internal/auth/repository"
	"multisite_portal_backend/internal/auth/token"
	"multisite_portal_backend/internal/events"
	"multisite_portal_backend/internal/membership"
	"multisite_portal_backend/internal/sites"
	"multisite_portal_backend/platform/apperr"
	"multisite_portal_backend/platform/config"
	"multisite_portal_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidCredentials covers both unknown emails and wrong passwords so
// responses never reveal which of the two failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidRefreshToken covers unknown, revoked, and expired refresh tokens.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

const refreshTokenBytes = 32

// Service implements the auth use cases. Membership collaborators are
// injected explicitly; the service never reaches for ambient state.
type Service struct {
	repo     repository.AuthRepository
	cfg      config.AuthServiceConfig
	recorder membership.Recorder
	access   membership.Decider
	members  membership.Service
	bus      events.Bus
	log      *logger.Logger
}

func New(
	repo repository.AuthRepository,
	cfg config.AuthServiceConfig,
	recorder membership.Recorder,
	access membership.Decider,
	members membership.Service,
	bus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:     repo,
		cfg:      cfg,
		recorder: recorder,
		access:   access,
		members:  members,
		bus:      bus,
		log:      log,
	}
}

// SignUp creates an account on the given site and signs the user in.
// The site registration is recorded before the account is usable; a
// recording failure fails the whole sign-up.
func (s *Service) SignUp(ctx context.Context, email, plain string, siteID sites.ID) (Profile, TokenPair, error) {
	hash, err := password.Hash(plain)
	if err != nil {
		return Profile{}, TokenPair{}, apperr.Wrap(apperr.KindInternal, "failed to hash password", err).WithOp("auth.SignUp")
	}

	user, err := s.repo.CreateUser(ctx, email, hash)
	if errors.Is(err, repository.ErrEmailTaken) {
		return Profile{}, TokenPair{}, apperr.Conflict("email already registered")
	}
	if err != nil {
		return Profile{}, TokenPair{}, apperr.Wrap(apperr.KindInternal, "failed to create user", err).WithOp("auth.SignUp")
	}

	if err := s.recorder.RecordRegistration(ctx, user.ID, siteID); err != nil {
		return Profile{}, TokenPair{}, err
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.UserRegistered{
			BaseEvent: events.NewBaseEvent(),
			UserID:    user.ID,
			Email:     user.Email,
			SiteID:    siteID,
		})
	}

	pair, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return Profile{}, TokenPair{}, err
	}

	s.log.AuthEvent("sign_up", email, true, "")
	return Profile{
		ID:              user.ID,
		Email:           user.Email,
		RegisteredSites: []sites.ID{siteID},
		CreatedAt:       user.CreatedAt,
	}, pair, nil
}

// SignIn verifies credentials, then runs the attempt through the membership
// decider before issuing tokens.
func (s *Service) SignIn(ctx context.Context, email, plain string, siteID sites.ID) (TokenPair, error) {
	user, attempt := s.verifyCredentials(ctx, email, plain)

	attempt = s.access.DecideLogin(ctx, attempt, siteID)

	if err := attempt.Err(); err != nil {
		if apperr.GetCode(err) == membership.CodeSiteRestriction && s.bus != nil {
			s.bus.Publish(ctx, events.LoginDenied{
				BaseEvent: events.NewBaseEvent(),
				UserID:    user.ID,
				Email:     email,
				SiteID:    siteID,
			})
		}
		s.log.AuthEvent("sign_in", email, false, err.Error())
		return TokenPair{}, err
	}

	pair, err := s.issueTokens(ctx, attempt.UserID())
	if err != nil {
		return TokenPair{}, err
	}

	s.log.AuthEvent("sign_in", email, true, "")
	return pair, nil
}

// Refresh rotates a refresh token. The membership decision is re-evaluated
// so a user removed from a site cannot keep a session alive there.
func (s *Service) Refresh(ctx context.Context, rawToken string, siteID sites.ID) (TokenPair, error) {
	hash := token.HashSHA256(rawToken)

	userID, expiresAt, err := s.repo.GetRefreshToken(ctx, hash)
	if errors.Is(err, repository.ErrNotFound) {
		return TokenPair{}, ErrInvalidRefreshToken
	}
	if err != nil {
		return TokenPair{}, apperr.Wrap(apperr.KindInternal, "failed to load refresh token", err).WithOp("auth.Refresh")
	}
	if time.Now().After(expiresAt) {
		_ = s.repo.RevokeRefreshToken(ctx, hash)
		return TokenPair{}, ErrInvalidRefreshToken
	}

	attempt := s.access.DecideLogin(ctx, membership.Authenticated(userID), siteID)
	if err := attempt.Err(); err != nil {
		return TokenPair{}, err
	}

	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil {
		return TokenPair{}, apperr.Wrap(apperr.KindInternal, "failed to rotate refresh token", err).WithOp("auth.Refresh")
	}
	return s.issueTokens(ctx, userID)
}

// SignOut revokes a single refresh token. Unknown tokens are not an error.
func (s *Service) SignOut(ctx context.Context, rawToken string) error {
	return s.repo.RevokeRefreshToken(ctx, token.HashSHA256(rawToken))
}

// SignOutAll revokes every refresh token belonging to the user.
func (s *Service) SignOutAll(ctx context.Context, userID uuid.UUID) error {
	return s.repo.RevokeAllRefreshTokens(ctx, userID)
}

// GetProfile returns the user's profile including their membership set.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (Profile, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return Profile{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return Profile{}, apperr.Wrap(apperr.KindInternal, "failed to load user", err).WithOp("auth.GetProfile")
	}

	registered, err := s.members.RegisteredSites(ctx, userID)
	if err != nil {
		return Profile{}, err
	}

	return Profile{
		ID:              user.ID,
		Email:           user.Email,
		RegisteredSites: registered,
		CreatedAt:       user.CreatedAt,
	}, nil
}

// verifyCredentials checks email and password. The returned attempt carries
// ErrInvalidCredentials on any mismatch; the user record is returned
// alongside so callers can attribute downstream denials.
func (s *Service) verifyCredentials(ctx context.Context, email, plain string) (repository.User, membership.LoginAttempt) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.User{}, membership.Failed(ErrInvalidCredentials)
	}
	if err != nil {
		return repository.User{}, membership.Failed(apperr.Wrap(apperr.KindInternal, "failed to load user", err).WithOp("auth.SignIn"))
	}

	if err := password.Compare(user.PasswordHash, plain); err != nil {
		return user, membership.Failed(ErrInvalidCredentials)
	}
	return user, membership.Authenticated(user.ID)
}

func (s *Service) issueTokens(ctx context.Context, userID uuid.UUID) (TokenPair, error) {
	now := time.Now()
	accessTTL := s.cfg.GetAccessTokenTTL()

	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"type": "access",
		"iat":  now.Unix(),
		"exp":  now.Add(accessTTL).Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.GetJWTAccessSecret()))
	if err != nil {
		return TokenPair{}, apperr.Wrap(apperr.KindInternal, "failed to sign access token", err).WithOp("auth.issueTokens")
	}

	refresh, err := token.GenerateRandomToken(refreshTokenBytes)
	if err != nil {
		return TokenPair{}, apperr.Wrap(apperr.KindInternal, "failed to generate refresh token", err).WithOp("auth.issueTokens")
	}
	expiresAt := now.Add(s.cfg.GetRefreshTokenTTL())
	if err := s.repo.CreateRefreshToken(ctx, userID, token.HashSHA256(refresh), expiresAt); err != nil {
		return TokenPair{}, apperr.Wrap(apperr.KindInternal, "failed to store refresh token", err).WithOp("auth.issueTokens")
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(accessTTL.Seconds()),
	}, nil
}
