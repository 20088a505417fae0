package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/gym-access/internal/auth"
	"github.com/spec-kit/gym-access/internal/config"
	"github.com/spec-kit/gym-access/internal/domain"
	"github.com/spec-kit/gym-access/internal/events"
	"github.com/spec-kit/gym-access/internal/repository"
	apperrors "github.com/spec-kit/gym-access/pkg/util/errorutil"
)

// AttemptLimiter bounds verification attempts per key.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// IssuedCredential is a signed token together with the cookie it belongs in.
type IssuedCredential struct {
	Cookie    string
	Token     string
	TTL       time.Duration
	ExpiresAt time.Time
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	GymRepo    repository.GymRepository
	UserRepo   repository.UserRepository
	Tokens     *auth.TokenManager
	Limiter    AttemptLimiter
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// AuthService coordinates login, registration and visitor verification.
type AuthService struct {
	gyms         repository.GymRepository
	users        repository.UserRepository
	tokens       *auth.TokenManager
	limiter      AttemptLimiter
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	accessPhrase string
	bcryptCost   int
	userTTL      time.Duration
	gymTTL       time.Duration
	accessTTL    time.Duration
}

// NewAuthService builds the service. accessPhrase must already be resolved.
func NewAuthService(cfg config.AuthConfig, accessPhrase string, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		gyms:         deps.GymRepo,
		users:        deps.UserRepo,
		tokens:       deps.Tokens,
		limiter:      deps.Limiter,
		dispatcher:   deps.Dispatcher,
		logger:       logger,
		accessPhrase: accessPhrase,
		bcryptCost:   cfg.BcryptCost,
		userTTL:      cfg.UserSessionTTL,
		gymTTL:       cfg.GymSessionTTL,
		accessTTL:    cfg.GymAccessTTL,
	}
}

// RegisterInput carries a validated registration request.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// RegisterUser creates a platform account with the default role.
func (s *AuthService) RegisterUser(ctx context.Context, in RegisterInput) (*domain.UserAccount, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("an account with this email already exists", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.UserAccount{
		Name:         strings.TrimSpace(strings.TrimSpace(in.FirstName) + " " + strings.TrimSpace(in.LastName)),
		Email:        email,
		PasswordHash: &hash,
		Role:         domain.UserRoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("an account with this email already exists", nil)
		}
		return nil, err
	}
	return user, nil
}

// LoginUser verifies email and password and issues a user session.
func (s *AuthService) LoginUser(ctx context.Context, email, password, ip string) (*domain.UserAccount, *IssuedCredential, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, nil, err
	}
	if !auth.PasswordMatches(user.PasswordHash, password) {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}

	cred, err := s.issue(auth.Claims{Kind: domain.SubjectKindUser, SubjectID: user.ID}, auth.UserSessionCookie, s.userTTL)
	if err != nil {
		return nil, nil, err
	}
	s.publish(ctx, events.EventSessionIssued, 0, events.Actor{Kind: domain.SubjectKindUser, SubjectID: user.ID, IP: ip},
		events.SessionPayload{Cookie: cred.Cookie, ExpiresAt: cred.ExpiresAt})
	return user, cred, nil
}

// LoginGym verifies an owner's admin code and password and issues a gym session.
func (s *AuthService) LoginGym(ctx context.Context, adminCode, password, ip string) (*domain.Gym, *IssuedCredential, error) {
	gym, err := s.gyms.GetByAdminCode(ctx, adminCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized("invalid admin code or password")
		}
		return nil, nil, err
	}
	if !gym.HasPassword() {
		return nil, nil, apperrors.NewUnauthorized("password not configured for this gym")
	}
	if !auth.PasswordMatches(gym.PasswordHash, password) {
		return nil, nil, apperrors.NewUnauthorized("invalid admin code or password")
	}

	claims := auth.Claims{Kind: domain.SubjectKindGym, SubjectID: gym.ID, AdminCode: gym.AdminCodeOrEmpty()}
	cred, err := s.issue(claims, auth.GymSessionCookie, s.gymTTL)
	if err != nil {
		return nil, nil, err
	}
	s.publish(ctx, events.EventSessionIssued, gym.ID, events.Actor{Kind: domain.SubjectKindGym, SubjectID: gym.ID, IP: ip},
		events.SessionPayload{Cookie: cred.Cookie, ExpiresAt: cred.ExpiresAt})
	return gym, cred, nil
}

// VerifyGymAccess checks the shared access phrase and unlocks one tenant.
func (s *AuthService) VerifyGymAccess(ctx context.Context, gymID int64, accessID, ip string) (*domain.Gym, *IssuedCredential, error) {
	limiterKey := strconv.FormatInt(gymID, 10) + ":" + ip
	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, limiterKey)
		if err != nil {
			s.logger.Warn("verify attempt limiter unavailable", zap.Error(err))
		}
		if !allowed {
			s.denied(ctx, gymID, ip, "too_many_attempts")
			return nil, nil, apperrors.NewTooManyRequests("too many verification attempts")
		}
	}

	if subtle.ConstantTimeCompare([]byte(accessID), []byte(s.accessPhrase)) != 1 {
		s.denied(ctx, gymID, ip, "wrong_access_id")
		return nil, nil, apperrors.NewUnauthorized("incorrect access id")
	}

	gym, err := s.gyms.GetByID(ctx, gymID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("gym", map[string]any{"id": gymID})
		}
		return nil, nil, err
	}

	claims := auth.Claims{
		Kind:      domain.SubjectKindGymAccess,
		SubjectID: gym.ID,
		AccessID:  accessID,
		Verified:  true,
	}
	cred, err := s.issue(claims, auth.GymAccessCookieName(gym.ID), s.accessTTL)
	if err != nil {
		return nil, nil, err
	}
	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, limiterKey); err != nil {
			s.logger.Debug("failed to reset verify attempts", zap.Error(err))
		}
	}
	s.publish(ctx, events.EventAccessVerified, gym.ID, events.Actor{Kind: domain.SubjectKindGymAccess, SubjectID: gym.ID, IP: ip},
		events.SessionPayload{Cookie: cred.Cookie, ExpiresAt: cred.ExpiresAt})
	return gym, cred, nil
}

// ChangeGymPassword replaces the owner password after checking the current one.
func (s *AuthService) ChangeGymPassword(ctx context.Context, gymID int64, currentPassword, newPassword string) error {
	gym, err := s.gyms.GetByID(ctx, gymID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("gym", map[string]any{"id": gymID})
		}
		return err
	}
	if !gym.HasPassword() {
		return apperrors.NewValidationError("no password configured for this gym", nil)
	}
	if !auth.PasswordMatches(gym.PasswordHash, currentPassword) {
		return apperrors.NewUnauthorized("current password is incorrect")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return s.gyms.UpdatePasswordHash(ctx, gymID, hash)
}

// RecordLogout emits a revocation event. Logout itself only deletes cookies.
func (s *AuthService) RecordLogout(ctx context.Context, kind domain.SubjectKind, tenantID int64, ip string) {
	s.publish(ctx, events.EventSessionRevoked, tenantID, events.Actor{Kind: kind, SubjectID: tenantID, IP: ip}, nil)
}

// ListGyms returns every tenant for the unlock entry page.
func (s *AuthService) ListGyms(ctx context.Context) ([]domain.Gym, error) {
	return s.gyms.List(ctx)
}

// GetGym returns one tenant or a NOT_FOUND error.
func (s *AuthService) GetGym(ctx context.Context, id int64) (*domain.Gym, error) {
	gym, err := s.gyms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("gym", map[string]any{"id": id})
		}
		return nil, err
	}
	return gym, nil
}

func (s *AuthService) issue(claims auth.Claims, cookie string, ttl time.Duration) (*IssuedCredential, error) {
	token, exp, err := s.tokens.Issue(claims, ttl)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("issue %s credential: %w", claims.Kind, err))
	}
	return &IssuedCredential{Cookie: cookie, Token: token, TTL: ttl, ExpiresAt: exp}, nil
}

func (s *AuthService) denied(ctx context.Context, gymID int64, ip, reason string) {
	s.publish(ctx, events.EventAccessDenied, gymID, events.Actor{Kind: domain.SubjectKindGymAccess, IP: ip},
		events.DeniedPayload{Reason: reason})
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, tenantID int64, actor events.Actor, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TenantID:  tenantID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}
