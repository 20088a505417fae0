package auth

import (
	"context"
	"errors"
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/gym-access/internal/domain"
	"github.com/spec-kit/gym-access/internal/repository"
)

// Resolver turns request cookies into at most one principal per trust level.
//
// Every method returns a nil principal when the request is unauthenticated.
// A non-nil error is only ever a store failure (wrapping
// errorutil.ErrStoreUnavailable) and always comes with a nil principal, so
// callers that ignore it still fail closed.
type Resolver struct {
	tokens     *TokenManager
	cookies    *CookieStore
	gyms       repository.GymRepository
	users      repository.UserRepository
	logger     *zap.Logger
	strategies []gymStrategy
}

// gymStrategy resolves one kind of gym credential for tenantID. A nil
// principal with a nil error means "not applicable, try the next one".
type gymStrategy func(ctx context.Context, c *fiber.Ctx, tenantID int64) (GymPrincipal, error)

// NewResolver wires the resolver.
func NewResolver(tokens *TokenManager, cookies *CookieStore, gyms repository.GymRepository, users repository.UserRepository, logger *zap.Logger) *Resolver {
	r := &Resolver{tokens: tokens, cookies: cookies, gyms: gyms, users: users, logger: logger}
	// Order is precedence: the real owner overrides a shared-phrase unlock.
	r.strategies = []gymStrategy{r.ownerSession, r.visitorAccess}
	return r
}

// ResolveUserSession returns the account behind the user_session cookie.
func (r *Resolver) ResolveUserSession(c *fiber.Ctx) (*UserPrincipal, error) {
	raw, ok := r.cookies.Get(c, UserSessionCookie)
	if !ok {
		return nil, nil
	}
	claims, err := r.tokens.VerifyKind(raw, domain.SubjectKindUser)
	if err != nil {
		return nil, nil
	}

	user, err := r.users.GetByID(c.UserContext(), claims.SubjectID)
	if err != nil {
		return nil, r.lookupFailure("user", claims.SubjectID, err)
	}
	return &UserPrincipal{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}, nil
}

// ResolveGymIdentity returns the owner session if one resolves, otherwise the
// visitor unlock scoped to tenantID.
func (r *Resolver) ResolveGymIdentity(c *fiber.Ctx, tenantID int64) (GymPrincipal, error) {
	ctx := c.UserContext()
	for _, strategy := range r.strategies {
		p, err := strategy(ctx, c, tenantID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			return p, nil
		}
	}
	return nil, nil
}

// ResolveGymOwner returns the owner behind the gym_session cookie, ignoring
// visitor unlocks.
func (r *Resolver) ResolveGymOwner(c *fiber.Ctx) (*GymOwnerPrincipal, error) {
	p, err := r.ownerSession(c.UserContext(), c, 0)
	if err != nil || p == nil {
		return nil, err
	}
	return p.(*GymOwnerPrincipal), nil
}

// GymSessionTenant returns the tenant named by a verifying gym_session
// cookie without consulting the store.
func (r *Resolver) GymSessionTenant(c *fiber.Ctx) (int64, bool) {
	raw, ok := r.cookies.Get(c, GymSessionCookie)
	if !ok {
		return 0, false
	}
	claims, err := r.tokens.VerifyKind(raw, domain.SubjectKindGym)
	if err != nil {
		return 0, false
	}
	return claims.SubjectID, true
}

// ResolveAnyGymIdentity returns the owner session, or else the verified
// visitor unlock with the lowest tenant id whose tenant still exists.
func (r *Resolver) ResolveAnyGymIdentity(c *fiber.Ctx) (GymPrincipal, error) {
	ctx := c.UserContext()
	owner, err := r.ownerSession(ctx, c, 0)
	if err != nil || owner != nil {
		return owner, err
	}

	visitors := r.cookies.VisitorTokens(c)
	ids := make([]int64, 0, len(visitors))
	for id := range visitors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		p, err := r.visitorFromToken(ctx, id, visitors[id])
		if err != nil {
			return nil, err
		}
		if p != nil {
			return p, nil
		}
	}
	return nil, nil
}

// HasAnyGymCredential is the coarse check used by the access gate: does any
// owner or verified visitor credential on the request verify? It does not
// consult the store and does not look at tenant ids.
func (r *Resolver) HasAnyGymCredential(c *fiber.Ctx) bool {
	if raw, ok := r.cookies.Get(c, GymSessionCookie); ok {
		if _, err := r.tokens.VerifyKind(raw, domain.SubjectKindGym); err == nil {
			return true
		}
	}
	for id, raw := range r.cookies.VisitorTokens(c) {
		claims, err := r.tokens.VerifyKind(raw, domain.SubjectKindGymAccess)
		if err == nil && claims.SubjectID == id {
			return true
		}
	}
	return false
}

func (r *Resolver) ownerSession(ctx context.Context, c *fiber.Ctx, _ int64) (GymPrincipal, error) {
	raw, ok := r.cookies.Get(c, GymSessionCookie)
	if !ok {
		return nil, nil
	}
	claims, err := r.tokens.VerifyKind(raw, domain.SubjectKindGym)
	if err != nil {
		return nil, nil
	}
	gym, err := r.gyms.GetByID(ctx, claims.SubjectID)
	if err != nil {
		return nil, r.lookupFailure("gym", claims.SubjectID, err)
	}
	return ownerFromGym(gym), nil
}

func (r *Resolver) visitorAccess(ctx context.Context, c *fiber.Ctx, tenantID int64) (GymPrincipal, error) {
	if tenantID <= 0 {
		return nil, nil
	}
	raw, ok := r.cookies.Get(c, GymAccessCookieName(tenantID))
	if !ok {
		return nil, nil
	}
	return r.visitorFromToken(ctx, tenantID, raw)
}

func (r *Resolver) visitorFromToken(ctx context.Context, tenantID int64, raw string) (GymPrincipal, error) {
	claims, err := r.tokens.VerifyKind(raw, domain.SubjectKindGymAccess)
	if err != nil {
		return nil, nil
	}
	// A credential copied under another tenant's cookie name unlocks nothing.
	if claims.SubjectID != tenantID {
		return nil, nil
	}
	gym, err := r.gyms.GetByID(ctx, claims.SubjectID)
	if err != nil {
		return nil, r.lookupFailure("gym", claims.SubjectID, err)
	}
	return &GymVisitorPrincipal{ID: gym.ID}, nil
}

// lookupFailure collapses a missing record to "unauthenticated" and reports
// everything else as a store failure.
func (r *Resolver) lookupFailure(resource string, id int64, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		r.logger.Debug("credential references missing record",
			zap.String("resource", resource), zap.Int64("id", id))
		return nil
	}
	r.logger.Warn("identity lookup failed",
		zap.String("resource", resource), zap.Int64("id", id), zap.Error(err))
	return markStoreUnavailable(err)
}
