package auth

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/gym-access/pkg/util/errorutil"
)

// EnforceTenant decides whether principal may see urlTenantID's pages. With no
// principal the page is allowed so it can render its own verification view.
// Otherwise a mismatch yields a redirect to the principal's own tenant root.
func EnforceTenant(principal GymPrincipal, urlTenantID int64, tenantPrefix string) (string, bool) {
	if principal == nil || principal.TenantID() == urlTenantID {
		return "", true
	}
	return TenantRoot(tenantPrefix, principal.TenantID()), false
}

// TenantRoot returns the admin root of one tenant, e.g. "/admin/gym/7".
func TenantRoot(tenantPrefix string, tenantID int64) string {
	return strings.TrimSuffix(tenantPrefix, "/") + "/" + strconv.FormatInt(tenantID, 10)
}

// TenantBoundary guards the per-tenant admin pages.
type TenantBoundary struct {
	resolver     *Resolver
	tenantPrefix string
	param        string
	logger       *zap.Logger
}

// NewTenantBoundary builds the guard. param names the route parameter
// carrying the tenant id.
func NewTenantBoundary(resolver *Resolver, tenantPrefix, param string, logger *zap.Logger) *TenantBoundary {
	return &TenantBoundary{resolver: resolver, tenantPrefix: tenantPrefix, param: param, logger: logger}
}

// Handle resolves the principal for the URL tenant (falling back to any
// tenant the browser holds a credential for) and redirects on mismatch.
func (b *TenantBoundary) Handle(c *fiber.Ctx) error {
	tenantID, ok := ParseTenantID(c.Params(b.param))
	if !ok {
		return apperrors.NewNotFound("gym", map[string]any{"id": c.Params(b.param)})
	}

	principal, err := b.resolver.ResolveGymIdentity(c, tenantID)
	if err == nil && principal == nil {
		principal, err = b.resolver.ResolveAnyGymIdentity(c)
	}
	if err != nil {
		return apperrors.NewServiceUnavailable(err)
	}

	if target, allowed := EnforceTenant(principal, tenantID, b.tenantPrefix); !allowed {
		b.logger.Info("tenant boundary redirect",
			zap.Int64("requested_tenant", tenantID),
			zap.Int64("own_tenant", principal.TenantID()),
			zap.String("kind", string(principal.Kind())))
		return c.Redirect(target, fiber.StatusFound)
	}
	if principal != nil {
		WithGymPrincipal(c, principal)
	}
	return c.Next()
}

// RequireGymPrincipal guards tenant-scoped API routes: the caller must hold an
// owner session or visitor unlock for exactly the tenant in the URL.
func RequireGymPrincipal(resolver *Resolver, param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, ok := ParseTenantID(c.Params(param))
		if !ok {
			return apperrors.NewNotFound("gym", map[string]any{"id": c.Params(param)})
		}
		principal, err := resolver.ResolveGymIdentity(c, tenantID)
		if err != nil {
			return apperrors.NewServiceUnavailable(err)
		}
		if principal == nil || principal.TenantID() != tenantID {
			return apperrors.NewUnauthorized("not authorized for this gym")
		}
		WithGymPrincipal(c, principal)
		return c.Next()
	}
}
