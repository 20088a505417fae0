package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gym-access/internal/domain"
	apperrors "github.com/spec-kit/gym-access/pkg/util/errorutil"
)

// RequireUser ensures a platform account is signed in and, when roles are
// given, that it holds one of them.
func RequireUser(resolver *Resolver, allowed ...domain.UserRole) fiber.Handler {
	allowedSet := make(map[domain.UserRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, err := resolver.ResolveUserSession(c)
		if err != nil {
			return apperrors.NewServiceUnavailable(err)
		}
		if principal == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) > 0 {
			if _, ok := allowedSet[principal.Role]; !ok {
				return apperrors.NewForbidden("insufficient role")
			}
		}
		WithUserPrincipal(c, principal)
		return c.Next()
	}
}
