package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gym-access/internal/api/dto"
	"github.com/spec-kit/gym-access/internal/auth"
	"github.com/spec-kit/gym-access/internal/domain"
	"github.com/spec-kit/gym-access/internal/service"
	apperrors "github.com/spec-kit/gym-access/pkg/util/errorutil"
)

// GymAuthHandler exposes owner login for tenants.
type GymAuthHandler struct {
	auth     *service.AuthService
	resolver *auth.Resolver
	cookies  *auth.CookieStore
}

// NewGymAuthHandler constructs handler.
func NewGymAuthHandler(authService *service.AuthService, resolver *auth.Resolver, cookies *auth.CookieStore) *GymAuthHandler {
	return &GymAuthHandler{auth: authService, resolver: resolver, cookies: cookies}
}

// Login handles POST /api/gym/auth/login.
func (h *GymAuthHandler) Login(c *fiber.Ctx) error {
	var req dto.GymLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := req.Validate(); err != nil {
		return apperrors.FromValidation(err)
	}

	gym, cred, err := h.auth.LoginGym(c.UserContext(), req.AdminCode, req.Password, c.IP())
	if err != nil {
		return err
	}
	h.cookies.Set(c, cred.Cookie, cred.Token, cred.TTL)

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"gym": auth.GymOwnerPrincipal{
				ID:        gym.ID,
				Name:      gym.Name,
				Slug:      gym.SlugOrEmpty(),
				AdminCode: gym.AdminCodeOrEmpty(),
			},
			"expires_at": cred.ExpiresAt,
		},
	})
}

// Logout handles POST /api/gym/auth/logout.
func (h *GymAuthHandler) Logout(c *fiber.Ctx) error {
	if _, ok := h.cookies.Get(c, auth.GymSessionCookie); ok {
		tenantID, _ := h.resolver.GymSessionTenant(c)
		h.auth.RecordLogout(c.UserContext(), domain.SubjectKindGym, tenantID, c.IP())
	}
	h.cookies.Delete(c, auth.GymSessionCookie)
	return c.JSON(fiber.Map{"data": fiber.Map{"success": true}})
}

// Me handles GET /api/gym/auth/me.
func (h *GymAuthHandler) Me(c *fiber.Ctx) error {
	owner, err := h.resolver.ResolveGymOwner(c)
	if err != nil {
		return apperrors.NewServiceUnavailable(err)
	}
	if owner == nil {
		return apperrors.NewUnauthorized("not authenticated")
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"gym": owner}})
}
